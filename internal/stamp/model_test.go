package stamp

import (
	"math"
	"testing"
)

func TestPaddingHasNoEffectOnScores(t *testing.T) {
	m := New(10, 8, 1)

	plain := m.Forward([][]int64{{2, 3, 4}}, nil)[0]
	padded := m.Forward([][]int64{{PadIndex, PadIndex, 2, 3, 4}}, nil)[0]

	if len(plain) != len(padded) {
		t.Fatalf("score lengths differ: %d vs %d", len(plain), len(padded))
	}
	for i := range plain {
		if plain[i] != padded[i] {
			t.Fatalf("score %d changed under padding: %v vs %v", i, plain[i], padded[i])
		}
	}
}

func TestAllPaddingSequenceIsFinite(t *testing.T) {
	m := New(10, 8, 1)

	scores := m.Forward([][]int64{{PadIndex, PadIndex, PadIndex}}, nil)[0]
	for i, s := range scores {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			t.Fatalf("score %d is not finite: %v", i, s)
		}
	}
}

func TestPaddingRowIsZero(t *testing.T) {
	m := New(10, 8, 7)
	for d, v := range m.emb.Row(0) {
		if v != 0 {
			t.Fatalf("padding row element %d is %v, want 0", d, v)
		}
	}
}

func TestOutOfRangeIndexScoresAsZeroRow(t *testing.T) {
	m := New(10, 8, 1)

	// A candidate index beyond the table behaves like the zero vector.
	scores := m.Forward([][]int64{{2, 3}}, [][]int64{{99}})[0]
	if scores[0] != 0 {
		t.Fatalf("out-of-range candidate scored %v, want 0", scores[0])
	}
}

func TestCandidateScoresMatchFullScores(t *testing.T) {
	m := New(10, 8, 3)

	full := m.Forward([][]int64{{1, 5, 2}}, nil)[0]
	cand := m.Forward([][]int64{{1, 5, 2}}, [][]int64{{4, 7}})[0]

	if cand[0] != full[4] || cand[1] != full[7] {
		t.Fatalf("candidate scores %v do not match full scores %v/%v", cand, full[4], full[7])
	}
}

func TestPadSequence(t *testing.T) {
	got := PadSequence([]int64{5, 6}, 4)
	want := []int64{0, 0, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PadSequence short: got %v, want %v", got, want)
		}
	}

	got = PadSequence([]int64{1, 2, 3, 4, 5}, 3)
	want = []int64{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PadSequence long: got %v, want %v", got, want)
		}
	}
}

func TestNewIsDeterministic(t *testing.T) {
	a := New(6, 4, 42)
	b := New(6, 4, 42)
	for name, ta := range a.StateDict() {
		tb := b.StateDict()[name]
		for i := range ta.Data {
			if ta.Data[i] != tb.Data[i] {
				t.Fatalf("tensor %s differs between identically seeded models", name)
			}
		}
	}
}

func TestLoadStateCopiesMatchingShapes(t *testing.T) {
	src := New(6, 4, 1)
	dst := New(6, 4, 2)

	notes := dst.LoadState(src.StateDict())
	for _, n := range notes {
		if n.Action != LoadCopied || n.Err != nil {
			t.Fatalf("tensor %s: action %s err %v, want copied", n.Name, n.Action, n.Err)
		}
	}
	for name, ts := range src.StateDict() {
		td := dst.StateDict()[name]
		for i := range ts.Data {
			if ts.Data[i] != td.Data[i] {
				t.Fatalf("tensor %s not copied", name)
			}
		}
	}
}

func TestLoadStateResizesEmbedding(t *testing.T) {
	small := New(4, 4, 1)
	grown := New(7, 4, 42)
	fresh := New(7, 4, 42)

	notes := grown.LoadState(map[string]*Tensor{"item_embedding": small.StateDict()["item_embedding"]})
	if len(notes) != 1 || notes[0].Action != LoadResized || notes[0].Err != nil {
		t.Fatalf("unexpected notes: %+v", notes)
	}

	// Rows covered by the checkpoint carry its values.
	for r := 0; r < 4; r++ {
		srcRow := small.emb.Row(r)
		dstRow := grown.emb.Row(r)
		for d := range srcRow {
			if srcRow[d] != dstRow[d] {
				t.Fatalf("row %d not copied from checkpoint", r)
			}
		}
	}
	// Rows beyond it keep the seeded fresh initialization.
	for r := 4; r < 7; r++ {
		freshRow := fresh.emb.Row(r)
		dstRow := grown.emb.Row(r)
		for d := range freshRow {
			if freshRow[d] != dstRow[d] {
				t.Fatalf("row %d lost its fresh initialization", r)
			}
		}
	}
}

func TestLoadStateSkipsUnknownTensor(t *testing.T) {
	m := New(4, 4, 1)
	notes := m.LoadState(map[string]*Tensor{"mystery": NewTensor(2, 2)})
	if len(notes) != 1 || notes[0].Action != LoadSkipped {
		t.Fatalf("unexpected notes: %+v", notes)
	}
}
