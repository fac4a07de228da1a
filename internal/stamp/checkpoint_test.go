package stamp

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stamp.ckpt")

	src := New(5, 4, 9)
	if err := WriteCheckpoint(path, src.StateDict()); err != nil {
		t.Fatalf("WriteCheckpoint: %v", err)
	}

	params, err := ReadCheckpoint(path)
	if err != nil {
		t.Fatalf("ReadCheckpoint: %v", err)
	}
	if len(params) != len(src.StateDict()) {
		t.Fatalf("got %d tensors, want %d", len(params), len(src.StateDict()))
	}
	for name, want := range src.StateDict() {
		got, ok := params[name]
		if !ok {
			t.Fatalf("tensor %s missing from checkpoint", name)
		}
		if !got.ShapeEquals(want) {
			t.Fatalf("tensor %s shape %v, want %v", name, got.Shape, want.Shape)
		}
		for i := range want.Data {
			if got.Data[i] != want.Data[i] {
				t.Fatalf("tensor %s data differs at %d", name, i)
			}
		}
	}
}

func TestReadCheckpointRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.ckpt")
	if err := os.WriteFile(path, []byte("NOPE0000000000"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ReadCheckpoint(path); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestReadCheckpointMissingFile(t *testing.T) {
	if _, err := ReadCheckpoint(filepath.Join(t.TempDir(), "absent.ckpt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
