package stamp

import (
	"math"
	"math/rand"
)

// PadIndex is the reserved embedding row marking "no item" in a padded
// sequence. The index mapping never assigns it to a real item.
const PadIndex int64 = 0

// Model is a STAMP-style session encoder: attention pooling over the
// session item embeddings, gated by the last item and the session mean,
// scored against candidate item embeddings by dot product.
//
// Parameter names (as serialized in checkpoints):
//
//	item_embedding  [numItems, dim]   row 0 is the padding vector
//	attn_w1/w2/w3   [dim, dim]        attention projections
//	attn_bias       [dim]
//	attn_v          [dim]             attention logit vector
//	sess_proj_w/b   [dim, dim]/[dim]  session representation projection
//	last_proj_w/b   [dim, dim]/[dim]  last-item projection
type Model struct {
	numItems int
	embedDim int

	emb *Tensor
	w1  *Tensor
	w2  *Tensor
	w3  *Tensor
	ba  *Tensor
	v   *Tensor
	wsW *Tensor
	wsB *Tensor
	wtW *Tensor
	wtB *Tensor
}

// New builds a freshly initialized model with numItems embedding rows
// (row 0 reserved for padding). Initialization is deterministic for a
// given seed so a resized load stays reproducible.
func New(numItems, embedDim int, seed int64) *Model {
	rng := rand.New(rand.NewSource(seed))
	m := &Model{
		numItems: numItems,
		embedDim: embedDim,
		emb:      NewTensor(numItems, embedDim),
		w1:       NewTensor(embedDim, embedDim),
		w2:       NewTensor(embedDim, embedDim),
		w3:       NewTensor(embedDim, embedDim),
		ba:       NewTensor(embedDim),
		v:        NewTensor(embedDim),
		wsW:      NewTensor(embedDim, embedDim),
		wsB:      NewTensor(embedDim),
		wtW:      NewTensor(embedDim, embedDim),
		wtB:      NewTensor(embedDim),
	}

	fillNormal(rng, m.emb.Data, 0.0022)
	zeroRow(m.emb, 0)
	fillNormal(rng, m.ba.Data, 0.01)

	bound := float32(1.0 / math.Sqrt(float64(embedDim)))
	for _, t := range []*Tensor{m.w1, m.w2, m.w3, m.v, m.wsW, m.wsB, m.wtW, m.wtB} {
		fillUniform(rng, t.Data, bound)
	}
	return m
}

func (m *Model) NumItems() int { return m.numItems }
func (m *Model) EmbedDim() int { return m.embedDim }

// StateDict exposes the parameter tensors by name. The tensors are the
// live parameters, not copies.
func (m *Model) StateDict() map[string]*Tensor {
	return map[string]*Tensor{
		"item_embedding": m.emb,
		"attn_w1":        m.w1,
		"attn_w2":        m.w2,
		"attn_w3":        m.w3,
		"attn_bias":      m.ba,
		"attn_v":         m.v,
		"sess_proj_w":    m.wsW,
		"sess_proj_b":    m.wsB,
		"last_proj_w":    m.wtW,
		"last_proj_b":    m.wtB,
	}
}

type LoadAction string

const (
	LoadCopied  LoadAction = "copied"
	LoadResized LoadAction = "resized"
	LoadSkipped LoadAction = "skipped"
)

type LoadNote struct {
	Name   string
	Action LoadAction
	Err    error
}

// LoadState copies checkpoint tensors into the model. Shape-matching
// tensors are copied whole; mismatched ones copy their overlapping
// leading sub-tensor and keep the fresh initialization elsewhere.
// Checkpoint tensors with no counterpart in the model are skipped.
// Nothing here aborts the load; the returned notes carry per-tensor
// outcomes for the caller to log.
func (m *Model) LoadState(params map[string]*Tensor) []LoadNote {
	sd := m.StateDict()
	notes := make([]LoadNote, 0, len(params))
	for name, src := range params {
		dst, ok := sd[name]
		if !ok {
			notes = append(notes, LoadNote{Name: name, Action: LoadSkipped})
			continue
		}
		if dst.ShapeEquals(src) {
			copy(dst.Data, src.Data)
			notes = append(notes, LoadNote{Name: name, Action: LoadCopied})
			continue
		}
		err := dst.CopyOverlapFrom(src)
		notes = append(notes, LoadNote{Name: name, Action: LoadResized, Err: err})
	}
	return notes
}

// PadSequence left-pads (or left-truncates) seq to exactly maxLen
// positions, keeping the most recent items.
func PadSequence(seq []int64, maxLen int) []int64 {
	if len(seq) > maxLen {
		seq = seq[len(seq)-maxLen:]
	}
	out := make([]int64, maxLen)
	copy(out[maxLen-len(seq):], seq)
	return out
}

// Forward scores each sequence against its candidate set, or against
// every embedding row when cands is nil. Sequences are left-padded with
// PadIndex. Padding positions receive exactly zero attention weight and
// are excluded from the mean pooling denominator (clamped at 1).
func (m *Model) Forward(seqs [][]int64, cands [][]int64) [][]float32 {
	out := make([][]float32, len(seqs))
	for b, seq := range seqs {
		var cand []int64
		if cands != nil {
			cand = cands[b]
		}
		out[b] = m.forwardOne(seq, cand)
	}
	return out
}

func (m *Model) forwardOne(seq []int64, cand []int64) []float32 {
	dim := m.embedDim

	// Session mean over non-padding positions.
	ms := make([]float32, dim)
	count := 0
	for _, idx := range seq {
		if idx == PadIndex {
			continue
		}
		row := m.embRow(idx)
		for d := 0; d < dim; d++ {
			ms[d] += row[d]
		}
		count++
	}
	denom := float32(count)
	if denom < 1 {
		denom = 1
	}
	for d := 0; d < dim; d++ {
		ms[d] /= denom
	}

	// Last-item vector: embedding at the final position (zeros when the
	// whole sequence is padding).
	xt := make([]float32, dim)
	if len(seq) > 0 {
		copy(xt, m.embRow(seq[len(seq)-1]))
	}

	w2xt := matVec(m.w2, xt)
	w3ms := matVec(m.w3, ms)

	// Attention logits for real positions; padding stays masked out of the
	// softmax entirely so its weight is exactly zero.
	logits := make([]float32, len(seq))
	real := make([]bool, len(seq))
	var maxLogit float32
	haveReal := false
	for i, idx := range seq {
		if idx == PadIndex {
			continue
		}
		row := m.embRow(idx)
		pre := matVec(m.w1, row)
		var logit float32
		for d := 0; d < dim; d++ {
			a := sigmoid(pre[d] + w2xt[d] + w3ms[d] + m.ba.Data[d])
			logit += m.v.Data[d] * a
		}
		logits[i] = logit
		real[i] = true
		if !haveReal || logit > maxLogit {
			maxLogit = logit
			haveReal = true
		}
	}

	var sumExp float32
	for i := range seq {
		if !real[i] {
			continue
		}
		logits[i] = expf(logits[i] - maxLogit)
		sumExp += logits[i]
	}

	// Attention-weighted sum plus the session mean.
	ma := make([]float32, dim)
	copy(ma, ms)
	if sumExp > 0 {
		for i, idx := range seq {
			if !real[i] {
				continue
			}
			alpha := logits[i] / sumExp
			row := m.embRow(idx)
			for d := 0; d < dim; d++ {
				ma[d] += alpha * row[d]
			}
		}
	}

	hs := matVec(m.wsW, ma)
	ht := matVec(m.wtW, xt)
	h := make([]float32, dim)
	for d := 0; d < dim; d++ {
		h[d] = tanhf(hs[d]+m.wsB.Data[d]) * tanhf(ht[d]+m.wtB.Data[d])
	}

	if cand != nil {
		scores := make([]float32, len(cand))
		for k, idx := range cand {
			scores[k] = dot(h, m.embRow(idx))
		}
		return scores
	}
	scores := make([]float32, m.numItems)
	for i := 0; i < m.numItems; i++ {
		scores[i] = dot(h, m.emb.Row(i))
	}
	return scores
}

func (m *Model) embRow(idx int64) []float32 {
	if idx < 0 || idx >= int64(m.numItems) {
		return make([]float32, m.embedDim)
	}
	return m.emb.Row(int(idx))
}

func matVec(w *Tensor, x []float32) []float32 {
	rows, cols := w.Shape[0], w.Shape[1]
	out := make([]float32, rows)
	for r := 0; r < rows; r++ {
		row := w.Data[r*cols : (r+1)*cols]
		var sum float32
		for c := 0; c < cols; c++ {
			sum += row[c] * x[c]
		}
		out[r] = sum
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(-float64(x))))
}

func tanhf(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

func expf(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

func fillNormal(rng *rand.Rand, data []float32, std float64) {
	for i := range data {
		data[i] = float32(rng.NormFloat64() * std)
	}
}

func fillUniform(rng *rand.Rand, data []float32, bound float32) {
	for i := range data {
		data[i] = (2*rng.Float32() - 1) * bound
	}
}

func zeroRow(t *Tensor, row int) {
	r := t.Row(row)
	for i := range r {
		r[i] = 0
	}
}
