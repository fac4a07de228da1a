package stamp

import "fmt"

// Tensor is a dense row-major float32 tensor. Model parameters are all
// one- or two-dimensional.
type Tensor struct {
	Shape []int
	Data  []float32
}

func NewTensor(shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Tensor{Shape: append([]int{}, shape...), Data: make([]float32, n)}
}

func (t *Tensor) NumElems() int {
	n := 1
	for _, s := range t.Shape {
		n *= s
	}
	return n
}

// Row returns a view of row i of a 2D tensor.
func (t *Tensor) Row(i int) []float32 {
	cols := t.Shape[1]
	return t.Data[i*cols : (i+1)*cols]
}

func (t *Tensor) Clone() *Tensor {
	out := NewTensor(t.Shape...)
	copy(out.Data, t.Data)
	return out
}

func (t *Tensor) ShapeEquals(other *Tensor) bool {
	if len(t.Shape) != len(other.Shape) {
		return false
	}
	for i := range t.Shape {
		if t.Shape[i] != other.Shape[i] {
			return false
		}
	}
	return true
}

// CopyOverlapFrom copies the overlapping leading sub-tensor of src into t,
// leaving the remainder of t untouched. Used when the embedding table
// changed size between training and serving.
func (t *Tensor) CopyOverlapFrom(src *Tensor) error {
	if len(t.Shape) != len(src.Shape) {
		return fmt.Errorf("rank mismatch: %v vs %v", t.Shape, src.Shape)
	}
	switch len(t.Shape) {
	case 1:
		n := min(t.Shape[0], src.Shape[0])
		copy(t.Data[:n], src.Data[:n])
	case 2:
		rows := min(t.Shape[0], src.Shape[0])
		cols := min(t.Shape[1], src.Shape[1])
		for r := 0; r < rows; r++ {
			copy(t.Row(r)[:cols], src.Row(r)[:cols])
		}
	default:
		return fmt.Errorf("unsupported rank %d", len(t.Shape))
	}
	return nil
}
