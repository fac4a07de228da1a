package stamp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Checkpoint blob layout (little endian):
//
//	magic   [4]byte "STMP"
//	version uint32
//	count   uint32
//	per tensor:
//	  nameLen uint16, name bytes
//	  ndim    uint8, dims [ndim]uint32
//	  data    [prod(dims)]float32
var checkpointMagic = [4]byte{'S', 'T', 'M', 'P'}

const checkpointVersion uint32 = 1

// maxTensorDim bounds a single dimension read from disk so a corrupt
// header cannot trigger a huge allocation.
const maxTensorDim = 1 << 28

func ReadCheckpoint(path string) (map[string]*Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read checkpoint header: %w", err)
	}
	if magic != checkpointMagic {
		return nil, fmt.Errorf("not a stamp checkpoint: bad magic %q", magic)
	}
	var version, count uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read checkpoint version: %w", err)
	}
	if version != checkpointVersion {
		return nil, fmt.Errorf("unsupported checkpoint version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read tensor count: %w", err)
	}

	params := make(map[string]*Tensor, count)
	for i := uint32(0); i < count; i++ {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("read tensor name length: %w", err)
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, fmt.Errorf("read tensor name: %w", err)
		}
		name := string(nameBytes)

		var ndim uint8
		if err := binary.Read(r, binary.LittleEndian, &ndim); err != nil {
			return nil, fmt.Errorf("read tensor %s rank: %w", name, err)
		}
		shape := make([]int, ndim)
		for d := range shape {
			var dim uint32
			if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
				return nil, fmt.Errorf("read tensor %s shape: %w", name, err)
			}
			if dim > maxTensorDim {
				return nil, fmt.Errorf("tensor %s dimension %d out of range", name, dim)
			}
			shape[d] = int(dim)
		}

		t := NewTensor(shape...)
		if err := binary.Read(r, binary.LittleEndian, t.Data); err != nil {
			return nil, fmt.Errorf("read tensor %s data: %w", name, err)
		}
		params[name] = t
	}
	return params, nil
}

// WriteCheckpoint serializes a parameter set. Used by tests and by the
// offline export path.
func WriteCheckpoint(path string, params map[string]*Tensor) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if _, err := w.Write(checkpointMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, checkpointVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(params))); err != nil {
		return err
	}
	for name, t := range params {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(name))); err != nil {
			return err
		}
		if _, err := w.Write([]byte(name)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint8(len(t.Shape))); err != nil {
			return err
		}
		for _, dim := range t.Shape {
			if err := binary.Write(w, binary.LittleEndian, uint32(dim)); err != nil {
				return err
			}
		}
		if err := binary.Write(w, binary.LittleEndian, t.Data); err != nil {
			return err
		}
	}
	return w.Flush()
}
