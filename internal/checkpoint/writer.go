package checkpoint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Save writes a state dict to path. Tensors are laid out in sorted name
// order so the same state always produces the same payload. meta may be
// nil.
func Save(path string, state map[string]*tensor.Tensor, meta *Meta) error {
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(names)),
		Meta:          meta,
	}

	var offset int64
	for _, name := range names {
		t := state[name]
		size := int64(t.NumElements()) * 4
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			Shape:  []int(t.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	var buf bytes.Buffer
	buf.WriteString(MagicBytes)

	var prefix [12]byte
	binary.LittleEndian.PutUint32(prefix[0:4], FormatVersion)
	binary.LittleEndian.PutUint64(prefix[4:12], uint64(len(headerJSON)))
	buf.Write(prefix[:])
	buf.Write(headerJSON)

	payload := make([]byte, offset)
	pos := 0
	for _, name := range names {
		for _, v := range state[name].Data() {
			binary.LittleEndian.PutUint32(payload[pos:], math.Float32bits(v))
			pos += 4
		}
	}
	buf.Write(payload)

	sum := sha256.Sum256(buf.Bytes())
	buf.Write(sum[:])

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}
