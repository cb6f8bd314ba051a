package checkpoint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/kiln-ml/kiln/internal/tensor"
)

// Load reads a .kiln file, verifies its checksum and reconstructs the
// state dict. The returned header carries provenance metadata.
func Load(path string) (map[string]*tensor.Tensor, *Header, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read checkpoint: %w", err)
	}
	if len(raw) < len(MagicBytes)+12+ChecksumSize {
		return nil, nil, ErrPayloadTruncated
	}

	// The checksum trails the file and covers everything before it.
	body := raw[:len(raw)-ChecksumSize]
	var stored [ChecksumSize]byte
	copy(stored[:], raw[len(raw)-ChecksumSize:])
	if sha256.Sum256(body) != stored {
		return nil, nil, ErrChecksumMismatch
	}

	if string(body[:len(MagicBytes)]) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}
	body = body[len(MagicBytes):]

	version := binary.LittleEndian.Uint32(body[0:4])
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	headerSize := binary.LittleEndian.Uint64(body[4:12])
	if headerSize > MaxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}
	body = body[12:]
	if uint64(len(body)) < headerSize {
		return nil, nil, ErrPayloadTruncated
	}

	var header Header
	if err := json.Unmarshal(body[:headerSize], &header); err != nil {
		return nil, nil, fmt.Errorf("unmarshal header: %w", err)
	}
	payload := body[headerSize:]

	state := make(map[string]*tensor.Tensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		// Subtract instead of adding so a huge offset+size pair cannot
		// overflow past the bounds check.
		if meta.Offset < 0 || meta.Size < 0 ||
			meta.Size > int64(len(payload)) || meta.Offset > int64(len(payload))-meta.Size {
			return nil, nil, fmt.Errorf("tensor %q: %w", meta.Name, ErrPayloadTruncated)
		}
		section := payload[meta.Offset : meta.Offset+meta.Size]
		values := make([]float32, meta.Size/4)
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(section[i*4:]))
		}
		t, err := tensor.New(values, tensor.Shape(meta.Shape))
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}
		state[meta.Name] = t
	}
	return state, &header, nil
}
