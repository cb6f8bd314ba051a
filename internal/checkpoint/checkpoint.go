// Package checkpoint persists model state dicts in the .kiln container
// format: magic bytes, a little-endian fixed prefix, a JSON header
// describing the tensors, the raw float32 payload, and a trailing SHA-256
// checksum over everything before it.
package checkpoint

import (
	"errors"
	"time"
)

// Format constants.
const (
	MagicBytes    = "KILN"
	FormatVersion = 1
	ChecksumSize  = 32

	// MaxHeaderSize bounds the JSON header so a corrupt size field cannot
	// trigger a huge allocation.
	MaxHeaderSize = 16 << 20
)

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrPayloadTruncated   = errors.New("payload shorter than header declares")
)

// Header is the JSON header of a .kiln file.
type Header struct {
	FormatVersion int          `json:"format_version"`
	CreatedAt     time.Time    `json:"created_at"`
	Tensors       []TensorMeta `json:"tensors"`
	// Training provenance, optional.
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries the training state a checkpoint was taken at.
type Meta struct {
	RunID    string  `json:"run_id,omitempty"`
	Epoch    int     `json:"epoch"`
	TestLoss float64 `json:"test_loss"`
}

// TensorMeta locates one tensor inside the payload section.
type TensorMeta struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}
