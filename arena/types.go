package arena

import (
	"unsafe"
)

// MaxAlign is the maximum scalar alignment. Envelopes are laid out at offsets
// aligned to it and payload sizes are rounded up to it.
const MaxAlign = int64(unsafe.Alignof(uint64(0)))

// Kind is the enum representing the envelope kind.
type Kind uint32

// Envelope kinds.
const (
	// ElementKind marks an envelope carrying a payload.
	ElementKind Kind = iota
	// PaddingKind marks a header-only envelope filling the tail of a block.
	// The next envelope is found at the beginning of the same block.
	PaddingKind
	// SwitchKind marks a header-only envelope redirecting the consumer to
	// the beginning of the successor block.
	SwitchKind
)

// Header is the fixed layout preceding each payload slot in a block.
// It is projected onto block bytes with photon, so it must stay pointer-free.
type Header struct {
	// Next is the offset of the next envelope within the owning block.
	// Meaningless for padding and switch envelopes, whose successor is the
	// block beginning or the successor block respectively.
	Next int64

	// Size is the number of bytes the envelope occupies, header included.
	Size int64

	// Kind tells whether a payload follows the header.
	Kind Kind

	// Variant is the payload type tag assigned by the queue. Zero for
	// header-only envelopes.
	Variant uint32
}

// HeaderSize is the aligned size of the envelope header.
const HeaderSize = (int64(unsafe.Sizeof(Header{})) + MaxAlign - 1) / MaxAlign * MaxAlign

// Align rounds n up to the maximum scalar alignment.
func Align(n int64) int64 {
	return (n + MaxAlign - 1) / MaxAlign * MaxAlign
}
