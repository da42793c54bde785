package arena

import (
	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/outofforest/flux/gate"
)

// MinCapacity is the smallest usable block: one payload envelope plus the
// header slot reserved at the tail for a wrap or switch envelope.
const MinCapacity = 2*HeaderSize + MaxAlign

// Block is an owned byte region receiving envelopes at WritePos.
//
// The producer owns WritePos and Data bytes it has acquired from Free; the
// consumer owns bytes covered by published envelopes and returns them through
// Free. The standing invariant WritePos ≤ capacity − HeaderSize guarantees
// that a wrap or switch envelope always fits without further blocking.
type Block struct {
	// Data is the raw byte region envelopes are placed in.
	Data []byte

	// WritePos is the producer's next write offset, always in [0, capacity).
	WritePos int64

	// Free counts bytes of Data not covered by a live envelope.
	Free *gate.Gate

	// Next is the successor block. Set by the producer before the switch
	// envelope redirecting to it is published.
	Next *Block
}

// NewBlock allocates a block of the given capacity.
func NewBlock(capacity int64) (*Block, error) {
	if capacity < MinCapacity {
		return nil, errors.Errorf("block capacity %d is below the minimum %d", capacity, MinCapacity)
	}
	if capacity%MaxAlign != 0 {
		return nil, errors.Errorf("block capacity %d is not aligned to %d", capacity, MaxAlign)
	}

	return &Block{
		Data: make([]byte, capacity),
		Free: gate.New(uint64(capacity)),
	}, nil
}

// Capacity returns the size of the block in bytes.
func (b *Block) Capacity() int64 {
	return int64(len(b.Data))
}

// Tail returns the number of bytes between the write position and the end of
// the block.
func (b *Block) Tail() int64 {
	return b.Capacity() - b.WritePos
}

// Header returns a typed view of the envelope header at the given offset.
func (b *Block) Header(offset int64) *Header {
	return photon.NewFromBytes[Header](b.Data[offset:]).Value
}

// Payload returns the payload bytes of the element envelope at the given
// offset.
func (b *Block) Payload(offset int64) []byte {
	h := b.Header(offset)
	return b.Data[offset+HeaderSize : offset+h.Size]
}

// PlaceElement writes an element envelope of the given total size at the
// write position and returns the payload bytes to construct the value in.
// The caller must have acquired size bytes from Free.
func (b *Block) PlaceElement(size int64, variant uint32) []byte {
	offset := b.WritePos
	h := b.Header(offset)
	h.Next = offset + size
	h.Size = size
	h.Kind = ElementKind
	h.Variant = variant

	b.WritePos = offset + size
	return b.Data[offset+HeaderSize : offset+size]
}

// PlacePadding fills the tail of the block with a padding envelope and wraps
// the write position to the block beginning. The caller must have acquired
// the tail bytes from Free.
func (b *Block) PlacePadding() {
	h := b.Header(b.WritePos)
	h.Next = 0
	h.Size = b.Tail()
	h.Kind = PaddingKind
	h.Variant = 0

	b.WritePos = 0
}

// PlaceSwitch writes a switch envelope at the write position redirecting the
// consumer to the successor block. The caller must have acquired HeaderSize
// bytes from Free and set Next beforehand.
func (b *Block) PlaceSwitch() {
	h := b.Header(b.WritePos)
	h.Next = 0
	h.Size = HeaderSize
	h.Kind = SwitchKind
	h.Variant = 0

	b.WritePos += HeaderSize
}
