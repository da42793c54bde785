package queue

import (
	"reflect"

	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/outofforest/flux/arena"
	"github.com/outofforest/flux/gate"
)

// Queue is a FIFO storing values of heterogeneous variant types inline in a
// chain of byte blocks. A new block doubling the previous capacity is
// allocated whenever an envelope does not fit anymore.
//
// Thread-safe for exactly one producer and exactly one consumer.
type Queue[T any] struct {
	// Producer side.
	write    *arena.Block
	decaying []*arena.Block

	// Consumer side.
	read    *arena.Block
	readPos int64
	held    bool

	pending  *gate.Gate
	variants []VariantSpec[T]
	byType   map[reflect.Type]uint32
}

// New constructs a queue with the given initial block capacity. The capacity
// must be at least arena.MinCapacity and a multiple of arena.MaxAlign. An
// envelope that does not fit the current block is placed in a new block whose
// capacity is doubled until the envelope plus the reserved header slot fits.
func New[T any](initialCapacity int64, variants ...VariantSpec[T]) (*Queue[T], error) {
	if len(variants) == 0 {
		return nil, errors.New("queue requires at least one variant")
	}

	byType := make(map[reflect.Type]uint32, len(variants))
	for i, v := range variants {
		if v.err != nil {
			return nil, v.err
		}
		if _, exists := byType[v.typ]; exists {
			return nil, errors.Errorf("duplicate variant %s", v.typ)
		}
		byType[v.typ] = uint32(i)
	}

	block, err := arena.NewBlock(initialCapacity)
	if err != nil {
		return nil, err
	}

	return &Queue[T]{
		write:    block,
		read:     block,
		pending:  gate.New(0),
		variants: variants,
		byType:   byType,
	}, nil
}

// Enqueue constructs value inside the arena and publishes it. Blocks until
// enough free bytes are available at the chosen write location.
//
// Must be called by the single producer only.
func Enqueue[T any, U comparable](q *Queue[T], value U) error {
	tag, exists := q.byType[reflect.TypeOf(value)]
	if !exists {
		return errors.Errorf("type %T is not a variant of this queue", value)
	}

	envelopeSize := q.variants[tag].envelopeSize
	// One header is always kept available past the envelope so that a wrap
	// or switch envelope fits without blocking.
	minimumNeeded := envelopeSize + arena.HeaderSize

	block := q.write
	tail := block.Tail()
	free := int64(block.Free.Count())

	switch {
	case tail >= minimumNeeded && free >= minimumNeeded:
		block.Free.Acquire(uint64(envelopeSize))
		place(block, envelopeSize, tag, value)

	case free >= tail+minimumNeeded:
		block.Free.Acquire(uint64(tail + envelopeSize))

		// Wrapping proves the consumer has fully drained every older
		// block, so they may be released.
		q.decaying = q.decaying[:0]

		block.PlacePadding()
		place(block, envelopeSize, tag, value)

	default:
		capacity := 2 * block.Capacity()
		for capacity < minimumNeeded {
			capacity *= 2
		}
		next, err := arena.NewBlock(capacity)
		if err != nil {
			return err
		}

		block.Free.Acquire(uint64(arena.HeaderSize))
		block.Next = next
		block.PlaceSwitch()

		q.decaying = append(q.decaying, block)
		q.write = next

		next.Free.Acquire(uint64(envelopeSize))
		place(next, envelopeSize, tag, value)
	}

	q.pending.Release(1)
	return nil
}

// Dequeue returns the oldest payload, blocking until one is available. The
// returned value aliases the arena and stays valid until the next Dequeue or
// Close.
//
// Must be called by the single consumer only.
func (q *Queue[T]) Dequeue() (T, error) {
	if q.held {
		q.releaseCurrent()
	}
	q.pending.Acquire(1)
	q.held = true

	for q.read.Header(q.readPos).Kind != arena.ElementKind {
		q.releaseCurrent()
	}

	h := q.read.Header(q.readPos)
	if int(h.Variant) >= len(q.variants) {
		var t T
		return t, errors.Errorf("corrupted envelope: unknown variant %d", h.Variant)
	}
	return q.variants[h.Variant].view(q.read.Payload(q.readPos)), nil
}

// IsEmpty returns true if no payload is queued. The answer is a racy
// snapshot and may be used only as a hint.
func (q *Queue[T]) IsEmpty() bool {
	return q.pending.Count() == 0
}

// Close drains every remaining envelope, running each payload's drop hook
// exactly once. The producer must have stopped before Close is called.
func (q *Queue[T]) Close() {
	if q.held {
		q.releaseCurrent()
		q.held = false
	}

	for q.pending.TryAcquire(1) {
		for q.read.Header(q.readPos).Kind != arena.ElementKind {
			q.releaseCurrent()
		}
		q.releaseCurrent()
	}
}

// releaseCurrent destroys the payload of the envelope under the read cursor,
// if any, advances the cursor and returns the envelope's bytes to the owning
// block.
func (q *Queue[T]) releaseCurrent() {
	block := q.read
	h := block.Header(q.readPos)
	size := h.Size

	switch h.Kind {
	case arena.ElementKind:
		if drop := q.variants[h.Variant].drop; drop != nil {
			drop(block.Payload(q.readPos))
		}
		q.readPos = h.Next
	case arena.PaddingKind:
		q.readPos = 0
	case arena.SwitchKind:
		q.read = block.Next
		q.readPos = 0
	}

	block.Free.Release(uint64(size))
}

func place[U comparable](block *arena.Block, envelopeSize int64, tag uint32, value U) {
	payload := block.PlaceElement(envelopeSize, tag)
	*photon.NewFromBytes[U](payload).Value = value
}
