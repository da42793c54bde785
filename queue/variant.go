package queue

import (
	"reflect"
	"unsafe"

	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/outofforest/flux/arena"
)

// VariantSpec describes one concrete payload type of a queue. The element
// universe of a queue is closed: every type enqueued must be declared as a
// variant at construction time.
type VariantSpec[T any] struct {
	typ          reflect.Type
	envelopeSize int64
	view         func([]byte) T
	drop         func([]byte)
	err          error
}

// VariantOption configures a variant.
type VariantOption[U comparable] func(*variantConfig[U])

type variantConfig[U comparable] struct {
	drop func(*U)
}

// WithDrop registers a hook invoked exactly once per payload, when the
// consumer advances past it or when the queue is closed.
func WithDrop[U comparable](fn func(*U)) VariantOption[U] {
	return func(c *variantConfig[U]) {
		c.drop = fn
	}
}

// Variant declares U as a payload type of a queue of T. The value handed out
// by Dequeue is a *U view aliasing the arena, so U must be fixed-size and
// must not contain pointers, slices, maps, strings or channels.
func Variant[T any, U comparable](opts ...VariantOption[U]) VariantSpec[T] {
	var config variantConfig[U]
	for _, opt := range opts {
		opt(&config)
	}

	var u U
	typ := reflect.TypeOf(u)
	spec := VariantSpec[T]{
		typ:          typ,
		envelopeSize: arena.HeaderSize + arena.Align(int64(unsafe.Sizeof(u))),
	}

	if _, ok := any(&u).(T); !ok {
		spec.err = errors.Errorf("variant %s does not satisfy the element type of the queue", typ)
		return spec
	}

	spec.view = func(b []byte) T {
		return any(photon.NewFromBytes[U](b).Value).(T)
	}
	if config.drop != nil {
		drop := config.drop
		spec.drop = func(b []byte) {
			drop(photon.NewFromBytes[U](b).Value)
		}
	}

	return spec
}
