package pubsub

import (
	"os"

	"github.com/rs/zerolog"
)

// Publisher delivers data change notifications to a set of subscribers.
// Subscribers are identified by an opaque comparable key and notified in
// subscription order on each publish.
type Publisher[T any] struct {
	subscribers map[any]func(T)
	order       []any

	logger zerolog.Logger
}

// Option configures a publisher.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger routes the publisher's diagnostics to the given sink.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New returns a publisher with no subscribers.
func New[T any](opts ...Option) *Publisher[T] {
	o := options{
		logger: zerolog.New(os.Stderr),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Publisher[T]{
		subscribers: map[any]func(T){},
		logger:      o.logger,
	}
}

// Subscribe registers notify under key. A duplicate key is reported and the
// subscription is rejected.
func (p *Publisher[T]) Subscribe(key any, notify func(T)) bool {
	if _, exists := p.subscribers[key]; exists {
		p.logger.Warn().Interface("key", key).Msg("failed to add subscriber: duplicate")
		return false
	}

	p.subscribers[key] = notify
	p.order = append(p.order, key)
	return true
}

// Unsubscribe removes the subscription under key. An unknown key is reported.
func (p *Publisher[T]) Unsubscribe(key any) bool {
	if _, exists := p.subscribers[key]; !exists {
		p.logger.Warn().Interface("key", key).Msg("failed to remove subscriber: non-existent")
		return false
	}

	delete(p.subscribers, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

// Publish notifies all subscribers in subscription order. Should be called
// by the data owner whenever the data changes.
func (p *Publisher[T]) Publish(data T) {
	for _, key := range p.order {
		p.subscribers[key](data)
	}
}
