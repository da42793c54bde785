package config

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Serializer converts values of type T to and from their stored form.
type Serializer[T any] interface {
	// Serialize writes data to output.
	Serialize(data T, output io.Writer) error

	// Deserialize reads data from input.
	Deserialize(data *T, input io.Reader) error
}

// Serializable is an item able to serialize itself.
type Serializable interface {
	Serialize(output io.Writer) error
	Deserialize(input io.Reader) error
}

// JSON serializes values as JSON documents.
type JSON[T any] struct{}

// Serialize implements Serializer.
func (JSON[T]) Serialize(data T, output io.Writer) error {
	return errors.WithStack(json.NewEncoder(output).Encode(data))
}

// Deserialize implements Serializer.
func (JSON[T]) Deserialize(data *T, input io.Reader) error {
	return errors.WithStack(json.NewDecoder(input).Decode(data))
}

// YAML serializes values as YAML documents.
type YAML[T any] struct{}

// Serialize implements Serializer.
func (YAML[T]) Serialize(data T, output io.Writer) error {
	encoder := yaml.NewEncoder(output)
	if err := encoder.Encode(data); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(encoder.Close())
}

// Deserialize implements Serializer.
func (YAML[T]) Deserialize(data *T, input io.Reader) error {
	return errors.WithStack(yaml.NewDecoder(input).Decode(data))
}

// Item binds a value to a serializer, producing a Serializable to store in
// and load from a Store.
type Item[T any] struct {
	value      *T
	serializer Serializer[T]
}

// NewItem returns an item serializing value with serializer.
func NewItem[T any](value *T, serializer Serializer[T]) Item[T] {
	return Item[T]{
		value:      value,
		serializer: serializer,
	}
}

// Serialize implements Serializable.
func (i Item[T]) Serialize(output io.Writer) error {
	return i.serializer.Serialize(*i.value, output)
}

// Deserialize implements Serializable.
func (i Item[T]) Deserialize(input io.Reader) error {
	return i.serializer.Deserialize(i.value, input)
}
