package config

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// Reader is the read-only view of a configuration store.
type Reader interface {
	// Load deserializes the item stored under key. Returns false if the key
	// does not exist.
	Load(key string, item Serializable) (bool, error)

	// Has returns true if an item is stored under key.
	Has(key string) bool
}

// Store is a string-keyed mapping onto opaque serialized byte strings.
// Keys are indexed by their hash and verified on lookup.
type Store struct {
	items map[uint64][]entry
}

type entry struct {
	key  string
	data []byte
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		items: map[uint64][]entry{},
	}
}

// Save serializes item and stores the result under key, replacing any
// previous value.
func (s *Store) Save(key string, item Serializable) error {
	var buf bytes.Buffer
	if err := item.Serialize(&buf); err != nil {
		return err
	}

	tag := xxhash.Sum64String(key)
	entries := s.items[tag]
	for i := range entries {
		if entries[i].key == key {
			entries[i].data = buf.Bytes()
			return nil
		}
	}

	s.items[tag] = append(entries, entry{key: key, data: buf.Bytes()})
	return nil
}

// Load implements Reader.
func (s *Store) Load(key string, item Serializable) (bool, error) {
	for _, e := range s.items[xxhash.Sum64String(key)] {
		if e.key == key {
			if err := item.Deserialize(bytes.NewReader(e.data)); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Has implements Reader.
func (s *Store) Has(key string) bool {
	for _, e := range s.items[xxhash.Sum64String(key)] {
		if e.key == key {
			return true
		}
	}
	return false
}

// Remove deletes the item stored under key, if any.
func (s *Store) Remove(key string) {
	tag := xxhash.Sum64String(key)
	entries := s.items[tag]
	for i, e := range entries {
		if e.key == key {
			entries = append(entries[:i], entries[i+1:]...)
			if len(entries) == 0 {
				delete(s.items, tag)
			} else {
				s.items[tag] = entries
			}
			return
		}
	}
}

// Clear deletes all items.
func (s *Store) Clear() {
	s.items = map[uint64][]entry{}
}
