package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type settings struct {
	Name    string `json:"name" yaml:"name"`
	Retries int    `json:"retries" yaml:"retries"`
}

func TestSaveLoad(t *testing.T) {
	requireT := require.New(t)

	s := NewStore()

	saved := settings{Name: "primary", Retries: 3}
	requireT.NoError(s.Save("net", NewItem(&saved, JSON[settings]{})))
	requireT.True(s.Has("net"))
	requireT.False(s.Has("other"))

	var loaded settings
	exists, err := s.Load("net", NewItem(&loaded, JSON[settings]{}))
	requireT.NoError(err)
	requireT.True(exists)
	requireT.Equal(saved, loaded)

	exists, err = s.Load("other", NewItem(&loaded, JSON[settings]{}))
	requireT.NoError(err)
	requireT.False(exists)
}

func TestSaveReplacesExisting(t *testing.T) {
	requireT := require.New(t)

	s := NewStore()

	first := settings{Name: "first"}
	second := settings{Name: "second"}
	requireT.NoError(s.Save("key", NewItem(&first, JSON[settings]{})))
	requireT.NoError(s.Save("key", NewItem(&second, JSON[settings]{})))

	var loaded settings
	exists, err := s.Load("key", NewItem(&loaded, JSON[settings]{}))
	requireT.NoError(err)
	requireT.True(exists)
	requireT.Equal(second, loaded)
}

func TestRemoveAndClear(t *testing.T) {
	requireT := require.New(t)

	s := NewStore()

	value := settings{Name: "x"}
	requireT.NoError(s.Save("a", NewItem(&value, JSON[settings]{})))
	requireT.NoError(s.Save("b", NewItem(&value, JSON[settings]{})))

	s.Remove("a")
	requireT.False(s.Has("a"))
	requireT.True(s.Has("b"))

	s.Remove("missing")

	s.Clear()
	requireT.False(s.Has("b"))
}

func TestYAMLSerializer(t *testing.T) {
	requireT := require.New(t)

	s := NewStore()

	saved := settings{Name: "yaml", Retries: 7}
	requireT.NoError(s.Save("cfg", NewItem(&saved, YAML[settings]{})))

	var loaded settings
	exists, err := s.Load("cfg", NewItem(&loaded, YAML[settings]{}))
	requireT.NoError(err)
	requireT.True(exists)
	requireT.Equal(saved, loaded)
}

func TestCascadingFallsBackToParent(t *testing.T) {
	requireT := require.New(t)

	child := NewStore()
	parent := NewStore()

	childValue := settings{Name: "child"}
	parentValue := settings{Name: "parent"}
	inherited := settings{Name: "inherited"}
	requireT.NoError(child.Save("shared", NewItem(&childValue, JSON[settings]{})))
	requireT.NoError(parent.Save("shared", NewItem(&parentValue, JSON[settings]{})))
	requireT.NoError(parent.Save("base", NewItem(&inherited, JSON[settings]{})))

	c := Cascading(child, parent)

	// The child wins for keys it holds.
	var loaded settings
	exists, err := c.Load("shared", NewItem(&loaded, JSON[settings]{}))
	requireT.NoError(err)
	requireT.True(exists)
	requireT.Equal(childValue, loaded)

	// Keys absent from the child cascade to the parent.
	exists, err = c.Load("base", NewItem(&loaded, JSON[settings]{}))
	requireT.NoError(err)
	requireT.True(exists)
	requireT.Equal(inherited, loaded)

	requireT.True(c.Has("shared"))
	requireT.True(c.Has("base"))
	requireT.False(c.Has("missing"))

	exists, err = c.Load("missing", NewItem(&loaded, JSON[settings]{}))
	requireT.NoError(err)
	requireT.False(exists)
}
