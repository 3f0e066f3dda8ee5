package modeling

import (
	"fmt"
	"strings"
)

// A Key names one piece of data that a component exposes or accepts.
type Key string

// KeyMustBeValid panics if a key cannot be referenced from a border file.
func KeyMustBeValid(k Key) {
	s := string(k)
	if s == "" {
		panic("key must not be empty")
	}

	if strings.ContainsAny(s, ":,*> \t\n") {
		panic(fmt.Sprintf("key %q must not contain separators or spaces", s))
	}
}

type keySet struct {
	ordered []Key
	index   map[Key]struct{}
}

func makeKeySet(kind string, keys []Key) keySet {
	s := keySet{
		ordered: make([]Key, 0, len(keys)),
		index:   make(map[Key]struct{}, len(keys)),
	}

	for _, k := range keys {
		KeyMustBeValid(k)

		if _, found := s.index[k]; found {
			panic(fmt.Sprintf("%s key %s is declared more than once", kind, k))
		}

		s.ordered = append(s.ordered, k)
		s.index[k] = struct{}{}
	}

	return s
}

func (s keySet) has(k Key) bool {
	_, found := s.index[k]
	return found
}

func (s keySet) list() []Key {
	out := make([]Key, len(s.ordered))
	copy(out, s.ordered)

	return out
}
