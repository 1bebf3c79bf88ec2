package schema

import "fmt"

// Set is an immutable, ordered collection of schemas.
// The zero value is an empty set.
type Set struct {
	schemas []Schema
	byName  map[string]int
}

// NewSet builds a Set, rejecting invalid schemas and duplicate names or collections.
func NewSet(schemas ...Schema) (Set, error) {
	s := Set{
		schemas: make([]Schema, 0, len(schemas)),
		byName:  make(map[string]int, len(schemas)),
	}
	collections := make(map[string]string, len(schemas))

	for _, sc := range schemas {
		if err := sc.validate(); err != nil {
			return Set{}, err
		}
		if _, dup := s.byName[sc.Name]; dup {
			return Set{}, fmt.Errorf("%w: %q", ErrDuplicateName, sc.Name)
		}
		if owner, dup := collections[sc.Collection]; dup {
			return Set{}, fmt.Errorf("%w: %q used by %q and %q", ErrDuplicateCollection, sc.Collection, owner, sc.Name)
		}
		collections[sc.Collection] = sc.Name
		s.byName[sc.Name] = len(s.schemas)
		s.schemas = append(s.schemas, sc)
	}

	return s, nil
}

// MustNewSet is like NewSet but panics on error.
// Use it for schema sets declared at process start.
func MustNewSet(schemas ...Schema) Set {
	s, err := NewSet(schemas...)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return s
}

// Len returns the number of schemas in the set.
func (s Set) Len() int { return len(s.schemas) }

// Names returns entity names in declaration order.
func (s Set) Names() []string {
	names := make([]string, len(s.schemas))
	for i, sc := range s.schemas {
		names[i] = sc.Name
	}
	return names
}

// Lookup returns the schema registered under name.
func (s Set) Lookup(name string) (Schema, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Schema{}, false
	}
	return s.schemas[i], true
}

// All returns a copy of the schemas in declaration order.
func (s Set) All() []Schema {
	out := make([]Schema, len(s.schemas))
	copy(out, s.schemas)
	return out
}
