package schema

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Index describes one secondary index of an entity collection.
type Index struct {
	Name        string
	Keys        bson.D
	Unique      bool
	Sparse      bool
	ExpireAfter time.Duration // TTL, zero disables expiry
}

// Schema is the shape definition of one domain entity.
// Attaching it to a connection makes operations against the entity possible there.
type Schema struct {
	Name       string // entity type, e.g. "User"
	Collection string // backing collection, e.g. "users"
	Validator  bson.M // optional $jsonSchema validator document
	Indexes    []Index
}

func (s Schema) validate() error {
	if s.Name == "" {
		return ErrEmptyName
	}
	if s.Collection == "" {
		return fmt.Errorf("%w: schema %q", ErrEmptyCollection, s.Name)
	}
	for _, idx := range s.Indexes {
		if len(idx.Keys) == 0 {
			return fmt.Errorf("%w: schema %q index %q", ErrEmptyIndex, s.Name, idx.Name)
		}
	}
	return nil
}
