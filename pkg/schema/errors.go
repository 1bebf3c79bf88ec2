package schema

import "errors"

var (
	ErrEmptyName           = errors.New("schema: empty entity name")
	ErrEmptyCollection     = errors.New("schema: empty collection name")
	ErrEmptyIndex          = errors.New("schema: index without keys")
	ErrDuplicateName       = errors.New("schema: duplicate entity name")
	ErrDuplicateCollection = errors.New("schema: duplicate collection")
)
