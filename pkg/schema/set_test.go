package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/lmskit/pkg/schema"
)

func TestNewSet(t *testing.T) {
	t.Parallel()

	user := schema.Schema{
		Name:       "User",
		Collection: "users",
		Indexes:    []schema.Index{{Name: "email", Keys: bson.D{{Key: "email", Value: 1}}, Unique: true}},
	}
	course := schema.Schema{Name: "Course", Collection: "courses"}

	t.Run("keeps declaration order", func(t *testing.T) {
		t.Parallel()

		set, err := schema.NewSet(user, course)
		require.NoError(t, err)
		assert.Equal(t, 2, set.Len())
		assert.Equal(t, []string{"User", "Course"}, set.Names())

		got, ok := set.Lookup("Course")
		require.True(t, ok)
		assert.Equal(t, "courses", got.Collection)

		_, ok = set.Lookup("Quiz")
		assert.False(t, ok)
	})

	t.Run("all returns a copy", func(t *testing.T) {
		t.Parallel()

		set := schema.MustNewSet(user, course)
		all := set.All()
		all[0].Name = "Changed"

		assert.Equal(t, "User", set.Names()[0])
	})

	tests := []struct {
		name    string
		schemas []schema.Schema
		wantErr error
	}{
		{
			name:    "empty name",
			schemas: []schema.Schema{{Collection: "x"}},
			wantErr: schema.ErrEmptyName,
		},
		{
			name:    "empty collection",
			schemas: []schema.Schema{{Name: "X"}},
			wantErr: schema.ErrEmptyCollection,
		},
		{
			name:    "index without keys",
			schemas: []schema.Schema{{Name: "X", Collection: "x", Indexes: []schema.Index{{Name: "bad"}}}},
			wantErr: schema.ErrEmptyIndex,
		},
		{
			name:    "duplicate name",
			schemas: []schema.Schema{user, {Name: "User", Collection: "people"}},
			wantErr: schema.ErrDuplicateName,
		},
		{
			name:    "duplicate collection",
			schemas: []schema.Schema{user, {Name: "Person", Collection: "users"}},
			wantErr: schema.ErrDuplicateCollection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := schema.NewSet(tt.schemas...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("must panics on invalid set", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { schema.MustNewSet(schema.Schema{}) })
	})

	t.Run("zero value is empty", func(t *testing.T) {
		t.Parallel()

		var set schema.Set
		assert.Equal(t, 0, set.Len())
		assert.Empty(t, set.Names())
		_, ok := set.Lookup("User")
		assert.False(t, ok)
	})
}
