package lms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lmskit/svc/lms"
)

func TestSchemas(t *testing.T) {
	t.Parallel()

	set := lms.Schemas()
	assert.Equal(t, 9, set.Len())

	for _, name := range []string{
		lms.EntityUser,
		lms.EntityCourse,
		lms.EntityEnrollment,
		lms.EntityLesson,
		lms.EntityAssignment,
		lms.EntitySubmission,
		lms.EntityQuiz,
		lms.EntityQuizAttempt,
		lms.EntityAnnouncement,
	} {
		sc, ok := set.Lookup(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, sc.Collection, name)
		assert.NotEmpty(t, sc.Indexes, name)
		assert.Contains(t, sc.Validator, "$jsonSchema", name)
	}

	t.Run("returns the same set on every call", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, set.Names(), lms.Schemas().Names())
	})

	t.Run("user email is unique", func(t *testing.T) {
		t.Parallel()

		sc, _ := set.Lookup(lms.EntityUser)
		require.NotEmpty(t, sc.Indexes)
		assert.True(t, sc.Indexes[0].Unique)
		assert.Equal(t, "email", sc.Indexes[0].Keys[0].Key)
	})
}
