package lms

import (
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/lmskit/pkg/schema"
)

// Entity names of the platform's domain model.
const (
	EntityUser         = "User"
	EntityCourse       = "Course"
	EntityEnrollment   = "Enrollment"
	EntityLesson       = "Lesson"
	EntityAssignment   = "Assignment"
	EntitySubmission   = "Submission"
	EntityQuiz         = "Quiz"
	EntityQuizAttempt  = "QuizAttempt"
	EntityAnnouncement = "Announcement"
)

var (
	schemasOnce sync.Once
	schemas     schema.Set
)

// Schemas returns the platform's schema set. It is built once and shared.
func Schemas() schema.Set {
	schemasOnce.Do(func() {
		schemas = schema.MustNewSet(
			userSchema(),
			courseSchema(),
			enrollmentSchema(),
			lessonSchema(),
			assignmentSchema(),
			submissionSchema(),
			quizSchema(),
			quizAttemptSchema(),
			announcementSchema(),
		)
	})
	return schemas
}

// jsonSchema builds a $jsonSchema validator requiring the given fields.
func jsonSchema(required []string, properties bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": properties,
		},
	}
}

func asc(keys ...string) bson.D {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return d
}

func userSchema() schema.Schema {
	return schema.Schema{
		Name:       EntityUser,
		Collection: "users",
		Validator: jsonSchema([]string{"email", "name", "role"}, bson.M{
			"email": bson.M{"bsonType": "string"},
			"name":  bson.M{"bsonType": "string"},
			"role":  bson.M{"enum": bson.A{"admin", "instructor", "student"}},
		}),
		Indexes: []schema.Index{
			{Name: "email_unique", Keys: asc("email"), Unique: true},
			{Name: "role", Keys: asc("role")},
		},
	}
}

func courseSchema() schema.Schema {
	return schema.Schema{
		Name:       EntityCourse,
		Collection: "courses",
		Validator: jsonSchema([]string{"title", "slug", "owner_id"}, bson.M{
			"title":     bson.M{"bsonType": "string"},
			"slug":      bson.M{"bsonType": "string"},
			"owner_id":  bson.M{"bsonType": "objectId"},
			"published": bson.M{"bsonType": "bool"},
		}),
		Indexes: []schema.Index{
			{Name: "slug_unique", Keys: asc("slug"), Unique: true},
			{Name: "owner", Keys: asc("owner_id")},
		},
	}
}

func enrollmentSchema() schema.Schema {
	return schema.Schema{
		Name:       EntityEnrollment,
		Collection: "enrollments",
		Validator: jsonSchema([]string{"user_id", "course_id"}, bson.M{
			"user_id":   bson.M{"bsonType": "objectId"},
			"course_id": bson.M{"bsonType": "objectId"},
		}),
		Indexes: []schema.Index{
			{Name: "user_course_unique", Keys: asc("user_id", "course_id"), Unique: true},
			{Name: "course", Keys: asc("course_id")},
		},
	}
}

func lessonSchema() schema.Schema {
	return schema.Schema{
		Name:       EntityLesson,
		Collection: "lessons",
		Validator: jsonSchema([]string{"course_id", "title", "position"}, bson.M{
			"course_id": bson.M{"bsonType": "objectId"},
			"title":     bson.M{"bsonType": "string"},
			"position":  bson.M{"bsonType": "int"},
		}),
		Indexes: []schema.Index{
			{Name: "course_position", Keys: asc("course_id", "position")},
		},
	}
}

func assignmentSchema() schema.Schema {
	return schema.Schema{
		Name:       EntityAssignment,
		Collection: "assignments",
		Validator: jsonSchema([]string{"course_id", "title"}, bson.M{
			"course_id": bson.M{"bsonType": "objectId"},
			"title":     bson.M{"bsonType": "string"},
			"due_at":    bson.M{"bsonType": "date"},
			"max_score": bson.M{"bsonType": bson.A{"int", "double"}},
		}),
		Indexes: []schema.Index{
			{Name: "course_due", Keys: asc("course_id", "due_at")},
		},
	}
}

func submissionSchema() schema.Schema {
	return schema.Schema{
		Name:       EntitySubmission,
		Collection: "submissions",
		Validator: jsonSchema([]string{"assignment_id", "student_id", "submitted_at"}, bson.M{
			"assignment_id": bson.M{"bsonType": "objectId"},
			"student_id":    bson.M{"bsonType": "objectId"},
			"submitted_at":  bson.M{"bsonType": "date"},
			"file_url":      bson.M{"bsonType": "string"},
		}),
		Indexes: []schema.Index{
			{Name: "assignment_student_unique", Keys: asc("assignment_id", "student_id"), Unique: true},
			{Name: "student", Keys: asc("student_id")},
		},
	}
}

func quizSchema() schema.Schema {
	return schema.Schema{
		Name:       EntityQuiz,
		Collection: "quizzes",
		Validator: jsonSchema([]string{"course_id", "title", "questions"}, bson.M{
			"course_id": bson.M{"bsonType": "objectId"},
			"title":     bson.M{"bsonType": "string"},
			"questions": bson.M{"bsonType": "array"},
		}),
		Indexes: []schema.Index{
			{Name: "course", Keys: asc("course_id")},
		},
	}
}

func quizAttemptSchema() schema.Schema {
	return schema.Schema{
		Name:       EntityQuizAttempt,
		Collection: "quiz_attempts",
		Validator: jsonSchema([]string{"quiz_id", "student_id", "started_at"}, bson.M{
			"quiz_id":    bson.M{"bsonType": "objectId"},
			"student_id": bson.M{"bsonType": "objectId"},
			"started_at": bson.M{"bsonType": "date"},
			"score":      bson.M{"bsonType": bson.A{"int", "double", "null"}},
		}),
		Indexes: []schema.Index{
			{Name: "quiz_student", Keys: asc("quiz_id", "student_id")},
		},
	}
}

func announcementSchema() schema.Schema {
	return schema.Schema{
		Name:       EntityAnnouncement,
		Collection: "announcements",
		Validator: jsonSchema([]string{"course_id", "body", "created_at"}, bson.M{
			"course_id":  bson.M{"bsonType": "objectId"},
			"body":       bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
		}),
		Indexes: []schema.Index{
			{Name: "course_recent", Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
}
