// Package lms declares the learning platform's domain entities as a
// schema.Set: users, courses, enrollments, lessons, assignments,
// submissions, quizzes, quiz attempts and announcements.
//
// The set is what tenantdb.Registrar attaches to every tenant connection.
// Handler serves the tenant-scoped endpoints reading through the connection
// that tenantdb.Middleware placed in the request context.
package lms
