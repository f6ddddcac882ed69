// Package store defines the storage contracts the progress engine is
// built against. The gormstore package implements them over PostgreSQL,
// memstore over plain maps; both guarantee atomic upsert semantics on
// the composite keys (user, course) and (user, lesson).
package store

import (
	"errors"
	"time"

	courseModels "lms/models/course"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("store: record not found")

// CatalogEvent describes a structural change to a course's lesson set.
// Exactly one of the two ID slices is populated per event.
type CatalogEvent struct {
	CourseID         uint
	AddedLessonIDs   []uint
	RemovedLessonIDs []uint
}

// CatalogListener receives catalog change events synchronously, after
// the change is committed but before the mutating call returns.
type CatalogListener interface {
	CatalogChanged(ev CatalogEvent) error
}

// CatalogReader exposes the current lesson set of a course.
type CatalogReader interface {
	// LessonIDs returns the IDs of every live lesson reachable through
	// the course's modules. An empty course yields an empty slice.
	LessonIDs(courseID uint) ([]uint, error)
}

// EnrollmentLedger holds one record per (user, course) pair.
type EnrollmentLedger interface {
	// Enroll is an idempotent upsert: enrolling an already-enrolled user
	// returns the existing record unchanged, completion timestamp included.
	Enroll(userID, courseID uint) (*courseModels.Enrollment, error)

	// Get returns ErrNotFound when the user is not enrolled.
	Get(userID, courseID uint) (*courseModels.Enrollment, error)

	ListByUser(userID uint) ([]courseModels.Enrollment, error)
	ListByCourse(courseID uint) ([]courseModels.Enrollment, error)

	// SetCompleted sets or clears the completion timestamp. Only the
	// progress engine calls this; handlers never do.
	SetCompleted(userID, courseID uint, at *time.Time) error
}

// CompletionLedger holds one record per (user, lesson) pair.
type CompletionLedger interface {
	// MarkComplete is an idempotent upsert to completed = true.
	MarkComplete(userID, lessonID, courseID uint) (*courseModels.LessonProgress, error)

	// IsComplete reports false when no row exists.
	IsComplete(userID, lessonID uint) (bool, error)

	// CompletedLessonIDs filters the candidate set down to the lessons
	// the user has completed. Scoping to an explicit candidate set keeps
	// marks from one course from ever leaking into another course's count.
	CompletedLessonIDs(userID uint, lessonIDs []uint) ([]uint, error)

	// DeleteByLessonIDs purges marks for removed lessons, for all users.
	DeleteByLessonIDs(lessonIDs []uint) error
}
