package course

import "time"

// Enrollment tracks a user's enrollment in a course. One row per
// (user, course) pair, enforced by the composite unique index so that
// concurrent enroll calls collapse into a single row.
//
// CompletedAt is the only completion state stored; the percentage is
// always recomputed from the live lesson set and is never persisted.
// Enrollment rows are hard-deleted on course removal, which is why this
// model does not embed gorm.Model: a soft-delete column would keep dead
// rows inside the unique index and break the upsert.
type Enrollment struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	UserID      uint       `json:"user_id" gorm:"uniqueIndex:idx_user_course;not null"`
	CourseID    uint       `json:"course_id" gorm:"uniqueIndex:idx_user_course;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}
