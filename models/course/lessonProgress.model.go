package course

import "time"

// LessonProgress records that a user finished a lesson. One row per
// (user, lesson) pair; marking an already-completed lesson is an upsert
// onto the same row. Only completed marks are ever written. Rows are
// hard-deleted when the lesson they reference is removed from the
// catalog, so no soft-delete column here either.
type LessonProgress struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	LessonID    uint      `json:"lesson_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	CourseID    uint      `json:"course_id" gorm:"index;not null"`
	IsCompleted bool      `json:"is_completed" gorm:"default:true"`
	UpdatedAt   time.Time `json:"completed_at"`
}
