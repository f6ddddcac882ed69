package gormstore

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModels "lms/models/course"
)

// Completions is the gorm-backed completion ledger.
type Completions struct {
	db *gorm.DB
}

func NewCompletions(db *gorm.DB) *Completions {
	return &Completions{db: db}
}

// MarkComplete upserts the (user, lesson) row to completed = true.
// Re-marking a completed lesson rewrites the same row, so two
// concurrent calls for the same pair can never double-count.
func (s *Completions) MarkComplete(userID, lessonID, courseID uint) (*courseModels.LessonProgress, error) {
	mark := courseModels.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		CourseID:    courseID,
		IsCompleted: true,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_completed": true}),
	}).Create(&mark).Error
	if err != nil {
		return nil, err
	}

	var saved courseModels.LessonProgress
	if err := s.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Completions) IsComplete(userID, lessonID uint) (bool, error) {
	var mark courseModels.LessonProgress
	err := s.db.Where("user_id = ? AND lesson_id = ? AND is_completed = ?", userID, lessonID, true).First(&mark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Completions) CompletedLessonIDs(userID uint, lessonIDs []uint) ([]uint, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := s.db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND is_completed = ? AND lesson_id IN ?", userID, true, lessonIDs).
		Pluck("lesson_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Completions) DeleteByLessonIDs(lessonIDs []uint) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	return s.db.Where("lesson_id IN ?", lessonIDs).
		Delete(&courseModels.LessonProgress{}).Error
}
