package gormstore

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModels "lms/models/course"
	"lms/store"
)

// Enrollments is the gorm-backed enrollment ledger.
type Enrollments struct {
	db *gorm.DB
}

func NewEnrollments(db *gorm.DB) *Enrollments {
	return &Enrollments{db: db}
}

// Enroll upserts the (user, course) row. The ON CONFLICT DO NOTHING
// clause makes concurrent enrolls for the same pair safe: whichever
// insert loses the race falls through to the fetch and returns the
// winner's row. An existing completion timestamp is never touched.
func (s *Enrollments) Enroll(userID, courseID uint) (*courseModels.Enrollment, error) {
	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&enrollment).Error
	if err != nil {
		return nil, err
	}

	return s.Get(userID, courseID)
}

func (s *Enrollments) Get(userID, courseID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (s *Enrollments) ListByUser(userID uint) ([]courseModels.Enrollment, error) {
	var enrollments []courseModels.Enrollment
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&enrollments).Error
	return enrollments, err
}

func (s *Enrollments) ListByCourse(courseID uint) ([]courseModels.Enrollment, error) {
	var enrollments []courseModels.Enrollment
	err := s.db.Where("course_id = ?", courseID).Find(&enrollments).Error
	return enrollments, err
}

func (s *Enrollments) SetCompleted(userID, courseID uint, at *time.Time) error {
	return s.db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Update("completed_at", at).Error
}
