package gormstore

import (
	"errors"

	"gorm.io/gorm"

	courseModels "lms/models/course"
	"lms/store"
)

// Catalog performs the structural catalog mutations that affect learner
// progress. Every lesson addition or removal is reported to the
// registered listener synchronously, so dependent enrollment state is
// fixed before the mutating call returns.
type Catalog struct {
	db       *gorm.DB
	listener store.CatalogListener
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// OnChange registers the consistency maintainer. Set once at startup.
func (s *Catalog) OnChange(l store.CatalogListener) {
	s.listener = l
}

// LessonIDs returns the IDs of all live lessons under the course.
func (s *Catalog) LessonIDs(courseID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetLesson returns a live lesson by ID.
func (s *Catalog) GetLesson(lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := s.db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// CreateLesson validates the parent module, creates the lesson and
// notifies the listener of the addition.
func (s *Catalog) CreateLesson(lesson *courseModels.Lesson) error {
	var module courseModels.Module
	err := s.db.Where("id = ? AND is_deleted = ?", lesson.ModuleID, false).First(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	lesson.CourseID = module.CourseID
	if err := s.db.Create(lesson).Error; err != nil {
		return err
	}

	return s.notify(store.CatalogEvent{
		CourseID:       lesson.CourseID,
		AddedLessonIDs: []uint{lesson.ID},
	})
}

// DeleteLesson soft-deletes a single lesson and notifies the listener.
func (s *Catalog) DeleteLesson(lessonID uint) error {
	lesson, err := s.GetLesson(lessonID)
	if err != nil {
		return err
	}

	err = s.db.Model(&courseModels.Lesson{}).
		Where("id = ?", lessonID).
		Update("is_deleted", true).Error
	if err != nil {
		return err
	}

	return s.notify(store.CatalogEvent{
		CourseID:         lesson.CourseID,
		RemovedLessonIDs: []uint{lesson.ID},
	})
}

// DeleteModule soft-deletes a module together with its lessons, then
// notifies the listener with the full set of removed lesson IDs.
func (s *Catalog) DeleteModule(courseID, moduleID uint) error {
	var module courseModels.Module
	err := s.db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	var lessonIDs []uint
	if err := s.db.Model(&courseModels.Lesson{}).
		Where("module_id = ? AND is_deleted = ?", moduleID, false).
		Pluck("id", &lessonIDs).Error; err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&courseModels.Module{}).
			Where("id = ?", moduleID).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		if len(lessonIDs) > 0 {
			if err := tx.Model(&courseModels.Lesson{}).
				Where("id IN ?", lessonIDs).
				Update("is_deleted", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(lessonIDs) == 0 {
		return nil
	}
	return s.notify(store.CatalogEvent{
		CourseID:         courseID,
		RemovedLessonIDs: lessonIDs,
	})
}

// DeleteCourse soft-deletes the course and every descendant module and
// lesson, and purges the ledger rows that referenced them. No listener
// notification: the enrollments are gone with the course, so there is
// nothing left to re-evaluate.
func (s *Catalog) DeleteCourse(courseID uint) error {
	var course courseModels.Course
	err := s.db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&courseModels.Course{}).
			Where("id = ?", courseID).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&courseModels.Module{}).
			Where("course_id = ?", courseID).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&courseModels.Lesson{}).
			Where("course_id = ?", courseID).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).
			Delete(&courseModels.LessonProgress{}).Error; err != nil {
			return err
		}
		return tx.Where("course_id = ?", courseID).
			Delete(&courseModels.Enrollment{}).Error
	})
}

func (s *Catalog) notify(ev store.CatalogEvent) error {
	if s.listener == nil {
		return nil
	}
	return s.listener.CatalogChanged(ev)
}
