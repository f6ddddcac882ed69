// Package memstore is an in-memory implementation of the storage
// contracts in lms/store. It honors the same atomic-upsert semantics as
// the gorm implementation behind a single mutex, which makes it a drop-in
// substitute for exercising the progress engine in tests.
package memstore

import (
	"sort"
	"sync"
	"time"

	courseModels "lms/models/course"
	"lms/store"
)

type enrollKey struct{ userID, courseID uint }
type markKey struct{ userID, lessonID uint }

// Store holds the catalog's lesson sets and both ledgers.
type Store struct {
	mu       sync.Mutex
	nextID   uint
	lessons  map[uint][]uint // courseID -> live lesson IDs
	enrolls  map[enrollKey]*courseModels.Enrollment
	marks    map[markKey]*courseModels.LessonProgress
	listener store.CatalogListener
	now      func() time.Time
}

func New() *Store {
	return &Store{
		lessons: make(map[uint][]uint),
		enrolls: make(map[enrollKey]*courseModels.Enrollment),
		marks:   make(map[markKey]*courseModels.LessonProgress),
		now:     time.Now,
	}
}

// OnChange registers the consistency maintainer.
func (s *Store) OnChange(l store.CatalogListener) {
	s.listener = l
}

// SetClock overrides the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// AddCourse registers a course with an initially empty lesson set.
func (s *Store) AddCourse(courseID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lessons[courseID]; !ok {
		s.lessons[courseID] = nil
	}
}

// AddLesson adds a lesson to a course and notifies the listener.
func (s *Store) AddLesson(courseID, lessonID uint) error {
	s.mu.Lock()
	s.lessons[courseID] = append(s.lessons[courseID], lessonID)
	s.mu.Unlock()

	return s.notify(store.CatalogEvent{
		CourseID:       courseID,
		AddedLessonIDs: []uint{lessonID},
	})
}

// RemoveLesson removes a lesson from a course and notifies the listener.
func (s *Store) RemoveLesson(courseID, lessonID uint) error {
	s.mu.Lock()
	live := s.lessons[courseID][:0]
	for _, id := range s.lessons[courseID] {
		if id != lessonID {
			live = append(live, id)
		}
	}
	s.lessons[courseID] = live
	s.mu.Unlock()

	return s.notify(store.CatalogEvent{
		CourseID:         courseID,
		RemovedLessonIDs: []uint{lessonID},
	})
}

func (s *Store) LessonIDs(courseID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint, len(s.lessons[courseID]))
	copy(ids, s.lessons[courseID])
	return ids, nil
}

func (s *Store) notify(ev store.CatalogEvent) error {
	if s.listener == nil {
		return nil
	}
	return s.listener.CatalogChanged(ev)
}

func (s *Store) Enroll(userID, courseID uint) (*courseModels.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := enrollKey{userID, courseID}
	if existing, ok := s.enrolls[key]; ok {
		out := *existing
		return &out, nil
	}

	s.nextID++
	enrollment := &courseModels.Enrollment{
		ID:        s.nextID,
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: s.now(),
	}
	s.enrolls[key] = enrollment
	out := *enrollment
	return &out, nil
}

func (s *Store) Get(userID, courseID uint) (*courseModels.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enrollment, ok := s.enrolls[enrollKey{userID, courseID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *enrollment
	return &out, nil
}

func (s *Store) ListByUser(userID uint) ([]courseModels.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var enrollments []courseModels.Enrollment
	for key, e := range s.enrolls {
		if key.userID == userID {
			enrollments = append(enrollments, *e)
		}
	}
	sortEnrollments(enrollments)
	return enrollments, nil
}

func (s *Store) ListByCourse(courseID uint) ([]courseModels.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var enrollments []courseModels.Enrollment
	for key, e := range s.enrolls {
		if key.courseID == courseID {
			enrollments = append(enrollments, *e)
		}
	}
	sortEnrollments(enrollments)
	return enrollments, nil
}

func (s *Store) SetCompleted(userID, courseID uint, at *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enrollment, ok := s.enrolls[enrollKey{userID, courseID}]
	if !ok {
		return store.ErrNotFound
	}
	enrollment.CompletedAt = at
	return nil
}

func (s *Store) MarkComplete(userID, lessonID, courseID uint) (*courseModels.LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := markKey{userID, lessonID}
	if existing, ok := s.marks[key]; ok {
		existing.IsCompleted = true
		out := *existing
		return &out, nil
	}

	s.nextID++
	mark := &courseModels.LessonProgress{
		ID:          s.nextID,
		UserID:      userID,
		LessonID:    lessonID,
		CourseID:    courseID,
		IsCompleted: true,
		UpdatedAt:   s.now(),
	}
	s.marks[key] = mark
	out := *mark
	return &out, nil
}

func (s *Store) IsComplete(userID, lessonID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mark, ok := s.marks[markKey{userID, lessonID}]
	return ok && mark.IsCompleted, nil
}

func (s *Store) CompletedLessonIDs(userID uint, lessonIDs []uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uint
	for _, lessonID := range lessonIDs {
		if mark, ok := s.marks[markKey{userID, lessonID}]; ok && mark.IsCompleted {
			ids = append(ids, lessonID)
		}
	}
	return ids, nil
}

func (s *Store) DeleteByLessonIDs(lessonIDs []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.marks {
		for _, lessonID := range lessonIDs {
			if key.lessonID == lessonID {
				delete(s.marks, key)
				break
			}
		}
	}
	return nil
}

func sortEnrollments(enrollments []courseModels.Enrollment) {
	sort.Slice(enrollments, func(i, j int) bool {
		return enrollments[i].ID < enrollments[j].ID
	})
}
