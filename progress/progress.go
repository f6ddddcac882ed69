// Package progress implements the progress engine: the aggregator that
// derives a learner's course completion state from the catalog and the
// completion ledger, and the consistency maintainer that re-derives that
// state for every affected enrollment whenever the catalog changes.
//
// The percentage is never stored anywhere; every read recomputes it from
// the ledgers against the course's current lesson set.
package progress

import (
	"errors"
	"fmt"
	"math"
	"time"

	"lms/store"
)

// ErrInvariant reports a completed-lesson count exceeding the course's
// lesson count. Correct candidate-set scoping makes this impossible, so
// the engine fails loudly instead of clamping.
var ErrInvariant = errors.New("progress: completed count exceeds lesson count")

// Snapshot is the derived progress of one (user, course) pair. Field
// names are the API contract other components depend on.
type Snapshot struct {
	CompletedLessonCount int    `json:"completedLessonCount"`
	TotalLessonCount     int    `json:"totalLessonCount"`
	Percentage           int    `json:"percentage"`
	CompletedLessonIDs   []uint `json:"completedLessonIds"`
}

// Complete reports whether the course counts as finished: every lesson
// done and at least one lesson present. An empty course is never
// complete, so an admin publishing a bare course cannot hand out
// zero-effort completions.
func (s Snapshot) Complete() bool {
	return s.TotalLessonCount > 0 && s.CompletedLessonCount == s.TotalLessonCount
}

// Notifier is told when an enrollment first transitions to complete.
type Notifier interface {
	CourseCompleted(userID, courseID uint)
}

// Service wires the aggregator and maintainer to their storage.
type Service struct {
	catalog     store.CatalogReader
	enrollments store.EnrollmentLedger
	completions store.CompletionLedger
	notifier    Notifier
	now         func() time.Time
}

type Option func(*Service)

// WithNotifier attaches a completion notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the completion-timestamp time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(catalog store.CatalogReader, enrollments store.EnrollmentLedger, completions store.CompletionLedger, opts ...Option) *Service {
	s := &Service{
		catalog:     catalog,
		enrollments: enrollments,
		completions: completions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot computes the live progress of one (user, course) pair from
// the course's current lesson set and the completion ledger.
func (s *Service) Snapshot(userID, courseID uint) (Snapshot, error) {
	lessonIDs, err := s.catalog.LessonIDs(courseID)
	if err != nil {
		return Snapshot{}, err
	}

	completedIDs, err := s.completions.CompletedLessonIDs(userID, lessonIDs)
	if err != nil {
		return Snapshot{}, err
	}
	if completedIDs == nil {
		// Keep the JSON field an empty array rather than null.
		completedIDs = []uint{}
	}

	total := len(lessonIDs)
	done := len(completedIDs)
	if done > total {
		return Snapshot{}, fmt.Errorf("%w: user %d course %d: %d > %d", ErrInvariant, userID, courseID, done, total)
	}

	return Snapshot{
		CompletedLessonCount: done,
		TotalLessonCount:     total,
		Percentage:           percentage(done, total),
		CompletedLessonIDs:   completedIDs,
	}, nil
}

// Recalculate recomputes a learner's progress and promotes the
// enrollment to complete when every current lesson is done. The
// completion timestamp is sticky: it is written once, on the first
// incomplete-to-complete transition, and later catalog growth that pulls
// the live percentage back under 100 does not erase it.
func (s *Service) Recalculate(userID, courseID uint) (Snapshot, error) {
	snapshot, err := s.Snapshot(userID, courseID)
	if err != nil {
		return Snapshot{}, err
	}

	enrollment, err := s.enrollments.Get(userID, courseID)
	if errors.Is(err, store.ErrNotFound) {
		// Not enrolled; nothing to maintain.
		return snapshot, nil
	}
	if err != nil {
		return Snapshot{}, err
	}

	if snapshot.Complete() && enrollment.CompletedAt == nil {
		completedAt := s.now()
		if err := s.enrollments.SetCompleted(userID, courseID, &completedAt); err != nil {
			return Snapshot{}, err
		}
		if s.notifier != nil {
			s.notifier.CourseCompleted(userID, courseID)
		}
	}

	return snapshot, nil
}

// CatalogChanged is the consistency maintainer. The catalog store calls
// it synchronously after committing a structural change: removed lessons
// have their now-dangling marks purged, then every enrollment on the
// course is re-evaluated against the post-edit lesson set. Removing an
// incomplete lesson can newly complete learners who had finished the
// rest; adding a lesson lowers live percentages but never clears a
// recorded completion timestamp.
func (s *Service) CatalogChanged(ev store.CatalogEvent) error {
	if len(ev.RemovedLessonIDs) > 0 {
		if err := s.completions.DeleteByLessonIDs(ev.RemovedLessonIDs); err != nil {
			return err
		}
	}

	enrollments, err := s.enrollments.ListByCourse(ev.CourseID)
	if err != nil {
		return err
	}

	for _, enrollment := range enrollments {
		if _, err := s.Recalculate(enrollment.UserID, ev.CourseID); err != nil {
			return err
		}
	}
	return nil
}

// percentage rounds half-up on the percentage value itself, so 1 of 3
// reports 33 and 2 of 3 reports 67.
func percentage(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(done)/float64(total)*100 + 0.5))
}
