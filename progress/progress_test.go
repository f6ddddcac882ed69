package progress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/store"
	"lms/store/memstore"
)

var frozen = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*memstore.Store, *Service) {
	t.Helper()
	st := memstore.New()
	st.SetClock(func() time.Time { return frozen })
	svc := NewService(st, st, st, WithClock(func() time.Time { return frozen }))
	st.OnChange(svc)
	return st, svc
}

func TestEmptyCourseNeverCompletes(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)

	_, err := st.Enroll(10, 1)
	require.NoError(t, err)

	snapshot, err := svc.Recalculate(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.TotalLessonCount)
	assert.Equal(t, 0, snapshot.Percentage)
	assert.False(t, snapshot.Complete())

	enrollment, err := st.Get(10, 1)
	require.NoError(t, err)
	assert.Nil(t, enrollment.CompletedAt)
}

func TestSnapshotWithNothingDoneSerializesEmptyArray(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))

	snapshot, err := svc.Snapshot(10, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{}, snapshot.CompletedLessonIDs)

	payload, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"completedLessonIds":[]`)
}

func TestTwoLessonCompletionFlow(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))
	require.NoError(t, st.AddLesson(1, 102))

	_, err := st.Enroll(10, 1)
	require.NoError(t, err)

	_, err = st.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	snapshot, err := svc.Recalculate(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.CompletedLessonCount)
	assert.Equal(t, 2, snapshot.TotalLessonCount)
	assert.Equal(t, 50, snapshot.Percentage)
	assert.Equal(t, []uint{101}, snapshot.CompletedLessonIDs)

	enrollment, err := st.Get(10, 1)
	require.NoError(t, err)
	assert.Nil(t, enrollment.CompletedAt)

	_, err = st.MarkComplete(10, 102, 1)
	require.NoError(t, err)
	snapshot, err = svc.Recalculate(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.CompletedLessonCount)
	assert.Equal(t, 100, snapshot.Percentage)
	assert.True(t, snapshot.Complete())

	enrollment, err = st.Get(10, 1)
	require.NoError(t, err)
	require.NotNil(t, enrollment.CompletedAt)
	assert.Equal(t, frozen, *enrollment.CompletedAt)
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))
	require.NoError(t, st.AddLesson(1, 102))
	require.NoError(t, st.AddLesson(1, 103))

	_, err := st.Enroll(10, 1)
	require.NoError(t, err)

	_, err = st.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	snapshot, err := svc.Snapshot(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 33, snapshot.Percentage, "1 of 3 rounds to 33")

	_, err = st.MarkComplete(10, 102, 1)
	require.NoError(t, err)
	snapshot, err = svc.Snapshot(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 67, snapshot.Percentage, "2 of 3 rounds to 67")
}

func TestMarkCompleteIdempotent(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))
	require.NoError(t, st.AddLesson(1, 102))

	_, err := st.Enroll(10, 1)
	require.NoError(t, err)

	_, err = st.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	first, err := svc.Recalculate(10, 1)
	require.NoError(t, err)

	_, err = st.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	second, err := svc.Recalculate(10, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEnrollIdempotentKeepsCompletion(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))

	original, err := st.Enroll(10, 1)
	require.NoError(t, err)

	_, err = st.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	_, err = svc.Recalculate(10, 1)
	require.NoError(t, err)

	again, err := st.Enroll(10, 1)
	require.NoError(t, err)
	assert.Equal(t, original.ID, again.ID)
	require.NotNil(t, again.CompletedAt)
	assert.Equal(t, frozen, *again.CompletedAt)
}

func TestLessonAdditionLowersPercentageButKeepsTimestamp(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))
	require.NoError(t, st.AddLesson(1, 102))

	_, err := st.Enroll(10, 1)
	require.NoError(t, err)
	_, err = st.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	_, err = st.MarkComplete(10, 102, 1)
	require.NoError(t, err)
	_, err = svc.Recalculate(10, 1)
	require.NoError(t, err)

	// Admin adds a third lesson after the learner completed the course.
	require.NoError(t, st.AddLesson(1, 103))

	snapshot, err := svc.Snapshot(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.CompletedLessonCount)
	assert.Equal(t, 3, snapshot.TotalLessonCount)
	assert.Equal(t, 67, snapshot.Percentage)
	assert.False(t, snapshot.Complete())

	enrollment, err := st.Get(10, 1)
	require.NoError(t, err)
	require.NotNil(t, enrollment.CompletedAt, "completion timestamp is sticky")
}

func TestRemovingIncompleteLessonCompletesCourse(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))
	require.NoError(t, st.AddLesson(1, 102))
	require.NoError(t, st.AddLesson(1, 103))

	_, err := st.Enroll(10, 1)
	require.NoError(t, err)
	_, err = st.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	_, err = st.MarkComplete(10, 102, 1)
	require.NoError(t, err)
	_, err = svc.Recalculate(10, 1)
	require.NoError(t, err)

	enrollment, err := st.Get(10, 1)
	require.NoError(t, err)
	require.Nil(t, enrollment.CompletedAt)

	// Deleting the only lesson the learner had not finished satisfies
	// completion without any further learner action.
	require.NoError(t, st.RemoveLesson(1, 103))

	snapshot, err := svc.Snapshot(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, snapshot.Percentage)

	enrollment, err = st.Get(10, 1)
	require.NoError(t, err)
	require.NotNil(t, enrollment.CompletedAt)
}

func TestRemovingCompletedLessonKeepsCompletion(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)
	for _, lessonID := range []uint{101, 102, 103} {
		require.NoError(t, st.AddLesson(1, lessonID))
	}

	_, err := st.Enroll(10, 1)
	require.NoError(t, err)
	for _, lessonID := range []uint{101, 102, 103} {
		_, err = st.MarkComplete(10, lessonID, 1)
		require.NoError(t, err)
	}
	_, err = svc.Recalculate(10, 1)
	require.NoError(t, err)

	require.NoError(t, st.RemoveLesson(1, 103))

	snapshot, err := svc.Snapshot(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.CompletedLessonCount)
	assert.Equal(t, 2, snapshot.TotalLessonCount)
	assert.Equal(t, 100, snapshot.Percentage)

	enrollment, err := st.Get(10, 1)
	require.NoError(t, err)
	require.NotNil(t, enrollment.CompletedAt)

	// The dangling mark was purged with the lesson.
	done, err := st.IsComplete(10, 103)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRecalculateWithoutEnrollmentIsNoop(t *testing.T) {
	st, svc := newTestEngine(t)
	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))

	_, err := st.MarkComplete(10, 101, 1)
	require.NoError(t, err)

	snapshot, err := svc.Recalculate(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, snapshot.Percentage)

	_, err = st.Get(10, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

type recordingNotifier struct {
	completions [][2]uint
}

func (n *recordingNotifier) CourseCompleted(userID, courseID uint) {
	n.completions = append(n.completions, [2]uint{userID, courseID})
}

func TestNotifierFiresOnceOnFirstCompletion(t *testing.T) {
	st := memstore.New()
	notifier := &recordingNotifier{}
	svc := NewService(st, st, st, WithNotifier(notifier))
	st.OnChange(svc)

	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))
	_, err := st.Enroll(10, 1)
	require.NoError(t, err)

	_, err = st.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	_, err = svc.Recalculate(10, 1)
	require.NoError(t, err)
	_, err = svc.Recalculate(10, 1)
	require.NoError(t, err)

	assert.Equal(t, [][2]uint{{10, 1}}, notifier.completions)
}

// fixedLedger returns a canned completed set regardless of scoping, to
// force the defensive done > total check.
type fixedLedger struct {
	store.CompletionLedger
	ids []uint
}

func (f *fixedLedger) CompletedLessonIDs(userID uint, lessonIDs []uint) ([]uint, error) {
	return f.ids, nil
}

func TestInvariantViolationFailsLoudly(t *testing.T) {
	st := memstore.New()
	st.AddCourse(1)
	require.NoError(t, st.AddLesson(1, 101))

	svc := NewService(st, st, &fixedLedger{ids: []uint{101, 102}})

	_, err := svc.Snapshot(10, 1)
	assert.ErrorIs(t, err, ErrInvariant)
}
