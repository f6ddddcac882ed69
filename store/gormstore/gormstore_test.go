package gormstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lms/database"
	courseModels "lms/models/course"
	"lms/store"
)

func openTestDb(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	database.RunMigrations(db)
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, lessonCount int) (courseModels.Course, courseModels.Module, []courseModels.Lesson) {
	t.Helper()

	course := courseModels.Course{Title: "Go Fundamentals"}
	require.NoError(t, db.Create(&course).Error)

	module := courseModels.Module{CourseID: course.ID, Title: "Basics", OrderIndex: 1}
	require.NoError(t, db.Create(&module).Error)

	lessons := make([]courseModels.Lesson, lessonCount)
	for i := range lessons {
		lessons[i] = courseModels.Lesson{
			ModuleID:   module.ID,
			CourseID:   course.ID,
			Title:      fmt.Sprintf("Lesson %d", i+1),
			OrderIndex: i + 1,
		}
		require.NoError(t, db.Create(&lessons[i]).Error)
	}
	return course, module, lessons
}

type recordingListener struct {
	events []store.CatalogEvent
}

func (l *recordingListener) CatalogChanged(ev store.CatalogEvent) error {
	l.events = append(l.events, ev)
	return nil
}

func TestMarkCompleteUpsertsSingleRow(t *testing.T) {
	db := openTestDb(t)
	completions := NewCompletions(db)

	first, err := completions.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	assert.True(t, first.IsCompleted)

	second, err := completions.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&courseModels.LessonProgress{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnrollIdempotentPreservesCompletion(t *testing.T) {
	db := openTestDb(t)
	enrollments := NewEnrollments(db)

	first, err := enrollments.Enroll(10, 1)
	require.NoError(t, err)

	completedAt := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	require.NoError(t, enrollments.SetCompleted(10, 1, &completedAt))

	again, err := enrollments.Enroll(10, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, again.CompletedAt.Equal(completedAt))

	var count int64
	require.NoError(t, db.Model(&courseModels.Enrollment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCompletedLessonIDsScopedToCandidates(t *testing.T) {
	db := openTestDb(t)
	completions := NewCompletions(db)

	_, err := completions.MarkComplete(10, 101, 1)
	require.NoError(t, err)
	_, err = completions.MarkComplete(10, 201, 2)
	require.NoError(t, err)
	_, err = completions.MarkComplete(11, 102, 1)
	require.NoError(t, err)

	ids, err := completions.CompletedLessonIDs(10, []uint{101, 102})
	require.NoError(t, err)
	assert.Equal(t, []uint{101}, ids, "marks from other courses and users are excluded")

	ids, err = completions.CompletedLessonIDs(10, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCatalogLessonIDsSkipsDeleted(t *testing.T) {
	db := openTestDb(t)
	catalog := NewCatalog(db)
	course, _, lessons := seedCourse(t, db, 3)

	require.NoError(t, catalog.DeleteLesson(lessons[2].ID))

	ids, err := catalog.LessonIDs(course.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{lessons[0].ID, lessons[1].ID}, ids)

	_, err = catalog.GetLesson(lessons[2].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateLessonNotifiesAddition(t *testing.T) {
	db := openTestDb(t)
	catalog := NewCatalog(db)
	listener := &recordingListener{}
	catalog.OnChange(listener)

	course, module, _ := seedCourse(t, db, 0)

	lesson := courseModels.Lesson{ModuleID: module.ID, Title: "New Lesson", OrderIndex: 1}
	require.NoError(t, catalog.CreateLesson(&lesson))
	assert.Equal(t, course.ID, lesson.CourseID, "course id derived from the parent module")

	require.Len(t, listener.events, 1)
	assert.Equal(t, course.ID, listener.events[0].CourseID)
	assert.Equal(t, []uint{lesson.ID}, listener.events[0].AddedLessonIDs)
}

func TestDeleteModuleNotifiesRemovedLessons(t *testing.T) {
	db := openTestDb(t)
	catalog := NewCatalog(db)
	listener := &recordingListener{}
	catalog.OnChange(listener)

	course, module, lessons := seedCourse(t, db, 2)

	require.NoError(t, catalog.DeleteModule(course.ID, module.ID))

	require.Len(t, listener.events, 1)
	assert.Equal(t, course.ID, listener.events[0].CourseID)
	assert.ElementsMatch(t, []uint{lessons[0].ID, lessons[1].ID}, listener.events[0].RemovedLessonIDs)

	ids, err := catalog.LessonIDs(course.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeleteEmptyModuleSkipsNotification(t *testing.T) {
	db := openTestDb(t)
	catalog := NewCatalog(db)
	listener := &recordingListener{}
	catalog.OnChange(listener)

	course, module, _ := seedCourse(t, db, 0)

	require.NoError(t, catalog.DeleteModule(course.ID, module.ID))
	assert.Empty(t, listener.events)
}

func TestDeleteCoursePurgesLedgers(t *testing.T) {
	db := openTestDb(t)
	catalog := NewCatalog(db)
	enrollments := NewEnrollments(db)
	completions := NewCompletions(db)

	course, _, lessons := seedCourse(t, db, 1)

	_, err := enrollments.Enroll(10, course.ID)
	require.NoError(t, err)
	_, err = completions.MarkComplete(10, lessons[0].ID, course.ID)
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteCourse(course.ID))

	_, err = enrollments.Get(10, course.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	ids, err := completions.CompletedLessonIDs(10, []uint{lessons[0].ID})
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = catalog.DeleteCourse(course.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
