package utils

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	courseModels "lms/models/course"
)

// logReconciler logs reconciler events with timestamp
func logReconciler(message string) {
	log.Printf("[RECONCILER %s] %s", time.Now().Format(time.RFC3339), message)
}

// reconcileLedgers purges ledger rows left behind by catalog deletions.
// The consistency maintainer already cleans up synchronously on every
// delete; this pass is the backstop for rows orphaned by a crash
// between the catalog commit and the ledger cleanup.
func reconcileLedgers(db *gorm.DB) {
	res := db.Where(
		"lesson_id NOT IN (?)",
		db.Model(&courseModels.Lesson{}).Select("id").Where("is_deleted = ?", false),
	).Delete(&courseModels.LessonProgress{})
	if res.Error != nil {
		logReconciler("Error purging orphaned lesson progress: " + res.Error.Error())
	} else if res.RowsAffected > 0 {
		logReconciler("Purged orphaned lesson progress rows")
	}

	res = db.Where(
		"course_id NOT IN (?)",
		db.Model(&courseModels.Course{}).Select("id").Where("is_deleted = ?", false),
	).Delete(&courseModels.Enrollment{})
	if res.Error != nil {
		logReconciler("Error purging orphaned enrollments: " + res.Error.Error())
	} else if res.RowsAffected > 0 {
		logReconciler("Purged orphaned enrollment rows")
	}
}

// StartReconciler runs the ledger reconciliation pass hourly.
func StartReconciler(db *gorm.DB) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", func() { reconcileLedgers(db) }); err != nil {
		log.Fatalf("Failed to schedule ledger reconciler: %v", err)
	}

	c.Start()
	logReconciler("Ledger reconciler scheduled")
	return c
}
