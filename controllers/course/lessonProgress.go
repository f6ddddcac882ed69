package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	"lms/progress"
	"lms/store"
)

// MarkLessonComplete records that the current user finished a lesson and
// recomputes the owning course's enrollment state. Marking an
// already-completed lesson is a no-op upsert.
func (h *Handler) MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	lesson, err := h.Catalog.GetLesson(uint(lessonID))
	if errors.Is(err, store.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
	}

	// Completion only makes sense for enrolled learners.
	if _, err := h.Enrollments.Get(userID, lesson.CourseID); errors.Is(err, store.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	} else if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
	}

	mark, err := h.Completions.MarkComplete(userID, lesson.ID, lesson.CourseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark lesson as completed!", nil)
	}

	if _, err := h.Progress.Recalculate(userID, lesson.CourseID); err != nil {
		if errors.Is(err, progress.ErrInvariant) {
			log.Printf("progress invariant violated: %v", err)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as completed successfully!", mark)
}

// GetCourseProgress returns the current user's live progress for a
// course: completed count, total count, rounded percentage and the
// completed lesson IDs.
func (h *Handler) GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	if _, err := h.Enrollments.Get(userID, uint(courseID)); errors.Is(err, store.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	} else if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	snapshot, err := h.Progress.Snapshot(userID, uint(courseID))
	if err != nil {
		if errors.Is(err, progress.ErrInvariant) {
			log.Printf("progress invariant violated: %v", err)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", snapshot)
}
