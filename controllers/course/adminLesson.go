package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/store"
	"lms/utils"
)

// AdminCreateLesson creates a new lesson in a module. Adding a lesson
// re-evaluates every enrollment on the owning course before the call
// returns: previously completed learners keep their completion
// timestamp but their live percentage drops below 100.
func (h *Handler) AdminCreateLesson(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(int)

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title       string `json:"title"`
		VideoURL    string `json:"video_url"`
		ContentText string `json:"content_text"`
		Duration    int    `json:"duration"`
		OrderIndex  int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	duration := reqData.Duration
	if duration == 0 && reqData.VideoURL != "" {
		// Best effort; a lesson without duration is still valid.
		if d, err := utils.FetchVideoDuration(reqData.VideoURL); err == nil {
			duration = d
		} else {
			log.Printf("Could not resolve video duration for %s: %v", reqData.VideoURL, err)
		}
	}

	lesson := courseModels.Lesson{
		ModuleID:    uint(moduleID),
		Title:       reqData.Title,
		VideoURL:    reqData.VideoURL,
		ContentText: reqData.ContentText,
		Duration:    duration,
		OrderIndex:  reqData.OrderIndex,
	}

	err := h.Catalog.CreateLesson(&lesson)
	if errors.Is(err, store.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminUpdateLesson updates lesson fields that do not affect the lesson
// set, so no enrollment re-evaluation is needed.
func (h *Handler) AdminUpdateLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(int)

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := c.Locals("validatedLessonUpdate").(*struct {
		Title       string `json:"title"`
		VideoURL    string `json:"video_url"`
		ContentText string `json:"content_text"`
		Duration    int    `json:"duration"`
		OrderIndex  int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		lesson.Title = reqData.Title
	}
	if reqData.VideoURL != "" {
		lesson.VideoURL = reqData.VideoURL
	}
	if reqData.ContentText != "" {
		lesson.ContentText = reqData.ContentText
	}
	if reqData.Duration > 0 {
		lesson.Duration = reqData.Duration
	}
	if reqData.OrderIndex > 0 {
		lesson.OrderIndex = reqData.OrderIndex
	}

	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// AdminDeleteLesson removes a lesson; dangling completion marks are
// purged and every enrollment on the course is re-evaluated. Removing
// the last incomplete lesson can newly complete learners who had
// finished everything else.
func (h *Handler) AdminDeleteLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(int)

	err := h.Catalog.DeleteLesson(uint(lessonID))
	if errors.Is(err, store.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}
