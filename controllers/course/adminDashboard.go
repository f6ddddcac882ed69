package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
)

// AdminGetCourseEnrollments lists the enrollments of a course with each
// learner's live progress.
func (h *Handler) AdminGetCourseEnrollments(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	enrollments, err := h.Enrollments.ListByCourse(uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	type EnrollmentWithProgress struct {
		courseModels.Enrollment
		Percentage int `json:"percentage"`
	}

	result := make([]EnrollmentWithProgress, len(enrollments))
	for i, enrollment := range enrollments {
		snapshot, err := h.Progress.Snapshot(enrollment.UserID, uint(courseID))
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
		}
		result[i] = EnrollmentWithProgress{Enrollment: enrollment, Percentage: snapshot.Percentage}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", result)
}

// AdminDashboardStats returns platform-wide counts for the admin
// dashboard, including completions this week and this month.
func (h *Handler) AdminDashboardStats(c *fiber.Ctx) error {
	db := database.Database.Db

	var totalCourses, totalLessons, totalEnrollments, totalCompleted int64
	db.Model(&courseModels.Course{}).Where("is_deleted = ?", false).Count(&totalCourses)
	db.Model(&courseModels.Lesson{}).Where("is_deleted = ?", false).Count(&totalLessons)
	db.Model(&courseModels.Enrollment{}).Count(&totalEnrollments)
	db.Model(&courseModels.Enrollment{}).Where("completed_at IS NOT NULL").Count(&totalCompleted)

	var completedThisWeek, completedThisMonth int64
	db.Model(&courseModels.Enrollment{}).
		Where("completed_at >= ?", now.BeginningOfWeek()).Count(&completedThisWeek)
	db.Model(&courseModels.Enrollment{}).
		Where("completed_at >= ?", now.BeginningOfMonth()).Count(&completedThisMonth)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"total_courses":        totalCourses,
		"total_lessons":        totalLessons,
		"total_enrollments":    totalEnrollments,
		"total_completed":      totalCompleted,
		"completed_this_week":  completedThisWeek,
		"completed_this_month": completedThisMonth,
	})
}
