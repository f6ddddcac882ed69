package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App, h *controllers.Handler) {
	userGroup := app.Group("/course")

	// Course listing and details
	userGroup.Get("/list", middleware.JWTMiddleware, h.GetAllCourses)
	userGroup.Get("/:id", middleware.JWTMiddleware, validators.GetCourseDetail(), h.GetCourseDetails)

	// Enrollment
	userGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), h.EnrollInCourse)

	// Lesson completion and progress
	userGroup.Post("/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.MarkLessonComplete(), h.MarkLessonComplete)
	userGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.GetCourseProgress(), h.GetCourseProgress)

	// Certificates
	userGroup.Post("/:course_id/certificate/request", middleware.JWTMiddleware, validators.RequestCertificate(), h.RequestCertificate)

	// User enrollments and certificates
	userEnrollGroup := app.Group("/user")
	userEnrollGroup.Get("/enrollments", middleware.JWTMiddleware, h.GetUserEnrollments)
	userEnrollGroup.Get("/certificates", middleware.JWTMiddleware, h.GetUserCertificates)
}
