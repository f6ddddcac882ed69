package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App, h *controllers.Handler) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourse(), h.AdminCreateCourse)
	adminGroup.Put("/:id", validators.UpdateCourse(), h.AdminUpdateCourse)
	adminGroup.Delete("/:id", validators.DeleteCourse(), h.AdminDeleteCourse)

	// Module management
	adminGroup.Post("/:id/module", validators.CreateModule(), h.AdminCreateModule)
	adminGroup.Put("/:course_id/module/:module_id", validators.UpdateModule(), h.AdminUpdateModule)
	adminGroup.Delete("/:course_id/module/:module_id", validators.DeleteModule(), h.AdminDeleteModule)

	// Lesson management
	adminGroup.Post("/module/:module_id/lesson", validators.CreateLesson(), h.AdminCreateLesson)

	lessonGroup := app.Group("/admin/lesson", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))
	lessonGroup.Put("/:lesson_id", validators.UpdateLesson(), h.AdminUpdateLesson)
	lessonGroup.Delete("/:lesson_id", validators.DeleteLesson(), h.AdminDeleteLesson)

	// Enrollment tracking and dashboard
	adminGroup.Get("/:id/enrollments", validators.CourseEnrollments(), h.AdminGetCourseEnrollments)

	dashGroup := app.Group("/admin/dashboard", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))
	dashGroup.Get("/stats", h.AdminDashboardStats)
}
