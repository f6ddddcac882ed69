package courseValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

// idParam validates a positive integer path parameter and stores it in
// locals under the given key.
func idParam(param, key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params(param))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid ID!", nil)
		}

		c.Locals(key, id)
		return c.Next()
	}
}

func GetCourseDetail() fiber.Handler {
	return idParam("id", "courseID")
}

func EnrollCourse() fiber.Handler {
	return idParam("id", "courseID")
}

func GetCourseProgress() fiber.Handler {
	return idParam("course_id", "courseID")
}

func MarkLessonComplete() fiber.Handler {
	return idParam("lesson_id", "lessonID")
}

func RequestCertificate() fiber.Handler {
	return idParam("course_id", "courseID")
}
