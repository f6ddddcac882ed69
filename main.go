package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"lms/config"
	controllers "lms/controllers/course"
	"lms/database"
	"lms/progress"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	"lms/store/gormstore"
	"lms/utils"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	// Storage and the progress engine. The catalog store reports every
	// lesson addition/removal to the engine synchronously, so enrollment
	// state is fixed before the mutating request returns.
	catalog := gormstore.NewCatalog(db)
	enrollments := gormstore.NewEnrollments(db)
	completions := gormstore.NewCompletions(db)

	engine := progress.NewService(catalog, enrollments, completions,
		progress.WithNotifier(utils.NewCompletionMailer(db)))
	catalog.OnChange(engine)

	handler := &controllers.Handler{
		Catalog:     catalog,
		Enrollments: enrollments,
		Completions: completions,
		Progress:    engine,
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app, handler)
	courseRoutes.SetupAdminCourseRoutes(app, handler)

	reconciler := utils.StartReconciler(db)
	defer reconciler.Stop()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
