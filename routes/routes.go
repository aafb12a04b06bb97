package routes

import (
	"log"
	"os"

	"taskboard/config"
	controller "taskboard/controllers"
	"taskboard/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

const logFormat = "[${time}] ${status} - ${latency} ${method} ${path}\n"

func SetupUserRoutes(api fiber.Router, db *gorm.DB, cfg config.Config) {
	userController := controller.NewUserController(
		db,
		log.New(os.Stdout, "USER: ", log.Ldate|log.Ltime|log.Lshortfile),
		cfg.JWTSecret,
		cfg.UploadsDir,
	)

	user := api.Group("/user")
	user.Post("/sign-up", userController.SignUp)
	user.Post("/login",
		middleware.LoginRateLimiter(cfg.RateLimitLogin, middleware.RateLimitStorage(cfg.Redis)),
		userController.Login,
	)
	user.Get("/get-users", userController.GetUsers)
}

func SetupTeamRoutes(api fiber.Router, db *gorm.DB) {
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))

	teams := api.Group("/teams")
	teams.Get("/get-Teams", teamController.GetTeams)
	teams.Post("/add-Team", teamController.AddTeam)
	teams.Put("/delete-Team/:id", teamController.DeleteTeam)
	teams.Put("/edit-Team/:id", teamController.EditTeam)
}

func SetupTodoRoutes(api fiber.Router, db *gorm.DB, cfg config.Config) {
	todoController := controller.NewTodoController(db, log.New(os.Stdout, "TODO: ", log.LstdFlags), cfg.UploadsDir)

	todo := api.Group("/todo")
	todo.Get("/get-todos", todoController.GetTodos)
	todo.Post("/add-Todo", todoController.AddTodo)
	todo.Put("/delete-Todo/:id", todoController.DeleteTodo)
	todo.Put("/edit-Todo/:id", todoController.EditTodo)
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg config.Config) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Uploaded images and documents
	app.Static("/uploads", cfg.UploadsDir)

	// API group with versioning; bearer auth is optional
	api := app.Group("/api/v1", middleware.Authenticate(cfg.JWTSecret), logger.New(logger.Config{
		Format: logFormat,
	}))

	SetupUserRoutes(api, db, cfg)
	SetupTeamRoutes(api, db)
	SetupTodoRoutes(api, db, cfg)

	log.Println("API routes initialized successfully")

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
