package controller

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskboard/models"
	"taskboard/utils"
)

type TodoController struct {
	DB         *gorm.DB
	Logger     *log.Logger
	UploadsDir string
}

func NewTodoController(db *gorm.DB, logger *log.Logger, uploadsDir string) *TodoController {
	return &TodoController{
		DB:         db,
		Logger:     logger,
		UploadsDir: uploadsDir,
	}
}

type AddTodoRequest struct {
	Task    string `form:"task" validate:"notblank,max=500"`
	Status  string `form:"status"`
	DueDate string `form:"due_date"`
	User    string `form:"user" validate:"required"`
}

// GetTodos returns every live task. Clients filter by owner.
func (tc *TodoController) GetTodos(c *fiber.Ctx) error {
	var todos []models.Task
	if err := tc.DB.Order("created_at asc").Find(&todos).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch todos", err)
	}
	if todos == nil {
		todos = []models.Task{}
	}
	return c.JSON(utils.SuccessResponse(todos))
}

// AddTodo creates a task from a multipart form with optional image and
// document attachments.
func (tc *TodoController) AddTodo(c *fiber.Ctx) error {
	var req AddTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	status := models.StatusToDo
	if req.Status != "" {
		st, ok := models.ParseStatus(req.Status)
		if !ok {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid status", nil)
		}
		status = st
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid due date", err)
	}

	var owner models.User
	if err := tc.DB.First(&owner, "id = ?", req.User).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown user", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Database error", err)
	}

	image, err := saveUpload(c, "image", tc.UploadsDir)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store image", err)
	}
	document, err := saveUpload(c, "document", tc.UploadsDir)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store document", err)
	}

	todo := models.Task{
		Title:    strings.TrimSpace(req.Task),
		Status:   status,
		DueDate:  due,
		UserID:   owner.ID,
		Image:    image,
		Document: document,
	}
	if err := tc.DB.Create(&todo).Error; err != nil {
		tc.Logger.Printf("Failed to create todo: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create todo", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(todo))
}

// DeleteTodo soft-deletes a task.
func (tc *TodoController) DeleteTodo(c *fiber.Ctx) error {
	todo, err := tc.findTodo(c.Params("id"))
	if err != nil {
		return todoLookupError(c, err)
	}
	if err := tc.DB.Delete(todo).Error; err != nil {
		tc.Logger.Printf("Failed to delete todo %s: %v", todo.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete todo", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Todo deleted successfully",
	})
}

// EditTodo changes only the status of a task.
func (tc *TodoController) EditTodo(c *fiber.Ctx) error {
	todo, err := tc.findTodo(c.Params("id"))
	if err != nil {
		return todoLookupError(c, err)
	}

	var input struct {
		Status string `json:"status" form:"status" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	status, ok := models.ParseStatus(input.Status)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid status", nil)
	}

	if err := tc.DB.Model(todo).Update("status", status).Error; err != nil {
		tc.Logger.Printf("Failed to update todo %s: %v", todo.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update todo", err)
	}
	todo.Status = status
	return c.JSON(utils.SuccessResponse(todo))
}

func (tc *TodoController) findTodo(id string) (*models.Task, error) {
	var todo models.Task
	if err := tc.DB.First(&todo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

func todoLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Todo not found", nil)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Database error", err)
}

// parseDueDate accepts an empty value, a calendar date or RFC 3339.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", s)
}
