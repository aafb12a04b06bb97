package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskboard/models"
	"taskboard/utils"
)

type UserController struct {
	DB         *gorm.DB
	Logger     *log.Logger
	JWTSecret  string
	UploadsDir string
}

func NewUserController(db *gorm.DB, logger *log.Logger, jwtSecret, uploadsDir string) *UserController {
	return &UserController{
		DB:         db,
		Logger:     logger,
		JWTSecret:  jwtSecret,
		UploadsDir: uploadsDir,
	}
}

type SignUpRequest struct {
	FirstName string `form:"firstname" validate:"notblank"`
	LastName  string `form:"lastname" validate:"notblank"`
	Contact   string `form:"contact" validate:"omitempty,max=20"`
	Email     string `form:"email" validate:"required,mailformat"`
	Password  string `form:"password" validate:"required,min=6"`
	Role      string `form:"usertype" validate:"required,oneof=team admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUp creates an account from a multipart form with an optional image.
func (uc *UserController) SignUp(c *fiber.Ctx) error {
	var req SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var existing models.User
	err := uc.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email already registered", nil)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Database error", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	image, err := saveUpload(c, "image", uc.UploadsDir)
	if err != nil {
		uc.Logger.Printf("Failed to store sign-up image: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store image", err)
	}

	user := models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Contact:      req.Contact,
		Email:        req.Email,
		Role:         models.Role(req.Role),
		Image:        image,
		PasswordHash: string(hash),
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		uc.Logger.Printf("Failed to create user: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", err)
	}

	utils.LogEvent("user_signed_up", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(user))
}

// Login checks credentials and issues a session token. Bad credentials are
// reported in the body with success=false rather than by status code.
func (uc *UserController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var user models.User
	if err := uc.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidCredentials(c)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Database error", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return invalidCredentials(c)
	}

	token, err := utils.GenerateJWTToken(&user, uc.JWTSecret)
	if err != nil {
		utils.LogError("token_generation", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"data":    user,
	})
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": false,
		"message": "Invalid email or password",
	})
}

// GetUsers returns the whole user directory.
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.DB.Order("created_at asc").Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}
	return c.JSON(utils.SuccessResponse(users))
}
