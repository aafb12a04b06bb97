package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskboard/models"
	"taskboard/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logger,
	}
}

// GetTeams returns every live team with its members populated.
func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	var teams []models.Team
	if err := tc.DB.Preload("Members").Order("created_at asc").Find(&teams).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}
	if teams == nil {
		teams = []models.Team{}
	}
	return c.JSON(teams)
}

// AddTeam creates a team, optionally seeded with members.
func (tc *TeamController) AddTeam(c *fiber.Ctx) error {
	var input struct {
		Name    string   `json:"name" validate:"notblank,max=100"`
		Members []string `json:"members"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	members, err := tc.findUsers(input.Members)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown team member", err)
	}

	team := models.Team{Name: strings.TrimSpace(input.Name)}
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(&team).Error; err != nil {
			return err
		}
		if len(members) > 0 {
			return tx.Model(&team).Association("Members").Append(members)
		}
		return nil
	})
	if err != nil {
		tc.Logger.Printf("Failed to create team: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create team", err)
	}

	team.Members = members
	if team.Members == nil {
		team.Members = []models.User{}
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

// DeleteTeam soft-deletes a team. Membership rows are kept.
func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	team, err := tc.findTeam(c.Params("id"))
	if err != nil {
		return teamLookupError(c, err)
	}

	if err := tc.DB.Delete(team).Error; err != nil {
		tc.Logger.Printf("Failed to delete team %s: %v", team.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete team", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Team deleted successfully",
	})
}

// EditTeam replaces the member list and returns the updated team.
func (tc *TeamController) EditTeam(c *fiber.Ctx) error {
	team, err := tc.findTeam(c.Params("id"))
	if err != nil {
		return teamLookupError(c, err)
	}

	var input struct {
		Members []string `json:"members"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	members, err := tc.findUsers(input.Members)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown team member", err)
	}

	assoc := tc.DB.Model(team).Association("Members")
	if len(members) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(members)
	}
	if err != nil {
		tc.Logger.Printf("Failed to update members of team %s: %v", team.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team", err)
	}

	updated, err := tc.findTeam(team.ID)
	if err != nil {
		return teamLookupError(c, err)
	}
	return c.JSON(updated)
}

func (tc *TeamController) findTeam(id string) (*models.Team, error) {
	var team models.Team
	if err := tc.DB.Preload("Members").First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if team.Members == nil {
		team.Members = []models.User{}
	}
	return &team, nil
}

// findUsers loads the users behind ids, keeping request order and dropping
// duplicates. Any id without a live user is an error.
func (tc *TeamController) findUsers(ids []string) ([]models.User, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	var users []models.User
	if err := tc.DB.Where("id IN ?", unique).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	ordered := make([]models.User, 0, len(unique))
	for _, id := range unique {
		u, ok := byID[id]
		if !ok {
			return nil, errors.New("no user with id " + id)
		}
		ordered = append(ordered, u)
	}
	return ordered, nil
}

func teamLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Database error", err)
}
