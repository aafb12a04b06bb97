package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/client"
	"taskboard/config"
	"taskboard/models"
	"taskboard/routes"
	"taskboard/utils"
)

const testSecret = "controller-test-secret"

type testServer struct {
	app     *fiber.App
	db      *gorm.DB
	uploads string
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	uploads := t.TempDir()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	routes.SetupRoutes(app, db, config.Config{
		JWTSecret:      testSecret,
		UploadsDir:     uploads,
		RateLimitLogin: 100,
	})
	return &testServer{app: app, db: db, uploads: uploads}
}

func (s *testServer) do(t *testing.T, method, path, contentType string, body []byte) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (s *testServer) sendJSON(t *testing.T, method, path string, in any) (int, []byte) {
	t.Helper()
	body, err := json.Marshal(in)
	require.NoError(t, err)
	return s.do(t, method, path, fiber.MIMEApplicationJSON, body)
}

func (s *testServer) sendForm(t *testing.T, method, path string, form *client.Form) (int, []byte) {
	t.Helper()
	contentType, body, err := form.Encode()
	require.NoError(t, err)
	return s.do(t, method, path, contentType, body)
}

func (s *testServer) seedUser(t *testing.T, first, email string, role models.Role) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{FirstName: first, LastName: "Tester", Email: email, Role: role, PasswordHash: string(hash)}
	require.NoError(t, s.db.Create(&u).Error)
	return u
}

func signUpForm(email string) *client.Form {
	return client.NewForm().
		Set("firstname", "Ada").
		Set("lastname", "Lovelace").
		Set("contact", "555-0100").
		Set("email", email).
		Set("password", "secret1").
		Set("usertype", "admin")
}

func TestSignUpAndLogin(t *testing.T) {
	s := newServer(t)

	form := signUpForm("Ada@Example.com").Attach("image", &client.File{Name: "ada.PNG", Data: strings.NewReader("png")})
	status, body := s.sendForm(t, fiber.MethodPost, "/api/v1/user/sign-up", form)
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var created struct {
		Success bool        `json:"success"`
		Data    models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.True(t, created.Success)
	assert.Equal(t, "ada@example.com", created.Data.Email)
	assert.Equal(t, models.RoleAdmin, created.Data.Role)
	require.True(t, strings.HasSuffix(created.Data.Image, ".png"))
	_, err := os.Stat(filepath.Join(s.uploads, created.Data.Image))
	assert.NoError(t, err)
	assert.NotContains(t, string(body), "secret1")

	status, body = s.sendJSON(t, fiber.MethodPost, "/api/v1/user/login", fiber.Map{
		"email": "ada@example.com", "password": "secret1",
	})
	require.Equal(t, fiber.StatusOK, status)

	var login struct {
		Success bool        `json:"success"`
		Token   string      `json:"token"`
		Data    models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	assert.True(t, login.Success)
	assert.Equal(t, created.Data.ID, login.Data.ID)

	claims, err := utils.ParseJWTToken(login.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, created.Data.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "Ada", "ada@example.com", models.RoleTeam)

	status, _ := s.sendForm(t, fiber.MethodPost, "/api/v1/user/sign-up", signUpForm("ada@example.com"))
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestSignUpValidation(t *testing.T) {
	s := newServer(t)

	form := client.NewForm().
		Set("firstname", " ").
		Set("lastname", "L").
		Set("email", "not-an-email").
		Set("password", "123").
		Set("usertype", "owner")
	status, body := s.sendForm(t, fiber.MethodPost, "/api/v1/user/sign-up", form)
	require.Equal(t, fiber.StatusBadRequest, status)
	for _, field := range []string{"firstname", "email", "password", "usertype"} {
		assert.Contains(t, string(body), field)
	}

	var count int64
	require.NoError(t, s.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginBadCredentials(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "Ada", "ada@example.com", models.RoleTeam)

	for _, creds := range []fiber.Map{
		{"email": "ada@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "secret1"},
	} {
		status, body := s.sendJSON(t, fiber.MethodPost, "/api/v1/user/login", creds)
		require.Equal(t, fiber.StatusOK, status)

		var out map[string]any
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, false, out["success"])
		assert.NotContains(t, out, "token")
	}
}

func TestGetUsers(t *testing.T) {
	s := newServer(t)
	a := s.seedUser(t, "Ada", "ada@example.com", models.RoleAdmin)
	b := s.seedUser(t, "Bob", "bob@example.com", models.RoleTeam)

	status, body := s.do(t, fiber.MethodGet, "/api/v1/user/get-users", "", nil)
	require.Equal(t, fiber.StatusOK, status)

	var out struct {
		Data []models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Data, 2)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, []string{out.Data[0].ID, out.Data[1].ID})
}

func TestTeamLifecycle(t *testing.T) {
	s := newServer(t)
	ada := s.seedUser(t, "Ada", "ada@example.com", models.RoleTeam)
	bob := s.seedUser(t, "Bob", "bob@example.com", models.RoleTeam)

	status, body := s.sendJSON(t, fiber.MethodPost, "/api/v1/teams/add-Team", fiber.Map{"name": " Core ", "members": []string{}})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var team models.Team
	require.NoError(t, json.Unmarshal(body, &team))
	require.NotEmpty(t, team.ID)
	assert.Equal(t, "Core", team.Name)
	assert.Empty(t, team.Members)

	status, body = s.sendJSON(t, fiber.MethodPut, "/api/v1/teams/edit-Team/"+team.ID, fiber.Map{
		"members": []string{bob.ID, ada.ID, bob.ID},
	})
	require.Equal(t, fiber.StatusOK, status, string(body))
	var edited models.Team
	require.NoError(t, json.Unmarshal(body, &edited))
	assert.ElementsMatch(t, []string{ada.ID, bob.ID}, edited.MemberIDs())

	status, body = s.sendJSON(t, fiber.MethodPut, "/api/v1/teams/edit-Team/"+team.ID, fiber.Map{
		"members": []string{ada.ID},
	})
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &edited))
	assert.Equal(t, []string{ada.ID}, edited.MemberIDs())

	status, body = s.do(t, fiber.MethodGet, "/api/v1/teams/get-Teams", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var teams []models.Team
	require.NoError(t, json.Unmarshal(body, &teams))
	require.Len(t, teams, 1)
	require.Len(t, teams[0].Members, 1)
	assert.Equal(t, "Ada", teams[0].Members[0].FirstName)

	status, _ = s.do(t, fiber.MethodPut, "/api/v1/teams/delete-Team/"+team.ID, "", nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body = s.do(t, fiber.MethodGet, "/api/v1/teams/get-Teams", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))

	// soft delete keeps the row
	var count int64
	require.NoError(t, s.db.Unscoped().Model(&models.Team{}).Where("id = ?", team.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEditTeamErrors(t *testing.T) {
	s := newServer(t)

	status, _ := s.sendJSON(t, fiber.MethodPut, "/api/v1/teams/edit-Team/missing", fiber.Map{"members": []string{}})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := s.sendJSON(t, fiber.MethodPost, "/api/v1/teams/add-Team", fiber.Map{"name": "Ops"})
	require.Equal(t, fiber.StatusCreated, status)
	var team models.Team
	require.NoError(t, json.Unmarshal(body, &team))

	status, _ = s.sendJSON(t, fiber.MethodPut, "/api/v1/teams/edit-Team/"+team.ID, fiber.Map{"members": []string{"ghost"}})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.sendJSON(t, fiber.MethodPost, "/api/v1/teams/add-Team", fiber.Map{"name": "  "})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTodoLifecycle(t *testing.T) {
	s := newServer(t)
	ada := s.seedUser(t, "Ada", "ada@example.com", models.RoleTeam)

	form := client.NewForm().
		Set("task", "Write report").
		Set("status", "To Do").
		Set("due_date", "2026-11-01").
		Set("user", ada.ID).
		Attach("document", &client.File{Name: "brief.pdf", Data: strings.NewReader("%PDF")})
	status, body := s.sendForm(t, fiber.MethodPost, "/api/v1/todo/add-Todo", form)
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var created struct {
		Data models.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	todo := created.Data
	assert.Equal(t, "Write report", todo.Title)
	assert.Equal(t, models.StatusToDo, todo.Status)
	assert.Equal(t, ada.ID, todo.UserID)
	require.NotNil(t, todo.DueDate)
	assert.Equal(t, "2026-11-01", todo.DueDate.Format("2006-01-02"))
	assert.True(t, strings.HasSuffix(todo.Document, ".pdf"))
	_, err := os.Stat(filepath.Join(s.uploads, todo.Document))
	assert.NoError(t, err)
	assert.Empty(t, todo.Image)

	status, _ = s.sendForm(t, fiber.MethodPut, "/api/v1/todo/edit-Todo/"+todo.ID, client.NewForm().Set("status", "In Progress"))
	require.Equal(t, fiber.StatusOK, status)

	var stored models.Task
	require.NoError(t, s.db.First(&stored, "id = ?", todo.ID).Error)
	assert.Equal(t, models.StatusInProgress, stored.Status)
	assert.Equal(t, "Write report", stored.Title)

	status, _ = s.sendForm(t, fiber.MethodPut, "/api/v1/todo/edit-Todo/"+todo.ID, client.NewForm().Set("status", "Blocked"))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(t, fiber.MethodGet, "/api/v1/todo/get-todos", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list struct {
		Data []models.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Data, 1)

	status, _ = s.do(t, fiber.MethodPut, "/api/v1/todo/delete-Todo/"+todo.ID, "", nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body = s.do(t, fiber.MethodGet, "/api/v1/todo/get-todos", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"success":true,"data":[]}`, string(body))

	status, _ = s.do(t, fiber.MethodPut, "/api/v1/todo/delete-Todo/"+todo.ID, "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAddTodoRejectsBadInput(t *testing.T) {
	s := newServer(t)
	ada := s.seedUser(t, "Ada", "ada@example.com", models.RoleTeam)

	cases := map[string]*client.Form{
		"blank title":  client.NewForm().Set("task", "  ").Set("user", ada.ID),
		"unknown user": client.NewForm().Set("task", "x").Set("user", "ghost"),
		"bad status":   client.NewForm().Set("task", "x").Set("user", ada.ID).Set("status", "Later"),
		"bad date":     client.NewForm().Set("task", "x").Set("user", ada.ID).Set("due_date", "tomorrow"),
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			status, _ := s.sendForm(t, fiber.MethodPost, "/api/v1/todo/add-Todo", form)
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}

	var count int64
	require.NoError(t, s.db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)
}
