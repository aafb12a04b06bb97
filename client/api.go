package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"

	"taskboard/models"
)

const (
	teamsPath = "/api/v1/teams"
	usersPath = "/api/v1/user"
	todosPath = "/api/v1/todo"
)

// DueDateLayout is the form encoding of a task due date.
const DueDateLayout = "2006-01-02"

// Envelope is the {success, data} wrapper several endpoints reply with.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if _, err := c.GetJSON(ctx, teamsPath+"/get-Teams", &teams); err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []models.Team{}
	}
	return teams, nil
}

func (c *Client) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	in := struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}{Name: name, Members: []string{}}

	var team models.Team
	if _, err := c.SendJSON(ctx, fasthttp.MethodPost, teamsPath+"/add-Team", in, &team); err != nil {
		return nil, err
	}
	if team.ID == "" {
		return nil, fmt.Errorf("%w: created team has no id", ErrUnexpectedResponse)
	}
	return &team, nil
}

func (c *Client) DeleteTeam(ctx context.Context, id string) error {
	_, err := c.Do(ctx, fasthttp.MethodPut, teamsPath+"/delete-Team/"+url.PathEscape(id), "", nil)
	return err
}

// ReplaceRoster sets the team's members to exactly memberIDs. The returned
// team is nil when the server acknowledged without a team body.
func (c *Client) ReplaceRoster(ctx context.Context, teamID string, memberIDs []string) (*models.Team, error) {
	in := struct {
		Members []string `json:"members"`
	}{Members: memberIDs}
	if in.Members == nil {
		in.Members = []string{}
	}

	resp, err := c.SendJSON(ctx, fasthttp.MethodPut, teamsPath+"/edit-Team/"+url.PathEscape(teamID), in, nil)
	if err != nil {
		return nil, err
	}

	var team models.Team
	if len(bytes.TrimSpace(resp.Body)) == 0 || json.Unmarshal(resp.Body, &team) != nil || team.ID == "" {
		return nil, nil
	}
	return &team, nil
}

// ListUsers expects {data: [...]}; anything else is ErrUnexpectedResponse.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var env Envelope
	if _, err := c.GetJSON(ctx, usersPath+"/get-users", &env); err != nil {
		return nil, err
	}
	var users []models.User
	if err := decodeArray(env.Data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SignUpRequest is the multipart registration payload.
type SignUpRequest struct {
	FirstName string
	LastName  string
	Contact   string
	Email     string
	Password  string
	Role      models.Role
	Image     *File
}

func (c *Client) SignUp(ctx context.Context, in SignUpRequest) (*models.User, error) {
	form := NewForm().
		Set("firstname", in.FirstName).
		Set("lastname", in.LastName).
		Set("contact", in.Contact).
		Set("email", in.Email).
		Set("password", in.Password).
		Set("usertype", string(in.Role)).
		Attach("image", in.Image)

	var env Envelope
	if _, err := c.SendMultipart(ctx, fasthttp.MethodPost, usersPath+"/sign-up", form, &env); err != nil {
		return nil, err
	}

	var user models.User
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &user) == nil && user.ID != "" {
		return &user, nil
	}
	return nil, nil
}

// LoginResponse mirrors the login reply; Success false means bad credentials.
type LoginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"data"`
	Message string       `json:"message,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	in := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out LoginResponse
	if _, err := c.SendJSON(ctx, fasthttp.MethodPost, usersPath+"/login", in, &out); err != nil {
		return nil, err
	}
	if out.Success && (out.User == nil || out.Token == "") {
		return nil, fmt.Errorf("%w: login reply without user or token", ErrUnexpectedResponse)
	}
	return &out, nil
}

// ListTasks returns every task the server holds. Only HTTP 200 with a data
// array counts as success.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var env Envelope
	resp, err := c.GetJSON(ctx, todosPath+"/get-todos", &env)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}
	var tasks []models.Task
	if err := decodeArray(env.Data, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// NewTaskRequest is the multipart create-task payload.
type NewTaskRequest struct {
	Title    string
	Status   models.TaskStatus
	DueDate  *time.Time
	UserID   string
	Image    *File
	Document *File
}

func (c *Client) CreateTask(ctx context.Context, in NewTaskRequest) error {
	var due string
	if in.DueDate != nil {
		due = in.DueDate.Format(DueDateLayout)
	}
	form := NewForm().
		Set("task", in.Title).
		Set("status", string(in.Status)).
		Set("due_date", due).
		Set("user", in.UserID).
		Attach("image", in.Image).
		Attach("document", in.Document)

	resp, err := c.SendMultipart(ctx, fasthttp.MethodPost, todosPath+"/add-Todo", form, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != fasthttp.StatusCreated {
		return fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}
	return nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.Do(ctx, fasthttp.MethodPut, todosPath+"/delete-Todo/"+url.PathEscape(id), "", nil)
	return err
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	form := NewForm().Set("status", string(status))

	resp, err := c.SendMultipart(ctx, fasthttp.MethodPut, todosPath+"/edit-Todo/"+url.PathEscape(id), form, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != fasthttp.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}
	return nil
}

// decodeArray requires raw to be a JSON array, not null or another shape.
func decodeArray(raw json.RawMessage, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return fmt.Errorf("%w: missing data array", ErrUnexpectedResponse)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}
