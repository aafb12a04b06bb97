// Package board is the team member view-model: the caller's tasks laid out
// in status columns.
//
// Every mutation is followed by a full refetch instead of patching the list
// locally. A Model is not safe for concurrent use.
package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"taskboard/client"
	"taskboard/models"
	"taskboard/session"
	"taskboard/utils"
)

// Messages shown to the user. They never carry error details.
const (
	MsgFetchFailed      = "Could not fetch tasks. Please try again later."
	MsgUnexpectedFormat = "Unexpected response format. Please contact support."
	MsgTitleRequired    = "Task title is required."
	MsgAddFailed        = "Could not add task. Please try again."
	MsgDeleteFailed     = "Could not delete task. Please try again."
	MsgStatusFailed     = "Could not update task status. Please try again."
	MsgNoTasks          = "No tasks available. Please add a task."
)

// API is the part of the REST client the board needs.
type API interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, in client.NewTaskRequest) error
	DeleteTask(ctx context.Context, id string) error
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error
}

type Model struct {
	api     API
	ownerID string
	log     logrus.FieldLogger

	tasks   []models.Task
	message string
}

// New builds a board for the session's user. With no session the board
// stays empty.
func New(api API, sess *session.Session, log logrus.FieldLogger) *Model {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Model{
		api:     api,
		ownerID: sess.UserID(),
		log:     log.WithFields(logrus.Fields{"component": "board", "user_id": sess.UserID()}),
	}
}

func (m *Model) Tasks() []models.Task {
	return append([]models.Task(nil), m.tasks...)
}

// Task looks a task up in the local list by id.
func (m *Model) Task(id string) (models.Task, bool) {
	for _, t := range m.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// Message is the current user-facing notice, or "".
func (m *Model) Message() string {
	return m.message
}

// ListTasks fetches every task and keeps the ones the owner holds. On any
// failure the list is emptied and a message is set.
func (m *Model) ListTasks(ctx context.Context) ([]models.Task, error) {
	all, err := m.api.ListTasks(ctx)
	if err != nil {
		m.tasks = nil
		if errors.Is(err, client.ErrUnexpectedResponse) {
			m.message = MsgUnexpectedFormat
		} else {
			m.message = MsgFetchFailed
		}
		m.log.WithError(err).Error("Error fetching tasks")
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	owned := make([]models.Task, 0, len(all))
	if m.ownerID != "" {
		for _, t := range all {
			if t.UserID == m.ownerID {
				owned = append(owned, t)
			}
		}
	}
	m.tasks = owned
	return m.Tasks(), nil
}

// NewTask is the add-task form.
type NewTask struct {
	Title    string `json:"task" validate:"notblank"`
	DueDate  *time.Time
	Image    *client.File
	Document *client.File
}

// AddTask creates a task in the first status and refetches the board. A
// blank title is rejected without a request.
func (m *Model) AddTask(ctx context.Context, in NewTask) error {
	if err := utils.ValidateStruct(in); err != nil {
		m.message = MsgTitleRequired
		return err
	}

	err := m.api.CreateTask(ctx, client.NewTaskRequest{
		Title:    in.Title,
		Status:   models.Statuses[0],
		DueDate:  in.DueDate,
		UserID:   m.ownerID,
		Image:    in.Image,
		Document: in.Document,
	})
	if err != nil {
		m.message = MsgAddFailed
		m.log.WithError(err).Error("Error adding task")
		return fmt.Errorf("add task: %w", err)
	}

	m.message = ""
	_, err = m.ListTasks(ctx)
	return err
}

// RemoveTask soft-deletes a task and drops it locally once the server agrees.
func (m *Model) RemoveTask(ctx context.Context, id string) error {
	if err := m.api.DeleteTask(ctx, id); err != nil {
		m.message = MsgDeleteFailed
		m.log.WithError(err).WithField("task_id", id).Error("Error deleting task")
		return fmt.Errorf("remove task: %w", err)
	}

	kept := make([]models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m.tasks = kept
	if len(m.tasks) == 0 {
		m.message = MsgNoTasks
	}
	return nil
}

// AdvanceStatus moves task one step along the status cycle and refetches.
// It returns the status that was sent.
func (m *Model) AdvanceStatus(ctx context.Context, task models.Task) (models.TaskStatus, error) {
	next := task.Status.Next()
	if err := m.api.UpdateTaskStatus(ctx, task.ID, next); err != nil {
		m.message = MsgStatusFailed
		m.log.WithError(err).WithField("task_id", task.ID).Error("Error updating task")
		return "", fmt.Errorf("advance status: %w", err)
	}

	if _, err := m.ListTasks(ctx); err != nil {
		return next, err
	}
	return next, nil
}

// Column is one status lane of the board.
type Column struct {
	Status models.TaskStatus
	Tasks  []models.Task
}

// Columns groups the tasks by status in cycle order.
func (m *Model) Columns() []Column {
	cols := make([]Column, len(models.Statuses))
	for i, st := range models.Statuses {
		cols[i].Status = st
	}
	for _, t := range m.tasks {
		if i := t.Status.Index(); i >= 0 {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}
