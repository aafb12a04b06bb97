package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/client"
	"taskboard/models"
	"taskboard/session"
)

// fakeServer holds tasks for several users and records every call.
type fakeServer struct {
	tasks   []models.Task
	calls   []string
	created []client.NewTaskRequest

	listErr   error
	createErr error
	deleteErr error
	updateErr error
	nextID    int
}

func (f *fakeServer) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.calls = append(f.calls, "ListTasks")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeServer) CreateTask(ctx context.Context, in client.NewTaskRequest) error {
	f.calls = append(f.calls, "CreateTask")
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	f.created = append(f.created, in)
	f.tasks = append(f.tasks, models.Task{
		ID:     fmt.Sprintf("k%d", f.nextID),
		Title:  in.Title,
		Status: in.Status,
		UserID: in.UserID,
	})
	return nil
}

func (f *fakeServer) DeleteTask(ctx context.Context, id string) error {
	f.calls = append(f.calls, "DeleteTask")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeServer) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	f.calls = append(f.calls, "UpdateTaskStatus:"+string(status))
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Status = status
		}
	}
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var owner = &session.Session{User: models.User{ID: "u1", Role: models.RoleTeam}, Token: "jwt"}

func newBoard(srv *fakeServer) *Model {
	return New(srv, owner, quietLogger())
}

func TestListTasksKeepsOwnersTasks(t *testing.T) {
	srv := &fakeServer{tasks: []models.Task{
		{ID: "k1", UserID: "u1", Status: models.StatusToDo},
		{ID: "k2", UserID: "u2", Status: models.StatusToDo},
		{ID: "k3", UserID: "u1", Status: models.StatusDone},
	}}
	b := newBoard(srv)

	tasks, err := b.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "k1", tasks[0].ID)
	assert.Equal(t, "k3", tasks[1].ID)
}

func TestListTasksWithoutSessionIsEmpty(t *testing.T) {
	srv := &fakeServer{tasks: []models.Task{{ID: "k1", UserID: "u1"}}}
	b := New(srv, nil, quietLogger())

	tasks, err := b.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListTasksUnexpectedShape(t *testing.T) {
	srv := &fakeServer{tasks: []models.Task{{ID: "k1", UserID: "u1"}}}
	b := newBoard(srv)
	_, err := b.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, b.Tasks(), 1)

	srv.listErr = fmt.Errorf("%w: missing data array", client.ErrUnexpectedResponse)
	_, err = b.ListTasks(context.Background())
	require.ErrorIs(t, err, client.ErrUnexpectedResponse)
	assert.Empty(t, b.Tasks())
	assert.Equal(t, MsgUnexpectedFormat, b.Message())
}

func TestListTasksTransportFailure(t *testing.T) {
	srv := &fakeServer{listErr: &client.TransportError{Method: "GET", Path: "/api/v1/todo/get-todos", StatusCode: 502}}
	b := newBoard(srv)

	_, err := b.ListTasks(context.Background())
	var terr *client.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, MsgFetchFailed, b.Message())
	assert.Equal(t, []string{"ListTasks"}, srv.calls)
}

func TestAddTaskBlankTitleMakesNoRequest(t *testing.T) {
	srv := &fakeServer{tasks: []models.Task{{ID: "k1", UserID: "u1"}}}
	b := newBoard(srv)
	_, err := b.ListTasks(context.Background())
	require.NoError(t, err)
	srv.calls = nil

	for _, title := range []string{"", "   ", "\t\n"} {
		err := b.AddTask(context.Background(), NewTask{Title: title})
		require.Error(t, err)
		assert.Equal(t, MsgTitleRequired, b.Message())
	}
	assert.Empty(t, srv.calls)
	assert.Len(t, b.Tasks(), 1)
}

func TestAddTaskCreatesInFirstStatusAndRefetches(t *testing.T) {
	srv := &fakeServer{}
	b := newBoard(srv)

	image := &client.File{Name: "a.png", Data: strings.NewReader("PNG")}
	require.NoError(t, b.AddTask(context.Background(), NewTask{Title: "Write report", Image: image}))

	assert.Equal(t, []string{"CreateTask", "ListTasks"}, srv.calls)
	require.Len(t, srv.created, 1)
	assert.Equal(t, models.StatusToDo, srv.created[0].Status)
	assert.Equal(t, "u1", srv.created[0].UserID)
	assert.Same(t, image, srv.created[0].Image)
	assert.Nil(t, srv.created[0].Document)

	require.Len(t, b.Tasks(), 1)
	assert.Equal(t, "Write report", b.Tasks()[0].Title)
	assert.Empty(t, b.Message())
}

func TestAddTaskFailure(t *testing.T) {
	srv := &fakeServer{createErr: errors.New("503")}
	b := newBoard(srv)

	err := b.AddTask(context.Background(), NewTask{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, MsgAddFailed, b.Message())
	assert.Equal(t, []string{"CreateTask"}, srv.calls, "no refetch after a failed create")
}

func TestRemoveLastTaskSetsNotice(t *testing.T) {
	srv := &fakeServer{tasks: []models.Task{
		{ID: "k1", UserID: "u1"},
		{ID: "k2", UserID: "u1"},
	}}
	b := newBoard(srv)
	_, err := b.ListTasks(context.Background())
	require.NoError(t, err)

	require.NoError(t, b.RemoveTask(context.Background(), "k1"))
	assert.Len(t, b.Tasks(), 1)
	assert.Empty(t, b.Message())

	require.NoError(t, b.RemoveTask(context.Background(), "k2"))
	assert.Empty(t, b.Tasks())
	assert.Equal(t, MsgNoTasks, b.Message())
}

func TestRemoveTaskFailureKeepsTask(t *testing.T) {
	srv := &fakeServer{tasks: []models.Task{{ID: "k1", UserID: "u1"}}}
	b := newBoard(srv)
	_, err := b.ListTasks(context.Background())
	require.NoError(t, err)

	srv.deleteErr = errors.New("boom")
	require.Error(t, b.RemoveTask(context.Background(), "k1"))
	assert.Len(t, b.Tasks(), 1)
	assert.Equal(t, MsgDeleteFailed, b.Message())
}

func TestAdvanceStatusCycles(t *testing.T) {
	srv := &fakeServer{tasks: []models.Task{{ID: "k1", UserID: "u1", Status: models.StatusToDo}}}
	b := newBoard(srv)
	ctx := context.Background()
	_, err := b.ListTasks(ctx)
	require.NoError(t, err)

	for n := 1; n <= 7; n++ {
		task, ok := b.Task("k1")
		require.True(t, ok)
		next, err := b.AdvanceStatus(ctx, task)
		require.NoError(t, err)

		want := models.Statuses[n%len(models.Statuses)]
		assert.Equal(t, want, next)
		task, _ = b.Task("k1")
		assert.Equal(t, want, task.Status, "after %d advances", n)
	}
}

func TestAdvanceDoneWrapsToToDo(t *testing.T) {
	srv := &fakeServer{tasks: []models.Task{{ID: "k1", UserID: "u1", Status: models.StatusDone}}}
	b := newBoard(srv)
	_, err := b.ListTasks(context.Background())
	require.NoError(t, err)
	srv.calls = nil

	task, _ := b.Task("k1")
	next, err := b.AdvanceStatus(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, models.StatusToDo, next)
	assert.Equal(t, []string{"UpdateTaskStatus:To do", "ListTasks"}, srv.calls)
}

func TestAdvanceStatusFailure(t *testing.T) {
	srv := &fakeServer{updateErr: errors.New("boom")}
	b := newBoard(srv)

	_, err := b.AdvanceStatus(context.Background(), models.Task{ID: "k1", Status: models.StatusToDo})
	require.Error(t, err)
	assert.Equal(t, MsgStatusFailed, b.Message())
	assert.Equal(t, []string{"UpdateTaskStatus:In Progress"}, srv.calls)
}

func TestColumns(t *testing.T) {
	srv := &fakeServer{tasks: []models.Task{
		{ID: "k1", UserID: "u1", Status: models.StatusDone},
		{ID: "k2", UserID: "u1", Status: models.StatusToDo},
		{ID: "k3", UserID: "u1", Status: models.StatusToDo},
	}}
	b := newBoard(srv)
	_, err := b.ListTasks(context.Background())
	require.NoError(t, err)

	cols := b.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, models.StatusToDo, cols[0].Status)
	assert.Len(t, cols[0].Tasks, 2)
	assert.Empty(t, cols[1].Tasks)
	assert.Len(t, cols[2].Tasks, 1)
}
