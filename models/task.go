package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus is the board column a task sits in
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// Statuses is the fixed order tasks move through. Done wraps back to To do.
var Statuses = []TaskStatus{StatusToDo, StatusInProgress, StatusDone}

// ParseStatus matches s case-insensitively against Statuses.
func ParseStatus(s string) (TaskStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return TaskStatus(s), false
}

// Index is the position of s in Statuses, or -1.
func (s TaskStatus) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Next is the status one step forward in the cycle. An unknown status
// advances to the first one.
func (s TaskStatus) Next() TaskStatus {
	return Statuses[(s.Index()+1)%len(Statuses)]
}

// Advance moves n steps forward.
func (s TaskStatus) Advance(n int) TaskStatus {
	for i := 0; i < n; i++ {
		s = s.Next()
	}
	return s
}

func (s TaskStatus) Valid() bool {
	return s.Index() >= 0
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s, _ = ParseStatus(raw)
	return nil
}

// Task is a personal to-do item owned by one user.
type Task struct {
	ID       string     `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Title    string     `gorm:"not null" json:"task"`
	Status   TaskStatus `gorm:"not null;default:'To do'" json:"status"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	UserID   string     `gorm:"not null;index" json:"user"`
	Image    string     `json:"image,omitempty"`
	Document string     `json:"document,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
