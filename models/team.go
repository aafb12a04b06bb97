package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team groups users under a name. Deletion is soft.
type Team struct {
	ID      string `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Name    string `gorm:"not null" json:"name"`
	Members []User `gorm:"many2many:team_members;" json:"members"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// MemberIDs returns the roster as a list of user ids.
func (t Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// HasMember reports whether userID is on the roster.
func (t Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts members either populated as user objects or as bare ids.
func (t *Team) UnmarshalJSON(data []byte) error {
	type alias Team
	aux := struct {
		*alias
		Members []json.RawMessage `json:"members"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.Members = make([]User, 0, len(aux.Members))
	for _, raw := range aux.Members {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '"' {
			var id string
			if err := json.Unmarshal(raw, &id); err != nil {
				return err
			}
			t.Members = append(t.Members, User{ID: id})
			continue
		}
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return err
		}
		t.Members = append(t.Members, u)
	}
	return nil
}
