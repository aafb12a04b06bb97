// Package session holds the logged-in user and token and persists them
// between taskctl invocations.
package session

import (
	"context"
	"errors"

	"taskboard/models"
)

// Keys the session is persisted under, shared by every store.
const (
	UserKey  = "userData"
	TokenKey = "authToken"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("no active session")

// Session is created by login and destroyed by logout. Code outside the auth
// flow only reads it.
type Session struct {
	User  models.User
	Token string
}

func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}

func (s *Session) Role() models.Role {
	if s == nil {
		return ""
	}
	return s.User.Role
}

// Store persists a single session.
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}
