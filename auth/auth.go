// Package auth turns login and sign-up forms into a Session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"taskboard/client"
	"taskboard/models"
	"taskboard/session"
	"taskboard/utils"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgLoginFailed        = "An error occurred while logging in"
)

// FieldError is a message attached to one form field rather than the whole form.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// API is the part of the REST client auth needs.
type API interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	SignUp(ctx context.Context, in client.SignUpRequest) (*models.User, error)
	SetToken(token string)
}

type Service struct {
	api   API
	store session.Store
	log   logrus.FieldLogger
}

func NewService(api API, store session.Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{api: api, store: store, log: log}
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

// Login authenticates and persists the new session. Bad credentials and
// transport failures both come back as a *FieldError on "password".
func (s *Service) Login(ctx context.Context, email, password string) (*session.Session, error) {
	if err := utils.ValidateStruct(loginForm{Email: email, Password: password}); err != nil {
		return nil, firstFieldError(err)
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		var terr *client.TransportError
		if errors.As(err, &terr) && terr.StatusCode == http.StatusUnauthorized {
			return nil, &FieldError{Field: "password", Message: msgInvalidCredentials, Err: err}
		}
		s.log.WithError(err).Error("Error logging in")
		return nil, &FieldError{Field: "password", Message: msgLoginFailed, Err: err}
	}
	if !resp.Success {
		return nil, &FieldError{Field: "password", Message: msgInvalidCredentials}
	}

	sess := &session.Session{User: *resp.User, Token: resp.Token}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.api.SetToken(sess.Token)
	s.log.WithFields(logrus.Fields{"user_id": sess.UserID(), "role": sess.Role()}).Info("logged in")
	return sess, nil
}

// Logout destroys the stored session.
func (s *Service) Logout(ctx context.Context) error {
	s.api.SetToken("")
	return s.store.Clear(ctx)
}

// Current returns the stored session, or session.ErrNoSession.
func (s *Service) Current(ctx context.Context) (*session.Session, error) {
	sess, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.api.SetToken(sess.Token)
	return sess, nil
}

// SignUpForm is what a new user fills in.
type SignUpForm struct {
	FirstName       string       `json:"firstname" validate:"required"`
	LastName        string       `json:"lastname" validate:"required"`
	Contact         string       `json:"contact" validate:"required"`
	Email           string       `json:"email" validate:"required,mailformat"`
	Password        string       `json:"password" validate:"required,min=6"`
	ConfirmPassword string       `json:"confirmpassword" validate:"required,eqfield=Password"`
	Role            models.Role  `json:"usertype" validate:"required,oneof=team admin"`
	Image           *client.File `json:"image" validate:"required"`
}

// SignUp validates the form locally and registers the account. It does not
// log the user in.
func (s *Service) SignUp(ctx context.Context, form SignUpForm) (*models.User, error) {
	if err := utils.ValidateStruct(form); err != nil {
		return nil, err
	}

	user, err := s.api.SignUp(ctx, client.SignUpRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Contact:   form.Contact,
		Email:     form.Email,
		Password:  form.Password,
		Role:      form.Role,
		Image:     form.Image,
	})
	if err != nil {
		s.log.WithError(err).Error("Error signing up")
		return nil, err
	}
	return user, nil
}

// Home names the view a role lands on after login.
type Home string

const (
	HomeBoard  Home = "board"
	HomeRoster Home = "roster"
	HomeSignUp Home = "signup"
)

func HomeFor(role models.Role) Home {
	switch role {
	case models.RoleTeam:
		return HomeBoard
	case models.RoleAdmin:
		return HomeRoster
	default:
		return HomeSignUp
	}
}

func firstFieldError(err error) error {
	var verr *utils.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		f := verr.Fields[0]
		return &FieldError{Field: f.Field, Message: f.Message, Err: err}
	}
	return err
}
