// Package roster is the admin view-model: teams, the user directory, and the
// member list of the team being edited.
//
// Local state only changes after the server accepts a call. A Model is meant
// for one caller at a time and is not safe for concurrent use.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"taskboard/models"
)

// ErrNoTeamSelected is returned by member operations when no team is open.
var ErrNoTeamSelected = errors.New("no team selected")

// DuplicateMemberError blocks adding a user who is already on the roster.
type DuplicateMemberError struct {
	User models.User
}

func (e *DuplicateMemberError) Error() string {
	return fmt.Sprintf("%s %s is already a member of this team.", e.User.FirstName, e.User.LastName)
}

// API is the part of the REST client the roster needs.
type API interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateTeam(ctx context.Context, name string) (*models.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	ReplaceRoster(ctx context.Context, teamID string, memberIDs []string) (*models.Team, error)
}

type Model struct {
	api API
	log logrus.FieldLogger

	teams    []models.Team
	users    []models.User
	selected *models.Team
	notice   string
}

func New(api API, log logrus.FieldLogger) *Model {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Model{api: api, log: log.WithField("component", "roster")}
}

// ListTeams fetches every team and replaces the local list.
func (m *Model) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := m.api.ListTeams(ctx)
	if err != nil {
		m.log.WithError(err).Error("Error fetching teams")
		return nil, fmt.Errorf("list teams: %w", err)
	}
	m.teams = append([]models.Team(nil), teams...)
	return m.Teams(), nil
}

// LoadUsers fetches the user directory members are picked from.
func (m *Model) LoadUsers(ctx context.Context) error {
	users, err := m.api.ListUsers(ctx)
	if err != nil {
		m.log.WithError(err).Error("Error fetching available users")
		m.users = nil
		return fmt.Errorf("list users: %w", err)
	}
	m.users = append([]models.User(nil), users...)
	return nil
}

// Refresh loads teams and users together.
func (m *Model) Refresh(ctx context.Context) error {
	if _, err := m.ListTeams(ctx); err != nil {
		return err
	}
	return m.LoadUsers(ctx)
}

func (m *Model) Teams() []models.Team {
	return append([]models.Team(nil), m.teams...)
}

func (m *Model) Users() []models.User {
	return append([]models.User(nil), m.users...)
}

// Team looks a team up in the local list by id.
func (m *Model) Team(id string) (models.Team, bool) {
	for _, t := range m.teams {
		if t.ID == id {
			return t, true
		}
	}
	return models.Team{}, false
}

// Notice is the last user-facing message, e.g. a duplicate member warning.
func (m *Model) Notice() string {
	return m.notice
}

// CreateTeam creates a team with no members. A blank name is ignored without
// an error or a request.
func (m *Model) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	m.notice = ""

	team, err := m.api.CreateTeam(ctx, name)
	if err != nil {
		m.log.WithError(err).Error("Error creating team")
		return nil, fmt.Errorf("create team: %w", err)
	}
	if team.Members == nil {
		team.Members = []models.User{}
	}
	m.teams = append(m.teams, *team)
	return team, nil
}

// DeleteTeam soft-deletes a team and drops it locally once the server agrees.
func (m *Model) DeleteTeam(ctx context.Context, id string) error {
	m.notice = ""
	if err := m.api.DeleteTeam(ctx, id); err != nil {
		m.log.WithError(err).WithField("team_id", id).Error("Error deleting team")
		return fmt.Errorf("delete team: %w", err)
	}

	kept := make([]models.Team, 0, len(m.teams))
	for _, t := range m.teams {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m.teams = kept
	if m.selected != nil && m.selected.ID == id {
		m.selected = nil
	}
	return nil
}

// SelectTeam opens team for member editing. Nothing is fetched.
func (m *Model) SelectTeam(team models.Team) {
	t := team
	t.Members = uniqueMembers(team.Members)
	m.selected = &t
}

// CloseTeam leaves member editing.
func (m *Model) CloseTeam() {
	m.selected = nil
}

func (m *Model) Selected() (models.Team, bool) {
	if m.selected == nil {
		return models.Team{}, false
	}
	return *m.selected, true
}

// Members is the roster of the selected team.
func (m *Model) Members() []models.User {
	if m.selected == nil {
		return nil
	}
	return append([]models.User(nil), m.selected.Members...)
}

// AddMember puts user on the selected team. A user already on the roster is
// refused with *DuplicateMemberError before any request is made.
func (m *Model) AddMember(ctx context.Context, user models.User) error {
	if m.selected == nil {
		return ErrNoTeamSelected
	}
	if m.selected.HasMember(user.ID) {
		dup := &DuplicateMemberError{User: user}
		m.notice = dup.Error()
		return dup
	}
	m.notice = ""

	target := append(m.selected.MemberIDs(), user.ID)
	team, err := m.api.ReplaceRoster(ctx, m.selected.ID, target)
	if err != nil {
		m.log.WithError(err).WithField("user_id", user.ID).Error("Error adding member")
		return fmt.Errorf("add member: %w", err)
	}
	m.applyRoster(team, target)
	return nil
}

// RemoveMember takes member off the selected team.
func (m *Model) RemoveMember(ctx context.Context, member models.User) error {
	if m.selected == nil {
		return ErrNoTeamSelected
	}
	m.notice = ""

	target := make([]string, 0, len(m.selected.Members))
	for _, id := range m.selected.MemberIDs() {
		if id != member.ID {
			target = append(target, id)
		}
	}

	team, err := m.api.ReplaceRoster(ctx, m.selected.ID, target)
	if err != nil {
		m.log.WithError(err).WithField("user_id", member.ID).Error("Error removing member")
		return fmt.Errorf("remove member: %w", err)
	}
	m.applyRoster(team, target)
	return nil
}

// applyRoster installs the roster the server reported. When the server sent
// no team back, the accepted ids are resolved against the user directory.
func (m *Model) applyRoster(team *models.Team, accepted []string) {
	var members []models.User
	if team != nil {
		members = make([]models.User, 0, len(team.Members))
		for _, u := range team.Members {
			members = append(members, m.resolve(u))
		}
	} else {
		members = make([]models.User, 0, len(accepted))
		for _, id := range accepted {
			members = append(members, m.resolve(models.User{ID: id}))
		}
	}
	members = uniqueMembers(members)

	m.selected.Members = members
	if team != nil && team.Name != "" {
		m.selected.Name = team.Name
	}
	for i := range m.teams {
		if m.teams[i].ID == m.selected.ID {
			m.teams[i].Members = append([]models.User(nil), members...)
		}
	}
}

// resolve fills in names for a member the server only sent as an id.
func (m *Model) resolve(u models.User) models.User {
	if u.FirstName != "" || u.LastName != "" {
		return u
	}
	for _, known := range m.users {
		if known.ID == u.ID {
			return known
		}
	}
	return u
}

// Available is every known user not on the selected roster. It is derived on
// each call.
func (m *Model) Available() []models.User {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if m.selected != nil && m.selected.HasMember(u.ID) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// SearchAvailableUsers filters Available by a case-insensitive substring of
// "first last". An empty term matches everyone.
func (m *Model) SearchAvailableUsers(term string) []models.User {
	available := m.Available()
	if term == "" {
		return available
	}
	needle := strings.ToLower(term)
	out := available[:0]
	for _, u := range available {
		if strings.Contains(strings.ToLower(u.FirstName+" "+u.LastName), needle) {
			out = append(out, u)
		}
	}
	return out
}

func uniqueMembers(in []models.User) []models.User {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.User, 0, len(in))
	for _, u := range in {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}
	return out
}
