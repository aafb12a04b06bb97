package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskboard/models"
	"taskboard/roster"
)

func newTeamsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Manage teams and their members",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List teams",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := a.roster(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tMEMBERS")
				for _, t := range m.Teams() {
					fmt.Fprintf(w, "%s\t%s\t%d\n", t.ID, t.Name, len(t.Members))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create an empty team",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := a.roster(cmd.Context())
				if err != nil {
					return err
				}
				team, err := m.CreateTeam(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if team == nil {
					return fmt.Errorf("team name is required")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created team %s (%s)\n", team.Name, team.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <team-id>",
			Short: "Delete a team",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := a.roster(cmd.Context())
				if err != nil {
					return err
				}
				if err := m.DeleteTeam(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Team deleted")
				return nil
			},
		},
		&cobra.Command{
			Use:   "members <team-id>",
			Short: "List the members of a team",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := a.selectTeam(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printUsers(cmd.OutOrStdout(), m.Members())
			},
		},
		&cobra.Command{
			Use:   "add <team-id> <user-id>",
			Short: "Add a user to a team",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.changeMember(cmd, args[0], args[1], (*roster.Model).AddMember)
			},
		},
		&cobra.Command{
			Use:   "remove <team-id> <user-id>",
			Short: "Remove a user from a team",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.changeMember(cmd, args[0], args[1], (*roster.Model).RemoveMember)
			},
		},
		&cobra.Command{
			Use:   "search <team-id> [term]",
			Short: "Find users who could join a team",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := a.selectTeam(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				term := ""
				if len(args) == 2 {
					term = args[1]
				}
				return printUsers(cmd.OutOrStdout(), m.SearchAvailableUsers(term))
			},
		},
	)
	return cmd
}

// roster builds a roster model with teams and users already fetched.
func (a *app) roster(ctx context.Context) (*roster.Model, error) {
	if _, err := a.session(ctx); err != nil {
		return nil, err
	}
	m := roster.New(a.api, a.log)
	if err := m.Refresh(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (a *app) selectTeam(ctx context.Context, teamID string) (*roster.Model, error) {
	m, err := a.roster(ctx)
	if err != nil {
		return nil, err
	}
	team, ok := m.Team(teamID)
	if !ok {
		return nil, fmt.Errorf("no team with id %s", teamID)
	}
	m.SelectTeam(team)
	return m, nil
}

func (a *app) changeMember(cmd *cobra.Command, teamID, userID string, op func(*roster.Model, context.Context, models.User) error) error {
	m, err := a.selectTeam(cmd.Context(), teamID)
	if err != nil {
		return err
	}
	user, ok := findUser(m.Users(), userID)
	if !ok {
		return fmt.Errorf("no user with id %s", userID)
	}
	if err := op(m, cmd.Context(), user); err != nil {
		return err
	}
	return printUsers(cmd.OutOrStdout(), m.Members())
}

func findUser(users []models.User, id string) (models.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func printUsers(out io.Writer, users []models.User) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.FullName(), u.Email, u.Role)
	}
	return w.Flush()
}
