package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskboard/auth"
	"taskboard/client"
	"taskboard/models"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage teams and personal task boards",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newSignUpCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoAmICmd(a),
		newTeamsCmd(a),
		newTasksCmd(a),
	)
	return root
}

func newSignUpCmd(a *app) *cobra.Command {
	var form auth.SignUpForm
	var role, image string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, closer, err := openFile(image)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			form.Image = file
			form.Role = models.Role(role)

			u, err := a.auth.SignUp(cmd.Context(), form)
			if err != nil {
				return err
			}
			if u != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", u.FullName(), u.ID)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Account created")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.FirstName, "first", "", "first name")
	f.StringVar(&form.LastName, "last", "", "last name")
	f.StringVar(&form.Contact, "contact", "", "contact number")
	f.StringVar(&form.Email, "email", "", "email address")
	f.StringVar(&form.Password, "password", "", "password")
	f.StringVar(&form.ConfirmPassword, "confirm", "", "password again")
	f.StringVar(&role, "role", string(models.RoleTeam), "account type: team or admin")
	f.StringVar(&image, "image", "", "profile image file")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.auth.Login(cmd.Context(), args[0], password)
			if err != nil {
				var ferr *auth.FieldError
				if errors.As(err, &ferr) {
					return errors.New(ferr.Message)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s), home: %s\n",
				sess.User.FullName(), sess.Role(), auth.HomeFor(sess.Role()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s %s\n",
				sess.User.FullName(), sess.User.Email, sess.Role(), sess.UserID())
			return nil
		},
	}
}

// uploadURL renders a stored attachment name as a full URL.
func uploadURL(api *client.Client, name string) string {
	if name == "" {
		return "-"
	}
	return api.UploadURL(name)
}
