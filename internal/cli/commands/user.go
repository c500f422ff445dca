package commands

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dpella/frontdp/internal/cli/client"
	"github.com/dpella/frontdp/internal/cli/session"
	"github.com/dpella/frontdp/internal/cli/types"
	"github.com/dpella/frontdp/internal/cli/ui"
)

// userCmd is the parent user administration command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long: `Register, inspect and manage the platform's user accounts.
All user administration requires the Admin role.`,
	Example: `  # List registered users
  $ dpctl user list

  # Register a new user interactively
  $ dpctl user create

  # Change name or roles of a user
  $ dpctl user edit analyst1

  # Delete a user
  $ dpctl user delete analyst1`,
}

func init() {
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userEditCmd)
	userCmd.AddCommand(userDeleteCmd)

	userCmd.SilenceUsage = true
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "list registered users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd, 30*time.Second)
		defer cancel()

		apiClient, _, err := authedClient(session.RoleAdmin)
		if err != nil {
			return err
		}

		users, err := apiClient.ListUsers(ctx)
		if err != nil {
			ui.PrintError("failed to list users: %v", err)
			return fmt.Errorf("listing failed")
		}

		fmt.Print(ui.RenderUserTable(users))
		return nil
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "register a new user",
	Args:  cobra.NoArgs,
	RunE:  runUserCreate,
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 5*time.Minute)
	defer cancel()

	apiClient, _, err := authedClient(session.RoleAdmin)
	if err != nil {
		return err
	}

	var req types.RegisterUserRequest

	questions := []*survey.Question{
		{
			Name:     "handle",
			Prompt:   &survey.Input{Message: "Handle (login name):"},
			Validate: survey.Required,
		},
		{
			Name:     "name",
			Prompt:   &survey.Input{Message: "Display name:"},
			Validate: survey.Required,
		},
	}
	if err := survey.Ask(questions, &req); err != nil {
		return fmt.Errorf("input failed")
	}

	password := ""
	pwPrompt := &survey.Password{Message: "Password:"}
	if err := survey.AskOne(pwPrompt, &password, survey.WithValidator(survey.Required)); err != nil {
		return fmt.Errorf("input failed")
	}
	req.Password = password

	roles, err := promptRoles(nil)
	if err != nil {
		return err
	}
	req.Roles = roles

	if err := apiClient.RegisterUser(ctx, req); err != nil {
		// The handle collision gets its own message so the admin knows to
		// pick another handle rather than retry.
		if client.IsDuplicateHandle(err) {
			ui.PrintError("handle %q is already taken, choose another", req.Handle)
			return fmt.Errorf("duplicate handle")
		}
		ui.PrintError("failed to register user: %v", err)
		return fmt.Errorf("registration failed")
	}

	ui.PrintSuccess("User %q registered with roles %s", req.Handle, formatRoles(req.Roles))
	return nil
}

var userEditCmd = &cobra.Command{
	Use:   "edit <handle>",
	Short: "change a user's name and roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd, 5*time.Minute)
		defer cancel()

		handle := args[0]

		apiClient, _, err := authedClient(session.RoleAdmin)
		if err != nil {
			return err
		}

		info, err := apiClient.GetUserInfo(ctx, handle)
		if err != nil {
			ui.PrintError("failed to fetch user: %v", err)
			return fmt.Errorf("fetch failed")
		}

		name := info.Name
		prompt := &survey.Input{Message: "Display name:", Default: name}
		if err := survey.AskOne(prompt, &name, survey.WithValidator(survey.Required)); err != nil {
			return fmt.Errorf("input failed")
		}

		roles, err := promptRoles(info.Roles)
		if err != nil {
			return err
		}

		req := types.UpdateUserRequest{Name: name, Roles: roles}
		if err := apiClient.UpdateUser(ctx, handle, req); err != nil {
			ui.PrintError("failed to update user: %v", err)
			return fmt.Errorf("update failed")
		}

		ui.PrintSuccess("User %q updated", handle)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <handle>",
	Short: "delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd, 30*time.Second)
		defer cancel()

		handle := args[0]

		apiClient, cfg, err := authedClient(session.RoleAdmin)
		if err != nil {
			return err
		}

		if handle == cfg.Handle {
			ui.PrintError("refusing to delete the account you are logged in as")
			return fmt.Errorf("self deletion")
		}

		confirm := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete user %q? This cannot be undone.", handle),
		}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return fmt.Errorf("confirmation cancelled")
		}
		if !confirm {
			ui.PrintInfo("Cancelled")
			return nil
		}

		if err := apiClient.DeleteUser(ctx, handle); err != nil {
			ui.PrintError("failed to delete user: %v", err)
			return fmt.Errorf("deletion failed")
		}

		ui.PrintSuccess("User %q deleted", handle)
		return nil
	},
}

// promptRoles selects one or more platform roles.
func promptRoles(current []string) ([]string, error) {
	var roles []string
	sel := &survey.MultiSelect{
		Message: "Roles:",
		Options: []string{session.RoleAdmin, session.RoleCurator, session.RoleAnalyst},
		Default: current,
	}
	if err := survey.AskOne(sel, &roles, survey.WithValidator(survey.Required)); err != nil {
		return nil, fmt.Errorf("input failed")
	}
	if err := validRoles(roles); err != nil {
		return nil, err
	}
	return roles, nil
}
