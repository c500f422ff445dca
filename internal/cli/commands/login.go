package commands

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dpella/frontdp/internal/cli/client"
	"github.com/dpella/frontdp/internal/cli/config"
	"github.com/dpella/frontdp/internal/cli/session"
	"github.com/dpella/frontdp/internal/cli/ui"
)

var (
	loginUsername string
)

// loginCmd is the login command
var loginCmd = &cobra.Command{
	Use:   "login [server]",
	Short: "authenticate with the platform",
	Long: `Authenticate with the platform and save credentials locally.

Your bearer token will be stored in ~/.dpctl/config.json and used
automatically for all subsequent commands. The token remains valid until
it expires or you login again.

If server is not provided, defaults to http://localhost:8080 or the
DPCTL_SERVER environment variable.`,
	Example: `  # Login to default server (localhost:8080)
  $ dpctl login

  # Login to custom server
  $ dpctl login http://dp.example.com:8080

  # Login with username (will prompt for password)
  $ dpctl login http://dp.example.com:8080 -u analyst1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username for authentication")

	// Silence usage to avoid showing help on every error
	loginCmd.SilenceUsage = true
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	loginServer := cfg.Server
	if len(args) > 0 {
		loginServer = args[0]
	}

	// 1. Prompt for username if not provided
	if loginUsername == "" {
		prompt := &survey.Input{
			Message: "Username:",
		}
		if err := survey.AskOne(prompt, &loginUsername, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read username: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	// 2. Prompt for password (hidden input)
	var password string
	prompt := &survey.Password{
		Message: "Password:",
	}
	if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
		ui.PrintError("failed to read password: %v", err)
		return fmt.Errorf("input failed")
	}

	// 3. Create API client without a token
	apiClient, err := client.NewAPIClient(loginServer, "")
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintInfo("Connecting to %s...", loginServer)

	// 4. Authenticate, then fetch the profile under the fresh token
	token, err := apiClient.Login(ctx, loginUsername, password)
	if err != nil {
		ui.PrintErrorBox("Login Failed", err.Error())
		return fmt.Errorf("authentication failed")
	}

	authed, err := client.NewAPIClient(loginServer, token)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}
	info, err := authed.GetUserInfo(ctx, loginUsername)
	if err != nil {
		ui.PrintError("failed to fetch user profile: %v", err)
		return fmt.Errorf("profile fetch failed")
	}

	// 5. Save config to local file
	cfg.Server = loginServer
	cfg.AccessToken = token
	cfg.Handle = loginUsername
	cfg.Name = info.Name
	cfg.Roles = info.Roles

	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	// 6. Display success message
	configPath, _ := config.Path()
	successContent := fmt.Sprintf(`Name:          %s
Handle:        %s
Roles:         %s
Config saved:  %s`,
		info.Name,
		loginUsername,
		formatRoles(info.Roles),
		configPath,
	)

	ui.PrintSuccessBox("✓ Login Successful", successContent)

	printRoleHints(info.Roles)

	return nil
}

func formatRoles(roles []string) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += ", "
		}
		out += r
	}
	return out
}

// printRoleHints shows the commands each of the user's roles unlocks.
// Admin hints come last so the account management block sits closest to
// the prompt.
func printRoleHints(roles []string) {
	fmt.Println()
	ui.PrintInfo("You can now use the following commands:")

	sess := session.Session{Token: "t", User: &session.User{Roles: roles}}
	if sess.HasRole(session.RoleCurator) {
		ui.PrintBold("  dpctl dataset create          # Upload a new dataset")
		ui.PrintBold("  dpctl budget assign <id>      # Distribute privacy budget")
	}
	if sess.HasRole(session.RoleAnalyst) {
		ui.PrintBold("  dpctl dataset list            # List accessible datasets")
		ui.PrintBold("  dpctl query <id>              # Run a statistical query")
	}
	if sess.HasRole(session.RoleAdmin) {
		ui.PrintBold("  dpctl user list               # List user accounts")
		ui.PrintBold("  dpctl user create             # Register a new user")
	}
}
