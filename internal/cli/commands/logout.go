package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dpella/frontdp/internal/cli/ui"
)

// logoutCmd invalidates the session server-side and clears the stored
// credentials.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "end the current session",
	Long: `Invalidate the session token on the server and remove the stored
credentials from ~/.dpctl/config.json. The configured server address is kept.`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	logoutCmd.SilenceUsage = true
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd, 30*time.Second)
	defer cancel()

	apiClient, cfg, err := authedClient()
	if err != nil {
		return err
	}

	// Server-side invalidation is best effort: the local session is
	// cleared even when the call fails, so an expired token never wedges
	// the CLI.
	if err := apiClient.Logout(ctx); err != nil {
		ui.PrintWarning("server logout failed: %v", err)
	}

	cfg.ClearSession()
	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	ui.PrintSuccess("Logged out")
	return nil
}
