package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// whoamiCmd shows the stored identity.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "show the authenticated identity",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	whoamiCmd.SilenceUsage = true
}

func runWhoami(cmd *cobra.Command, args []string) error {
	_, cfg, err := authedClient()
	if err != nil {
		return err
	}

	fmt.Printf("Name:    %s\n", cfg.Name)
	fmt.Printf("Handle:  %s\n", cfg.Handle)
	fmt.Printf("Roles:   %s\n", formatRoles(cfg.Roles))
	fmt.Printf("Server:  %s\n", cfg.Server)
	return nil
}
