package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dpella/frontdp/internal/cli/ui"
	"github.com/dpella/frontdp/pkg/logger"
)

const version = "0.1.0"

var verbose bool

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "dpctl",
	Short:   "Differential privacy platform CLI",
	Version: version,
	Long: `A command-line tool for querying sensitive datasets under differential
privacy. Curators upload datasets and distribute privacy budget, analysts
spend their allocation on noised statistical queries, admins manage the
user accounts.`,
	Example: `  # Authenticate with the platform
  $ dpctl login http://localhost:8080 -u analyst1

  # List datasets you can see
  $ dpctl dataset list

  # Run a query against dataset 3
  $ dpctl query 3

  # Get help on a specific command
  $ dpctl query --help`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		return logger.Setup(level)
	},
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(budgetCmd)
	rootCmd.AddCommand(userCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("dpctl version %s\n", version)
}
