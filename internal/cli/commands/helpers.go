package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dpella/frontdp/internal/cli/client"
	"github.com/dpella/frontdp/internal/cli/config"
	"github.com/dpella/frontdp/internal/cli/session"
	"github.com/dpella/frontdp/internal/cli/ui"
	"github.com/dpella/frontdp/internal/cli/wizard"
	"github.com/dpella/frontdp/pkg/logger"
)

// commandContext builds the context a command's API calls run under: a
// deadline plus a logger tagged with the command path, which the client
// picks up for its request logging.
func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	log := slog.Default().With("command", cmd.CommandPath())
	return context.WithTimeout(logger.WithContext(context.Background(), log), timeout)
}

// authedClient loads the stored session and builds an API client for it,
// rejecting unauthenticated sessions and sessions lacking every allowed
// role. Commands with no role restriction pass no roles.
func authedClient(roles ...string) (*client.APIClient, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, nil, fmt.Errorf("config load failed")
	}

	sess := cfg.Session()
	if !sess.Authenticated() {
		ui.PrintError("not authenticated, please login first")
		fmt.Println("\nRun 'dpctl login' to authenticate.")
		return nil, nil, fmt.Errorf("authentication required")
	}

	if len(roles) > 0 && !sess.Authorized(roles...) {
		ui.PrintError("this command requires one of the roles: %s", strings.Join(roles, ", "))
		return nil, nil, fmt.Errorf("insufficient role")
	}

	apiClient, err := client.NewAPIClient(cfg.Server, cfg.AccessToken)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, nil, fmt.Errorf("client creation failed")
	}
	return apiClient, cfg, nil
}

// datasetIDArg parses the positional dataset id argument.
func datasetIDArg(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dataset id %q", arg)
	}
	return id, nil
}

// promptFloat asks for a numeric value with a prefilled default.
func promptFloat(message string, current float64) (float64, error) {
	answer := strconv.FormatFloat(current, 'g', -1, 64)
	prompt := &survey.Input{Message: message, Default: answer}
	validator := func(ans interface{}) error {
		s, _ := ans.(string)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		return nil
	}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(validator)); err != nil {
		return 0, fmt.Errorf("input failed")
	}
	value, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", answer)
	}
	return value, nil
}

const navContinue = "Continue"

// promptStepNav asks, after a step's questions, whether to move on or to
// revisit an earlier step. back reports that the machine moved backward and
// the caller should re-prompt; exit reports that the user backed out of the
// flow from its first step.
func promptStepNav(m *wizard.Machine) (back, exit bool, err error) {
	steps := m.Steps()
	options := []string{navContinue, "Go back"}
	for i := 0; i < m.Step()-1; i++ {
		options = append(options, "Back to "+steps[i])
	}

	choice := navContinue
	sel := &survey.Select{Message: "Next:", Options: options, Default: navContinue}
	if err := survey.AskOne(sel, &choice); err != nil {
		return false, false, fmt.Errorf("input failed")
	}

	switch choice {
	case navContinue:
		return false, false, nil
	case "Go back":
		if !m.Retreat() {
			return false, true, nil
		}
		return true, false, nil
	}
	for i := 0; i < m.Step()-1; i++ {
		if choice == "Back to "+steps[i] {
			if err := m.Jump(i); err != nil {
				return false, false, err
			}
			return true, false, nil
		}
	}
	return false, false, nil
}

// validRoles checks a role list against the roles the platform knows.
func validRoles(roles []string) error {
	for _, r := range roles {
		switch r {
		case session.RoleAdmin, session.RoleCurator, session.RoleAnalyst:
		default:
			return fmt.Errorf("unknown role %q, must be one of %s, %s, %s",
				r, session.RoleAdmin, session.RoleCurator, session.RoleAnalyst)
		}
	}
	return nil
}
