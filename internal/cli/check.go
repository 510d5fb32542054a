package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/tui"
)

// maxDetailWidth bounds the reply or error column of the check table.
const maxDetailWidth = 60

// AddCheckCommand adds the check command to the root command.
func AddCheckCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Test the model connection of every agent",
		Long: `Check sends a short prompt to the default backend of each agent and
reports whether it answered. It fails when any agent did not answer.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
	root.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ec := executionContextFrom(cmd.Context())
	w := cmd.OutOrStdout()
	out := tui.NewOutput(w, ec.Output)

	if err := config.Validate(ec.Config); err != nil {
		return err
	}
	orch, err := newOrchestrator(cmd.Context(), ec.Config, ec.Logger)
	if err != nil {
		return err
	}

	var sp tui.Spinner = &tui.NoopSpinner{}
	if tui.IsInteractive() {
		sp = out.Spinner(cmd.Context(), "Testing agents")
	}
	report := orch.TestAgents(cmd.Context())
	sp.Stop()

	if ec.Output == OutputJSON {
		if err := out.JSON(report); err != nil {
			return err
		}
	} else {
		renderCheck(w, out, report)
	}

	if !report.OK() {
		failed := 0
		for _, c := range report.AgentTests {
			if c.Status != domain.AgentCheckSuccess {
				failed++
			}
		}
		return errors.Wrapf(errors.ErrBackendUnavailable, "%d of %d agents failed the check", failed, report.AgentsCount)
	}
	return nil
}

func renderCheck(w io.Writer, out tui.Output, report domain.HealthReport) {
	local := "disabled or unreachable"
	if report.Backend.LocalAvailable {
		local = report.Backend.LocalModel
	}
	_, _ = fmt.Fprintln(w, tui.NewBoxStyle().Render("Backends",
		"Cloud:  "+report.Backend.CloudModel+"\nLocal:  "+local))

	rows := make([][]string, 0, len(report.AgentTests))
	for _, role := range domain.Roles() {
		c, ok := report.AgentTests[role]
		if !ok {
			continue
		}
		detail := c.Reply
		if c.Error != "" {
			detail = c.Error
		}
		rows = append(rows, []string{
			role.String(),
			string(c.Backend),
			c.Model,
			tui.CheckStatusIcon(c.Status) + " " + c.Status,
			tui.FormatSeconds(c.Duration),
			truncate(detail, maxDetailWidth),
		})
	}
	out.Table([]string{"AGENT", "BACKEND", "MODEL", "STATUS", "DURATION", "DETAIL"}, rows)

	if report.OK() {
		out.Success(strconv.Itoa(report.AgentsCount) + " agents answered")
	}
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
