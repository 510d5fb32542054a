package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/router"
	"github.com/lunacore/luna/internal/tui"
)

// AddRouteCommand adds the route command to the root command.
func AddRouteCommand(root *cobra.Command) {
	var probe bool

	cmd := &cobra.Command{
		Use:   "route <brief>",
		Short: "Show how a brief would be routed between backends",
		Long: `Route scores the complexity of a brief and shows which backend each agent
would use. Nothing is generated.

By default the local backend is assumed available when it is enabled in the
configuration. With --probe, luna connects to the backends first.`,
		Example: `  luna route "A CLI that renames photos by date"
  luna route --probe "A microservice API with OAuth2, Redis and Celery"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(cmd, strings.Join(args, " "), probe)
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "connect to the model backends to check local availability")
	root.AddCommand(cmd)
}

func runRoute(cmd *cobra.Command, brief string, probe bool) error {
	ec := executionContextFrom(cmd.Context())
	w := cmd.OutOrStdout()
	out := tui.NewOutput(w, ec.Output)

	brief = strings.TrimSpace(brief)
	if brief == "" {
		return errors.ErrEmptyBrief
	}

	var decision domain.RoutingDecision
	if probe {
		orch, err := newOrchestrator(cmd.Context(), ec.Config, ec.Logger)
		if err != nil {
			return err
		}
		decision = orch.Route(brief)
	} else {
		decision = router.New(ec.Config.Routing, ec.Logger).Decide(brief, ec.Config.Local.Enabled)
	}

	if ec.Output == OutputJSON {
		return out.JSON(decision)
	}

	signals := "none"
	if len(decision.Signals) > 0 {
		signals = strings.Join(decision.Signals, ", ")
	}
	_, _ = fmt.Fprintln(w, tui.NewBoxStyle().Render("Routing", strings.Join([]string{
		"Complexity:  " + string(decision.Complexity),
		"Score:       " + strconv.Itoa(decision.Score),
		"Signals:     " + signals,
		"Reason:      " + decision.Reason,
	}, "\n")))

	rows := make([][]string, 0, len(decision.Assignments))
	for _, role := range domain.Roles() {
		if kind, ok := decision.Assignments[role]; ok {
			rows = append(rows, []string{role.String(), string(kind)})
		}
	}
	out.Table([]string{"AGENT", "BACKEND"}, rows)
	return nil
}
