package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lunacore/luna/internal/archive"
	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/crew"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/logging"
	"github.com/lunacore/luna/internal/metrics"
	"github.com/lunacore/luna/internal/present"
	"github.com/lunacore/luna/internal/signal"
	"github.com/lunacore/luna/internal/tui"
)

// progressBarWidth is the width of the stage bar shown by the spinner.
const progressBarWidth = 20

type generateOptions struct {
	template  string
	name      string
	zipPath   string
	showFiles bool
}

// generateReport is the JSON shape of a generate run.
type generateReport struct {
	*domain.Result

	FilePaths []string             `json:"file_paths"`
	Agents    []metrics.AgentStats `json:"agents"`
	ZipPath   string               `json:"zip_path,omitempty"`
}

// AddGenerateCommand adds the generate command to the root command.
func AddGenerateCommand(root *cobra.Command) {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [brief]",
		Short: "Generate a Python project from a brief",
		Long: `Generate runs the planner, developer and tester agents on a brief and
writes the project to a new directory under the output folder.

Without a brief on an interactive terminal, luna asks for one and offers a
few example briefs to start from.`,
		Example: `  luna generate "A CLI that converts CSV files to JSON"
  luna generate -t fastapi --name todo-api "A todo list REST API"
  luna generate --zip ./out "A Streamlit dashboard for sales data"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", fmt.Sprintf("project template (%s)", templateList()))
	cmd.Flags().StringVar(&opts.name, "name", "", "project name (derived from the brief when empty)")
	cmd.Flags().StringVar(&opts.zipPath, "zip", "", "also write the project as a ZIP archive to this file or directory")
	cmd.Flags().BoolVar(&opts.showFiles, "show-files", false, "print the content of the first generated files")

	root.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string, opts *generateOptions) error {
	ec := executionContextFrom(cmd.Context())
	w := cmd.OutOrStdout()
	out := tui.NewOutput(w, ec.Output)

	req, err := buildRequest(cmd, args, opts, ec.Output)
	if stderrors.Is(err, errors.ErrMenuCanceled) {
		out.Info("Canceled.")
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := crew.Validate(req); err != nil {
		return err
	}
	if err := config.Validate(ec.Config); err != nil {
		return err
	}

	sig := signal.NewHandler(cmd.Context())
	defer sig.Stop()
	ctx := sig.Context()

	collector := metrics.NewCollector(prometheus.NewRegistry())
	orch, err := newOrchestrator(ctx, ec.Config, ec.Logger, crew.WithRecorder(collector))
	if err != nil {
		return err
	}

	stopProgress := func() {}
	if ec.Output == OutputText && tui.IsInteractive() {
		stopProgress = followProgress(ec.Activity, out.Spinner(ctx, "Starting agents"))
	}
	result, genErr := orch.GenerateProject(ctx, req)
	stopProgress()

	if result == nil {
		return genErr
	}

	select {
	case <-sig.Interrupted():
		out.Warning(fmt.Sprintf("Stopped by %s. Partial output kept in %s", sig.Signal(), result.OutputDirectory))
	default:
	}

	report := generateReport{
		Result:    result,
		FilePaths: slices.Sorted(maps.Keys(result.Files)),
		Agents:    collector.Snapshot(),
	}
	if opts.zipPath != "" && result.Succeeded() {
		path, zipErr := writeZip(opts.zipPath, result)
		if zipErr != nil {
			return zipErr
		}
		report.ZipPath = path
	}

	if ec.Output == OutputJSON {
		view := *result
		if !opts.showFiles {
			view.Files = nil
		}
		report.Result = &view
		if err := out.JSON(report); err != nil {
			return err
		}
		return genErr
	}

	renderGenerate(w, out, report, opts.showFiles)
	return genErr
}

// buildRequest joins the positional arguments into the brief. An empty
// brief on an interactive terminal starts the prompt; flags given on the
// command line win over prompt answers.
func buildRequest(cmd *cobra.Command, args []string, opts *generateOptions, format string) (crew.Request, error) {
	req := crew.Request{
		Brief:       strings.TrimSpace(strings.Join(args, " ")),
		Template:    opts.template,
		ProjectName: opts.name,
	}
	if req.Brief != "" || format != OutputText || !tui.IsInteractive() {
		return req, nil
	}

	answers, err := tui.PromptBrief(present.Presets())
	if err != nil {
		return req, err
	}
	req.Brief = answers.Brief
	if !cmd.Flags().Changed("template") {
		req.Template = string(answers.Template)
	}
	if !cmd.Flags().Changed("name") && answers.ProjectName != "" {
		req.ProjectName = answers.ProjectName
	}
	return req, nil
}

// followProgress mirrors activity entries into the spinner until the
// returned function is called.
func followProgress(activity *logging.ActivityLog, sp tui.Spinner) func() {
	entries, unsubscribe := activity.Subscribe(64)
	bar := tui.NewProgressBar(progressBarWidth)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range entries {
			if stage, ok := startedStage(e.Message); ok {
				sp.Update(tui.StageLine(bar, stage))
				continue
			}
			if e.Category == logging.CategoryTool || e.Level == logging.LevelWarning {
				sp.Update(e.Message)
			}
		}
	}()

	return func() {
		unsubscribe()
		<-done
		sp.Stop()
	}
}

// startedStage recognizes the pipeline's "<stage> stage started" messages.
func startedStage(msg string) (domain.Stage, bool) {
	for _, s := range []domain.Stage{domain.StagePlanning, domain.StageImplementing, domain.StageTesting} {
		if strings.HasPrefix(msg, string(s)+" stage started") {
			return s, true
		}
	}
	return "", false
}

// writeZip writes the archive of result to target. A directory target gets
// the default archive file name.
func writeZip(target string, result *domain.Result) (string, error) {
	data, err := archive.BuildZip(result.Files)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(target); (statErr == nil && info.IsDir()) || strings.HasSuffix(target, string(os.PathSeparator)) {
		if err := os.MkdirAll(target, 0o750); err != nil {
			return "", errors.Wrap(err, "failed to create archive directory")
		}
		target = filepath.Join(target, archive.FileName(result.ProjectName))
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write archive")
	}
	return target, nil
}

func renderGenerate(w io.Writer, out tui.Output, report generateReport, showFiles bool) {
	result := report.Result
	if result.Succeeded() {
		out.Success(fmt.Sprintf("Generated %s in %s", result.ProjectName, tui.FormatSeconds(result.ExecutionTime)))
	} else {
		out.Warning(fmt.Sprintf("Run %s failed after %s", result.RunID, tui.FormatSeconds(result.ExecutionTime)))
	}

	summary := []string{
		"Run ID:     " + result.RunID,
		"Template:   " + result.Template.DisplayName(),
		"Directory:  " + result.OutputDirectory,
		fmt.Sprintf("Agents:     %d agents, %d tasks", result.AgentsCount, result.TasksCount),
	}
	if result.Routing != nil {
		summary = append(summary, fmt.Sprintf("Routing:    %s (score %d)", result.Routing.Complexity, result.Routing.Score))
	}
	_, _ = fmt.Fprintln(w, tui.NewBoxStyle().Render(result.ProjectName, strings.Join(summary, "\n")))

	if len(result.Stages) > 0 {
		out.Table(
			[]string{"STAGE", "AGENT", "BACKEND", "STATUS", "DURATION", "LLM CALLS", "TOOL CALLS", "FILES"},
			stageRows(result.Stages, report.Agents),
		)
	}

	if !result.Succeeded() {
		return
	}

	rows := make([][]string, 0, len(report.FilePaths))
	for _, p := range report.FilePaths {
		rows = append(rows, []string{p, string(present.PreviewLanguage(p)), strconv.Itoa(len(result.Files[p]))})
	}
	out.Table([]string{"FILE", "LANGUAGE", "BYTES"}, rows)

	if showFiles {
		for _, p := range present.Previews(result.Files, report.FilePaths, present.PreviewLimit) {
			_, _ = fmt.Fprintln(w, tui.RenderMarkdown(fmt.Sprintf("### %s\n\n```%s\n%s\n```\n", p.Path, p.Language, p.Content)))
		}
	}

	if report.ZipPath != "" {
		out.Success("Archive written to " + report.ZipPath)
	}
	if result.ArchiveURL != "" {
		out.URL(result.ArchiveURL, "Download archive")
	}
	_, _ = fmt.Fprintln(w, tui.RenderMarkdown(present.DeployInstructions(result.Template, result.ProjectName)))
}

func stageRows(stages []domain.StageReport, agents []metrics.AgentStats) [][]string {
	calls := make(map[string]int, len(agents))
	for _, a := range agents {
		calls[a.Role] = a.LLMCalls
	}
	rows := make([][]string, 0, len(stages))
	for _, s := range stages {
		rows = append(rows, []string{
			string(s.Stage),
			s.Role.String(),
			string(s.Backend),
			tui.RunStatusIcon(s.Status) + " " + string(s.Status),
			tui.FormatSeconds(s.Duration),
			strconv.Itoa(calls[s.Role.String()]),
			strconv.Itoa(s.ToolCalls),
			strconv.Itoa(len(s.FilesWritten)),
		})
	}
	return rows
}

func templateList() string {
	names := make([]string, 0, len(domain.Templates()))
	for _, t := range domain.Templates() {
		names = append(names, string(t))
	}
	return strings.Join(names, "|")
}
