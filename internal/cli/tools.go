package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lunacore/luna/internal/agent"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/present"
	"github.com/lunacore/luna/internal/tools"
	"github.com/lunacore/luna/internal/tui"
	"github.com/lunacore/luna/internal/workspace"
)

// validation is the outcome of checking one file.
type validation struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Line   int    `json:"line,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// AddToolsCommand adds the tools command group to the root command.
func AddToolsCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and run the agent tools",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the tools agents can call",
		Args:  cobra.NoArgs,
		RunE:  runToolsList,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file|run-dir>...",
		Short: "Check Python files with the validate_python_syntax tool",
		Long: `Validate parses each file with the same checker agents use. A directory
argument is treated as a run directory: every .py file inside it is checked.`,
		Example: `  luna tools validate generated_projects/calc_20260101_120000/main.py
  luna tools validate generated_projects/calc_20260101_120000
  luna -o json tools validate *.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: runToolsValidate,
	})

	root.AddCommand(cmd)
}

// toolSpecs returns the spec of every tool. The specs do not depend on a run
// or a backend.
func toolSpecs() []tools.Spec {
	return []tools.Spec{
		tools.NewWriteFile(nil).Spec(),
		tools.NewValidatePython().Spec(),
		tools.NewAskSupervisor(nil).Spec(),
	}
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	ec := executionContextFrom(cmd.Context())
	out := tui.NewOutput(cmd.OutOrStdout(), ec.Output)

	specs := toolSpecs()
	if ec.Output == OutputJSON {
		return out.JSON(specs)
	}

	owners := make(map[string][]domain.Role)
	for _, def := range agent.Definitions(ec.Config.Agents) {
		for _, name := range def.Tools {
			owners[name] = append(owners[name], def.Role)
		}
	}

	rows := make([][]string, 0, len(specs))
	for _, s := range specs {
		params := make([]string, 0, len(s.Parameters))
		for _, p := range s.Parameters {
			params = append(params, p.Name)
		}
		roles := make([]string, 0, len(owners[s.Name]))
		for _, r := range owners[s.Name] {
			roles = append(roles, r.String())
		}
		rows = append(rows, []string{s.Name, strings.Join(params, ", "), strings.Join(roles, ", "), s.Description})
	}
	out.Table([]string{"TOOL", "PARAMETERS", "AGENTS", "DESCRIPTION"}, rows)
	return nil
}

func runToolsValidate(cmd *cobra.Command, args []string) error {
	ec := executionContextFrom(cmd.Context())
	out := tui.NewOutput(cmd.OutOrStdout(), ec.Output)

	var sources []source
	for _, arg := range args {
		found, err := collectSources(arg)
		if err != nil {
			return err
		}
		sources = append(sources, found...)
	}

	results := make([]validation, 0, len(sources))
	failed := 0
	for _, src := range sources {
		v, err := validateSource(cmd, src)
		if err != nil {
			return err
		}
		if !v.Valid {
			failed++
		}
		results = append(results, v)
	}

	if ec.Output == OutputJSON {
		if err := out.JSON(results); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(results))
		for _, v := range results {
			status := tui.CheckStatusIcon(domain.AgentCheckSuccess) + " ok"
			line := ""
			if !v.Valid {
				status = tui.CheckStatusIcon(domain.AgentCheckFailed) + " error"
				line = strconv.Itoa(v.Line)
			}
			rows = append(rows, []string{v.File, status, line, v.Detail})
		}
		out.Table([]string{"FILE", "STATUS", "LINE", "DETAIL"}, rows)
	}

	if failed > 0 {
		return errors.Wrapf(errors.ErrSyntaxInvalid, "%d of %d files", failed, len(results))
	}
	return nil
}

// source is one Python file to check.
type source struct {
	file string
	code string
}

// collectSources reads path, or every .py file of the run directory at path.
func collectSources(path string) ([]source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !info.IsDir() {
		code, err := os.ReadFile(path) //nolint:gosec // G304: path is a user-supplied CLI argument
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return []source{{file: path, code: string(code)}}, nil
	}

	run, err := workspace.Open(path)
	if err != nil {
		return nil, err
	}
	files, err := run.Scan()
	if err != nil {
		return nil, err
	}
	var out []source
	for _, rel := range workspace.SortedPaths(files) {
		if present.PreviewLanguage(rel) == present.LangPython {
			out = append(out, source{file: filepath.Join(path, filepath.FromSlash(rel)), code: files[rel]})
		}
	}
	return out, nil
}

func validateSource(cmd *cobra.Command, src source) (validation, error) {
	v := validation{File: src.file, Valid: true}
	err := tools.CheckPython(cmd.Context(), src.code)
	var syntaxErr *tools.SyntaxError
	switch {
	case err == nil:
	case stderrors.As(err, &syntaxErr):
		v.Valid = false
		v.Line = syntaxErr.Line
		v.Detail = syntaxErr.Detail
	default:
		return validation{}, fmt.Errorf("parse %s: %w", src.file, err)
	}
	return v, nil
}
