package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/tui"
)

// configView is what config show prints: the effective configuration,
// where it came from and which credentials are present. Secret values are
// never included.
type configView struct {
	Config      map[string]any `json:"config" yaml:"config"`
	Files       []configFile   `json:"files" yaml:"files"`
	Credentials []credential   `json:"credentials" yaml:"credentials"`
}

type configFile struct {
	Scope  string `json:"scope" yaml:"scope"`
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
}

type credential struct {
	Name string `json:"name" yaml:"name"`
	Env  string `json:"env" yaml:"env"`
	Set  bool   `json:"set" yaml:"set"`
}

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect luna configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Show prints the configuration after merging defaults, config files and
LUNA_* environment variables. API keys are never printed; only whether the
variable that holds each one is set.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	})

	root.AddCommand(cmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	ec := executionContextFrom(cmd.Context())
	w := cmd.OutOrStdout()
	out := tui.NewOutput(w, ec.Output)

	data, err := yaml.Marshal(ec.Config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	view := buildConfigView(ec.Config)
	if ec.Output == OutputJSON {
		// Decoding the YAML keeps the snake_case keys and readable durations.
		if err := yaml.Unmarshal(data, &view.Config); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		return out.JSON(view)
	}

	_, _ = fmt.Fprint(w, string(data))
	_, _ = fmt.Fprintln(w)

	rows := make([][]string, 0, len(view.Files))
	for _, f := range view.Files {
		rows = append(rows, []string{f.Scope, f.Path, presence(f.Exists, "found", "missing")})
	}
	out.Table([]string{"SCOPE", "FILE", "STATUS"}, rows)

	rows = rows[:0]
	for _, c := range view.Credentials {
		rows = append(rows, []string{c.Name, c.Env, presence(c.Set, "set", "not set")})
	}
	out.Table([]string{"CREDENTIAL", "ENV", "STATUS"}, rows)

	if err := config.Validate(ec.Config); err != nil {
		out.Warning(err.Error())
	}
	return nil
}

func buildConfigView(cfg *config.Config) configView {
	var view configView

	if global, err := config.GlobalConfigPath(); err == nil {
		view.Files = append(view.Files, configFile{Scope: "global", Path: global, Exists: fileExists(global)})
	}
	project := config.ProjectConfigPath()
	view.Files = append(view.Files, configFile{Scope: "project", Path: project, Exists: fileExists(project)})

	view.Credentials = append(view.Credentials, credential{
		Name: "cloud api key",
		Env:  cfg.Cloud.APIKeyEnv,
		Set:  cfg.Cloud.APIKey() != "",
	})
	if cfg.Archive.S3.Enabled {
		access, secret := cfg.Archive.S3.Credentials()
		view.Credentials = append(view.Credentials,
			credential{Name: "s3 access key", Env: cfg.Archive.S3.AccessKeyEnv, Set: access != ""},
			credential{Name: "s3 secret key", Env: cfg.Archive.S3.SecretKeyEnv, Set: secret != ""},
		)
	}
	return view
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func presence(ok bool, yes, no string) string {
	if ok {
		return tui.CheckStatusIcon(domain.AgentCheckSuccess) + " " + yes
	}
	return tui.CheckStatusIcon(domain.AgentCheckFailed) + " " + no
}
