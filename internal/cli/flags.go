package cli

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lunacore/luna/internal/errors"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitInvalidInput = 2
)

// Output formats selected with -o.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// GlobalFlags holds the persistent flags of the root command.
type GlobalFlags struct {
	Output  string
	Verbose bool
	Quiet   bool
}

// globalFlagNames are bound to LUNA_OUTPUT, LUNA_VERBOSE and LUNA_QUIET.
var globalFlagNames = []string{"output", "verbose", "quiet"} //nolint:gochecknoglobals // fixed list

// inputErrors are the sentinels that map to ExitInvalidInput.
var inputErrors = []error{ //nolint:gochecknoglobals // fixed list
	errors.ErrInvalidOutputFormat,
	errors.ErrInvalidArgument,
	errors.ErrEmptyBrief,
	errors.ErrUnknownTemplate,
}

// cobraUsageErrors are fragments of the errors cobra and pflag return for
// bad flags or arguments. They carry no sentinel.
var cobraUsageErrors = []string{ //nolint:gochecknoglobals // fixed list
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"required flag",
	"unknown command",
	"accepts ",
	"requires at least",
}

// AddGlobalFlags registers -o, -v and -q on cmd.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "show debug logs")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "only show warnings and errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags lets LUNA_* environment variables stand in for the
// global flags.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	for _, name := range globalFlagNames {
		if err := v.BindPFlag(name, pf.Lookup(name)); err != nil {
			return err
		}
	}
	v.SetEnvPrefix("LUNA")
	v.AutomaticEnv()
	return nil
}

// ValidOutputFormats lists the accepted -o values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat reports whether format is accepted by -o.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// ExitCodeForError maps err to the process exit code: 0 for nil, 2 for bad
// input (flags, arguments, an empty brief, an unknown template) and 1 for
// everything else.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.IsExitCode2Error(err):
		return ExitInvalidInput
	case slices.ContainsFunc(inputErrors, func(target error) bool { return stderrors.Is(err, target) }):
		return ExitInvalidInput
	case isCobraUsageError(err.Error()):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

func isCobraUsageError(msg string) bool {
	return slices.ContainsFunc(cobraUsageErrors, func(fragment string) bool {
		return strings.Contains(msg, fragment)
	})
}
