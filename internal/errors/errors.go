// Package errors provides centralized error handling for luna.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrEmptyBrief indicates that a generation request had no brief text.
	ErrEmptyBrief = errors.New("brief cannot be empty")

	// ErrUnknownTemplate indicates that a template tag is outside the supported set.
	ErrUnknownTemplate = errors.New("unknown project template")

	// ErrMissingCredential indicates that a required API key is absent or still a placeholder.
	ErrMissingCredential = errors.New("missing model credential")

	// ErrUnknownProvider indicates an unsupported cloud provider name.
	ErrUnknownProvider = errors.New("unknown model provider")

	// ErrBackendUnavailable indicates that a model backend could not be reached.
	ErrBackendUnavailable = errors.New("model backend unavailable")

	// ErrBackendResponse indicates that a model backend answered with an error
	// status or an unusable body.
	ErrBackendResponse = errors.New("model backend returned an invalid response")

	// ErrEmptyCompletion indicates that the model produced no text.
	ErrEmptyCompletion = errors.New("model returned an empty completion")

	// ErrPathEscape indicates a tool tried to write outside the run directory.
	ErrPathEscape = errors.New("path escapes the run directory")

	// ErrInvalidPath indicates an empty or otherwise unusable file name.
	ErrInvalidPath = errors.New("invalid file path")

	// ErrToolNotFound indicates the model requested a tool the agent does not have.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidToolInput indicates tool arguments could not be decoded.
	ErrInvalidToolInput = errors.New("invalid tool input")

	// ErrMaxIterations indicates an agent hit its iteration cap without a final answer.
	ErrMaxIterations = errors.New("agent reached max iterations")

	// ErrContractViolation indicates a stage finished without producing its
	// required artifacts.
	ErrContractViolation = errors.New("stage contract violated")

	// ErrStageTimeout indicates a pipeline stage exceeded its deadline.
	ErrStageTimeout = errors.New("stage timed out")

	// ErrSyntaxInvalid indicates a Python file failed the syntax check.
	ErrSyntaxInvalid = errors.New("python syntax check failed")

	// ErrRunNotFound indicates that no run exists for the given identifier.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunInProgress indicates that a run has not finished yet.
	ErrRunInProgress = errors.New("run still in progress")

	// ErrTooManyRuns indicates the server is already at its concurrent run limit.
	ErrTooManyRuns = errors.New("too many concurrent runs")

	// ErrArchiveDisabled indicates object storage publishing is not configured.
	ErrArchiveDisabled = errors.New("archive publishing disabled")

	// ErrPanicRecovered indicates a guarded call panicked.
	ErrPanicRecovered = errors.New("recovered from panic")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidCloud indicates an invalid cloud backend configuration value.
	ErrConfigInvalidCloud = errors.New("invalid cloud configuration")

	// ErrConfigInvalidLocal indicates an invalid local backend configuration value.
	ErrConfigInvalidLocal = errors.New("invalid local configuration")

	// ErrConfigInvalidPipeline indicates an invalid pipeline configuration value.
	ErrConfigInvalidPipeline = errors.New("invalid pipeline configuration")

	// ErrConfigInvalidServer indicates an invalid server configuration value.
	ErrConfigInvalidServer = errors.New("invalid server configuration")

	// ErrConfigInvalidArchive indicates an invalid archive configuration value.
	ErrConfigInvalidArchive = errors.New("invalid archive configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidArgument indicates an invalid command-line argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMenuCanceled indicates the user canceled an interactive prompt.
	ErrMenuCanceled = errors.New("menu canceled")

	// ErrInteractiveRequired indicates that interactive prompts are required but not available.
	ErrInteractiveRequired = errors.New("interactive prompt required")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
