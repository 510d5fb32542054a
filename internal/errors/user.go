package errors

import "errors"

// hint is what the CLI and the dashboard show for a sentinel: a plain
// sentence and, when there is one, the next thing to try.
type hint struct {
	err     error
	message string
	action  string
}

// hints are tried in order with errors.Is; the first match wins.
//
//nolint:gochecknoglobals // fixed table
var hints = []hint{
	// requests
	{ErrEmptyBrief, "Please describe the project you want to generate.",
		"Pass a brief as an argument or type it in the prompt."},
	{ErrUnknownTemplate, "The project template is not supported.",
		"Use one of: fastapi, streamlit, flask, cli, library."},

	// backends
	{ErrMissingCredential, "No API key is configured for the cloud model.",
		"Check .env (OPENAI_API_KEY or GEMINI_API_KEY) and that Ollama is started."},
	{ErrUnknownProvider, "The configured cloud provider is not supported.",
		"Set cloud.provider to openai or gemini."},
	{ErrBackendUnavailable, "A model backend could not be reached.",
		"Check your network connection and that Ollama is started."},
	{ErrBackendResponse, "The model backend returned an error.",
		"Run 'luna check' to test each agent's connection."},
	{ErrEmptyCompletion, "The model returned an empty answer.",
		"Retry, or switch to a larger model."},

	// pipeline and tools
	{ErrContractViolation, "An agent finished without producing the files it was asked for.",
		"Retry with a more specific brief, or disable pipeline.enforce_contracts."},
	{ErrStageTimeout, "A pipeline stage took too long.",
		"Increase pipeline.stage_timeout or use a faster model."},
	{ErrMaxIterations, "An agent ran out of iterations before finishing.",
		"Raise agents.<role>.max_iterations in the configuration."},
	{ErrSyntaxInvalid, "Some files are not valid Python.",
		"Fix the reported line and run 'luna tools validate' again."},
	{ErrPathEscape, "A file path pointed outside the project directory.", ""},

	// dashboard
	{ErrRunNotFound, "That run does not exist or has expired.",
		"Start a new generation."},
	{ErrRunInProgress, "That run is still in progress.",
		"Wait for it to finish and refresh."},
	{ErrTooManyRuns, "Another generation is already running.",
		"Wait for it to finish or raise server.max_concurrent_runs."},
	{ErrArchiveDisabled, "Archive publishing is not configured.",
		"Set archive.s3.enabled and the bucket settings."},

	// configuration
	{ErrConfigInvalidCloud, "The cloud model configuration is invalid.",
		"Run 'luna config show' and fix the cloud section."},
	{ErrConfigInvalidLocal, "The local model configuration is invalid.",
		"Check OLLAMA_BASE_URL and the local section."},
	{ErrConfigInvalidPipeline, "The pipeline configuration is invalid.",
		"Run 'luna config show' and fix the pipeline section."},
	{ErrConfigInvalidServer, "The server configuration is invalid.",
		"Run 'luna config show' and fix the server section."},
	{ErrConfigInvalidArchive, "The archive configuration is invalid.",
		"Provide endpoint, bucket and credentials, or disable archive.s3."},

	// command line
	{ErrInvalidOutputFormat, "Invalid output format specified.",
		"Use --output text or --output json."},
	{ErrInvalidArgument, "An invalid argument was provided.",
		"Check the command help for valid arguments."},
	{ErrInteractiveRequired, "This command needs an interactive terminal.",
		"Pass the brief as an argument instead."},
	{ErrMenuCanceled, "Canceled.", ""},
}

func lookupHint(err error) (hint, bool) {
	for _, h := range hints {
		if errors.Is(err, h.err) {
			return h, true
		}
	}
	return hint{}, false
}

// UserMessage is the sentence shown to users for err. Unlisted errors are
// shown verbatim.
func UserMessage(err error) string {
	msg, _ := Actionable(err)
	return msg
}

// Actionable returns UserMessage(err) plus a suggested next step, which is
// empty when none is known.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	if h, ok := lookupHint(err); ok {
		return h.message, h.action
	}
	return err.Error(), ""
}
