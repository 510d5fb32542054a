package constants

// Log file names.
const (
	// CLILogFileName is the name of the global log file.
	// This file is located in ~/.luna/logs/luna.log
	CLILogFileName = "luna.log"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global configuration file.
	// This file is located in the luna home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the project-local configuration directory.
	ProjectConfigDir = ".luna"

	// EnvFileName is the dotenv file loaded before configuration.
	EnvFileName = ".env"
)

// Environment variables read directly rather than through the LUNA_ prefix.
const (
	// EnvOpenAIKey holds the OpenAI API key.
	EnvOpenAIKey = "OPENAI_API_KEY"

	// EnvGeminiKey holds the Gemini API key.
	EnvGeminiKey = "GEMINI_API_KEY"

	// EnvOllamaBaseURL overrides the local backend base URL.
	EnvOllamaBaseURL = "OLLAMA_BASE_URL"

	// EnvLunaHome overrides the luna home directory.
	EnvLunaHome = "LUNA_HOME"
)
