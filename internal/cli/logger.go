package cli

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/constants"
	"github.com/lunacore/luna/internal/logging"
)

//nolint:gochecknoglobals // one log file per process
var (
	logFileMu sync.Mutex
	logFile   io.Closer
)

// InitLogger builds the process logger and installs it as zerolog's global.
//
// -v selects debug, -q selects warn, info otherwise. Events go to stderr
// (pretty on a color terminal, JSON elsewhere) and to a rotating, redacted
// file under LUNA_HOME/logs. Categorized events are also appended to
// activity. Without a writable log directory only stderr is used.
func InitLogger(verbose, quiet bool, activity *logging.ActivityLog) zerolog.Logger {
	var sink io.Writer = stderrSink()
	if file, err := openLogFile(); err == nil {
		logFileMu.Lock()
		logFile = file
		logFileMu.Unlock()
		sink = zerolog.MultiLevelWriter(sink, file)
	}
	return InitLoggerWithWriter(verbose, quiet, sink, activity)
}

// InitLoggerWithWriter is InitLogger with a caller-supplied sink.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer, activity *logging.ActivityLog) zerolog.Logger {
	if activity != nil {
		w = logging.NewActivityWriter(activity, w)
	}
	logger := zerolog.New(w).
		Level(selectLevel(verbose, quiet)).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().Logger()

	logFileMu.Lock()
	log.Logger = logger
	logFileMu.Unlock()
	return logger
}

// CloseLogFile flushes and closes the log file opened by InitLogger.
func CloseLogFile() {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func selectLevel(verbose, quiet bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	if quiet {
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

func stderrSink() io.Writer {
	colorTTY := term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" //nolint:gosec // fd fits in int
	if !colorTTY {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
}

// redactedFile is the rotating log file with credentials filtered out.
type redactedFile struct {
	*logging.FilteringWriter
	rotator *lumberjack.Logger
}

func (f redactedFile) Close() error { return f.rotator.Close() }

func openLogFile() (io.WriteCloser, error) {
	path, err := config.LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
	return redactedFile{FilteringWriter: logging.NewFilteringWriter(rotator), rotator: rotator}, nil
}
