package logging

import (
	"io"
	"os"
	"strings"
)

// Output formats supported by the logger.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config describes how to build a service logger.
type Config struct {
	// Level is the minimum severity to emit (debug, info, warn, error, fatal)
	Level string
	// Format selects the line encoding (json, text). Unknown values mean json.
	Format string
	// Output is the destination: stdout, stderr, or a file path
	Output string
}

// DefaultConfig returns the logging defaults: info-level JSON on stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: FormatJSON,
		Output: "stderr",
	}
}

// NewLogger builds a Logger from the configuration.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	l := New(parseLevel(cfg.Level), output)
	if strings.EqualFold(cfg.Format, FormatText) {
		l.text = true
	}
	return l, nil
}

// parseLevel maps a level name to its LogLevel; unknown names mean info.
func parseLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DebugLevel
	case "WARN":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "FATAL":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// openOutput resolves a destination name to a writer. Anything that is not
// stdout or stderr is opened as an append-only file.
func openOutput(output string) (io.Writer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	default:
		return os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	}
}
