// Package config resolves the CLI's runtime settings from, in
// priority order, command-line flags, environment variables, and
// built-in defaults (SPEC_FULL.md §9.3).
package config

import (
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved settings a decode/render invocation reads.
type Config struct {
	DebugDir     string
	LogLevel     slog.Level
	NumQuestions int
	NumChoices   int
}

const (
	defaultNumQuestions = 20
	defaultNumChoices   = 4
	defaultLogLevel     = "INFO"
)

// BindLogLevel registers the --log-level flag every subcommand's
// PersistentPreRun reads to set up slog.
func BindLogLevel(fs *pflag.FlagSet) {
	fs.String("log-level", defaultLogLevel, "log level (DEBUG, INFO, WARN, ERROR)")
}

// BindDebug registers BindLogLevel plus --debug-dir, for subcommands
// that actually dump intermediate planes (decode).
func BindDebug(fs *pflag.FlagSet) {
	fs.String("debug-dir", "", "directory to dump intermediate decode planes into (overrides DEBUG_DIR)")
	BindLogLevel(fs)
}

// BindQuestions registers the decode-shaped --questions/--choices
// flags (spec.md §6's literal decode CLI surface).
func BindQuestions(fs *pflag.FlagSet) {
	fs.Int("questions", defaultNumQuestions, "number of questions on the template (20, 50, 100)")
	fs.Int("choices", defaultNumChoices, "number of answer choices per question")
}

// Bind registers every flag config resolves: BindDebug + BindQuestions.
func Bind(fs *pflag.FlagSet) {
	BindDebug(fs)
	BindQuestions(fs)
}

// Load resolves a Config from fs (already parsed) layered over
// environment variables and defaults, via viper.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}
	v.BindEnv("debug-dir", "DEBUG_DIR")

	v.SetDefault("debug-dir", "")
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("questions", defaultNumQuestions)
	v.SetDefault("choices", defaultNumChoices)

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(v.GetString("log-level")))); err != nil {
		level = slog.LevelInfo
	}

	return Config{
		DebugDir:     v.GetString("debug-dir"),
		LogLevel:     level,
		NumQuestions: v.GetInt("questions"),
		NumChoices:   v.GetInt("choices"),
	}, nil
}
