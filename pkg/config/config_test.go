package config

import (
	"log/slog"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNothingSet(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Bind(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, defaultNumQuestions, cfg.NumQuestions)
	assert.Equal(t, defaultNumChoices, cfg.NumChoices)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "", cfg.DebugDir)
}

func TestLoad_FlagOverridesDefault(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Bind(fs)
	require.NoError(t, fs.Parse([]string{"--questions=100", "--log-level=DEBUG"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.NumQuestions)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_EnvOverridesDefaultForDebugDir(t *testing.T) {
	t.Setenv("DEBUG_DIR", "/tmp/omr-debug")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Bind(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/omr-debug", cfg.DebugDir)
}

func TestLoad_BindDebugAloneOmitsQuestionFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindDebug(fs)
	require.NoError(t, fs.Parse([]string{"--log-level=WARN"}))

	assert.Nil(t, fs.Lookup("questions"))
	assert.Nil(t, fs.Lookup("choices"))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, defaultNumQuestions, cfg.NumQuestions) // falls back to viper default, no flag bound
}
