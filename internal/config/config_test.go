package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/agentscope/core/internal/models"
	"github.com/agentscope/core/internal/parser"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, "*", cfg.Server.CORSAllowedOrigin)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, 10, cfg.Analysis.TypeCodes.Topic)
	})
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  environment_url: "https://org.example"
logging:
  level: debug
analysis:
  edge_dedup: triple
  type_codes:
    topic: 12
    action: 7
    channel: [9001, 9002]
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "*", cfg.Server.CORSAllowedOrigin, "unset keys keep their defaults")
	assert.Equal(t, "https://org.example", cfg.Server.EnvironmentURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "triple", cfg.Analysis.EdgeDedup)
	assert.Equal(t, TypeCodesConfig{Topic: 12, Action: 7, Channel: []int{9001, 9002}}, cfg.Analysis.TypeCodes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AGENTSCOPE_ADDR", ":7070")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://app.example")
	t.Setenv("AGENTSCOPE_ENVIRONMENT_URL", "https://env.example")
	t.Setenv("AGENTSCOPE_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "server:\n  addr: \":9090\"\n"))

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "https://app.example", cfg.Server.CORSAllowedOrigin)
	assert.Equal(t, "https://env.example", cfg.Server.EnvironmentURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed yaml", body: "server: [", want: "failed to parse config"},
		{name: "unknown log level", body: "logging:\n  level: loud\n", want: "Config.Logging.Level: must be one of"},
		{name: "unknown dedup mode", body: "analysis:\n  edge_dedup: pairs\n", want: "Config.Analysis.EdgeDedup: must be one of"},
		{name: "negative topic code", body: "analysis:\n  type_codes:\n    topic: -1\n", want: "Config.Analysis.TypeCodes.Topic: must be at least 0"},
		{name: "zero channel code", body: "analysis:\n  type_codes:\n    channel: [0]\n", want: "Config.Analysis.TypeCodes.Channel[0]: must be at least 1"},
		{name: "empty addr", body: "server:\n  addr: \"\"\n", want: "Config.Server.Addr: field is required"},
		{name: "bad environment url", body: "server:\n  environment_url: not a url\n", want: "Config.Server.EnvironmentURL: must be a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestAnalyzerOptions(t *testing.T) {
	t.Run("options reach the analyzer", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Analysis.TypeCodes.Topic = 0
		cfg.Analysis.TypeCodes.Channel = []int{42}

		opts, err := cfg.AnalyzerOptions()
		require.NoError(t, err)

		classifier := parser.NewAnalyzer(opts...).Classifier()
		assert.Equal(t, parser.LabelUnknown, classifier.Classify(models.RawComponent{SchemaName: "cr1_bot.misc", ComponentType: 10}))
		assert.Equal(t, parser.LabelChannel, classifier.Classify(models.RawComponent{SchemaName: "cr1_bot.misc", ComponentType: 42}))
	})

	t.Run("invalid dedup mode", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Analysis.EdgeDedup = "pairs"

		_, err := cfg.AnalyzerOptions()
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger("loud")
	assert.ErrorContains(t, err, "invalid log level")
}
