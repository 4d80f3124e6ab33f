package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"finscreen/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDispatcherHandler_RoutesErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	log := slog.New(NewLevelDispatcherHandler(&out, &errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("feed fetched")
	log.Error("feed fetch failed", slog.Any("error", errors.New("boom")))

	assert.Contains(t, out.String(), "INFO: feed fetched")
	assert.NotContains(t, out.String(), "feed fetch failed")
	assert.Contains(t, errOut.String(), `ERROR: feed fetch failed | error="boom"`)
}

func TestReadableHandler_KeepsWithAttrs(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(NewReadableHandler(&out, nil)).With(
		slog.String("component", "pipeline"),
		slog.String("op", "usecase.GetSourceArticles"),
		slog.String("source_id", "42"),
	)

	log.Info("articles projected", slog.Int("count", 3))

	line := out.String()
	assert.Contains(t, line, "INFO [pipeline] (usecase.GetSourceArticles): articles projected")
	assert.Contains(t, line, "source_id=42, count=3")
}

func TestReadableHandler_Groups(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(NewReadableHandler(&out, nil)).WithGroup("http").With(slog.Int("status", 404))

	log.Info("request completed", slog.String("path", "/sources/x"))

	assert.Contains(t, out.String(), "http.status=404, http.path=/sources/x")
}

func TestReadableHandler_RespectsLevel(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(NewReadableHandler(&out, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "WARN: shown")
}

func TestShortenURL(t *testing.T) {
	assert.Equal(t, "https://example.com/rss", shortenURL("https://example.com/rss"))
	long := "https://feeds.example.com/markets/world/economy/latest/everything.xml"
	assert.Equal(t, "https://feeds.example.com/...", shortenURL(long))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestReadableHandler_AddSource(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(NewReadableHandler(&out, &slog.HandlerOptions{AddSource: true}))

	log.Info("with caller")

	assert.Regexp(t, `INFO <logger_test\.go:\d+>: with caller`, out.String())
}

func TestNew_WritesAndClosesLogFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LoggerConfig{
		Level:     "debug",
		File:      filepath.Join(dir, "app.log"),
		ErrorFile: filepath.Join(dir, "error.log"),
	}

	log, closer, err := New(cfg)
	require.NoError(t, err)
	log.Debug("store connected")
	log.Error("store lost", slog.Any("error", errors.New("eof")))
	require.NoError(t, closer.Close())

	appLog, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(appLog), "DEBUG")
	assert.Contains(t, string(appLog), "store connected")

	errorLog, err := os.ReadFile(cfg.ErrorFile)
	require.NoError(t, err)
	assert.Contains(t, string(errorLog), `store lost | error="eof"`)

	assert.Error(t, closer.(logFiles)[0].Close(), "file must already be closed")
}

func TestNew_StdStreamsAreNotClosed(t *testing.T) {
	_, closer, err := New(config.LoggerConfig{Level: "info"})
	require.NoError(t, err)

	assert.NoError(t, closer.Close())
	assert.Empty(t, closer.(logFiles))
}

func TestNew_UnwritableFile(t *testing.T) {
	_, _, err := New(config.LoggerConfig{File: filepath.Join(t.TempDir(), "missing", "app.log")})

	assert.Error(t, err)
}
