package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_AppendCtxAttrsAppearInOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.String("correlationId", "abc-123"))
	l.InfoContext(ctx, "decoding sheet")

	assert.Contains(t, buf.String(), "abc-123")
	assert.Contains(t, buf.String(), "decoding sheet")
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Logger(&buf, false, slog.LevelWarn)
	l.InfoContext(context.Background(), "should be filtered")
	assert.Empty(t, buf.String())
}

func TestAppendCtx_MergesAcrossCalls(t *testing.T) {
	ctx := AppendCtx(context.Background(), slog.String("a", "1"))
	ctx = AppendCtx(ctx, slog.String("b", "2"))

	var buf bytes.Buffer
	l := Logger(&buf, true, slog.LevelInfo)
	l.InfoContext(ctx, "merged")

	out := buf.String()
	assert.Contains(t, out, `"a":"1"`)
	assert.Contains(t, out, `"b":"2"`)
}
