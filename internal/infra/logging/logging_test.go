//go:build !integration

package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithTraceID(context.Background(), "01HX")
	ctx = WithTgID(ctx, 42)
	ctx = WithCommand(ctx, "redeem")
	With(ctx, &base).Info().Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"trace_id":"01HX"`)
	assert.Contains(t, out, `"tg_id":42`)
	assert.Contains(t, out, `"command":"redeem"`)
	assert.Equal(t, "01HX", TraceID(ctx))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "***", Redact("short", false))
	assert.Equal(t, "1234...yz", Redact("1234567890:abcxyz", false))
	assert.Equal(t, "plain", Redact("plain", true))
}
