package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	log := New("debug", FormatJSON)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log = New("", FormatConsole)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	assert.Contains(t, buf.String(), "test message")
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	FromContext(ctx).Info().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_Default(t *testing.T) {
	buf := &bytes.Buffer{}
	SetDefault(NewWithWriter(buf))
	t.Cleanup(func() { SetDefault(zerolog.Nop()) })

	FromContext(context.Background()).Info().Msg("fallback")

	assert.Contains(t, buf.String(), "fallback")
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"split_id": 42,
		"action":   "settle",
	})

	log.Info().Msg("test message")

	output := buf.String()
	assert.Contains(t, output, `"split_id":42`)
	assert.Contains(t, output, `"action":"settle"`)
}
