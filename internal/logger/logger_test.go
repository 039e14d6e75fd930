package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew_Level(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New(&bytes.Buffer{}, "debug").GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New(&bytes.Buffer{}, "WARN").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(&bytes.Buffer{}, "loud").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(&bytes.Buffer{}, "").GetLevel())
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug")
	ctx := WithLogger(l.WithContext(context.Background()), map[string]interface{}{"project": "Acme"})

	DebugLog(ctx, "rendering %s", "ORDERS")
	WarnLog(ctx, "unknown lock value %q", "frozen")
	ErrorErr(ctx, errors.New("boom"), "encrypt failed")
	ErrorLog(ctx, "%d file(s) left unencrypted", 2)

	got := lines(t, &buf)
	require.Len(t, got, 4)
	assert.Equal(t, "rendering ORDERS", got[0]["message"])
	assert.Equal(t, "Acme", got[0]["project"])
	assert.Equal(t, "warn", got[1]["level"])
	assert.Equal(t, "boom", got[2]["error"])
	assert.Equal(t, "encrypt failed", got[2]["message"])
	assert.Equal(t, "2 file(s) left unencrypted", got[3]["message"])
	assert.NotContains(t, got[3], "error")
}
