package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "kingdavid/internal/log"
)

type entry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	TS     string         `json:"ts"`
	Err    string         `json:"err"`
	Audit  bool           `json:"audit"`
	Fields map[string]any `json:"fields"`
}

func capture(t *testing.T, fn func()) []entry {
	t.Helper()
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	defer applog.SetOutput(os.Stdout)
	fn()

	var out []entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e entry
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		out = append(out, e)
	}
	return out
}

func TestLevelsAndFields(t *testing.T) {
	entries := capture(t, func() {
		applog.Info(nil, "catalog.reload", map[string]any{"count": 3})
		applog.Audit(nil, "admin.catalog.delete", map[string]any{"id": "x1"})
		applog.Security(nil, "validation.fail", map[string]any{"field": "status"})
		applog.Error(nil, "admin.catalog.save.fail", errors.New("boom"), nil)
	})
	require.Len(t, entries, 4)

	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "catalog.reload", entries[0].Action)
	assert.EqualValues(t, 3, entries[0].Fields["count"])
	assert.NotEmpty(t, entries[0].TS)

	assert.Equal(t, "info", entries[1].Level)
	assert.True(t, entries[1].Audit)

	assert.Equal(t, "warn", entries[2].Level)

	assert.Equal(t, "error", entries[3].Level)
	assert.Equal(t, "boom", entries[3].Err)
	assert.Nil(t, entries[3].Fields)
}
