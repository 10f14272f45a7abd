package Logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("warn", &buf)

	L.Info("hidden")
	L.Warn("Orphaned ledger entry", "vendor", "transport#4")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "transport#4", record["vendor"])
}

func TestInitWithWriterInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("loud", &buf)
	assert.Contains(t, buf.String(), "Invalid LOG_LEVEL")
	assert.Contains(t, buf.String(), "Logger initialized")
}
