package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
database:
  path: %s
backup:
  storage_path: %s
  retention_days: 7
exports:
  path: %s
`, filepath.Join(dir, "shareit.db"), filepath.Join(dir, "backups"), filepath.Join(dir, "exports"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path, dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSeedExportQueueBackup(t *testing.T) {
	configPath, dir := writeConfig(t)
	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(`
users:
  - name: Ann
    email: ann@example.com
items:
  - name: Drill
    description: Cordless drill
    owner: ann@example.com
`), 0o600))

	out, err := execute(t, "-c", configPath, "seed", seedPath)
	require.NoError(t, err)
	var seeded map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	assert.Equal(t, map[string]int{"users": 1, "items": 1}, seeded)

	out, err = execute(t, "-c", configPath, "-o", "table", "seed", seedPath)
	require.NoError(t, err)
	assert.Equal(t, "Seeded 0 user(s) and 0 item(s)\n", out)

	out, err = execute(t, "-c", configPath, "export", "1")
	require.NoError(t, err)
	var exported struct {
		Path     string `json:"path"`
		Bookings int    `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Equal(t, 0, exported.Bookings)
	assert.True(t, strings.HasPrefix(exported.Path, filepath.Join(dir, "exports")))
	assert.FileExists(t, exported.Path)

	out, err = execute(t, "-c", configPath, "queue")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	out, err = execute(t, "-c", configPath, "-o", "table", "queue")
	require.NoError(t, err)
	assert.Equal(t, "No failed notifications.\n", out)

	out, err = execute(t, "-c", configPath, "backup")
	require.NoError(t, err)
	var backup struct {
		Path    string `json:"path"`
		Removed int    `json:"removed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &backup))
	assert.FileExists(t, backup.Path)
	assert.Equal(t, 0, backup.Removed)
}

func TestExport_InvalidArgs(t *testing.T) {
	configPath, _ := writeConfig(t)

	_, err := execute(t, "-c", configPath, "export", "abc")
	assert.Error(t, err)

	_, err = execute(t, "-c", configPath, "export", "1", "--state", "SOMETIMES")
	assert.Error(t, err)

	_, err = execute(t, "-c", configPath, "export")
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "queue")
	assert.Error(t, err)
}

func TestResolveOutput(t *testing.T) {
	var buf bytes.Buffer
	mode, err := resolveOutput(outputAuto, &buf)
	require.NoError(t, err)
	assert.Equal(t, outputJSON, mode)

	mode, err = resolveOutput(outputTable, &buf)
	require.NoError(t, err)
	assert.Equal(t, outputTable, mode)

	_, err = resolveOutput("yaml", &buf)
	assert.Error(t, err)
}

func TestPrintNotifications(t *testing.T) {
	msg := "telegram send: " + strings.Repeat("x", 60)
	var buf bytes.Buffer
	printNotifications(&buf, []models.Notification{{
		ID: 3, EventType: "booking_created", BookingID: 9, RetryCount: 5,
		LastError: &msg, CreatedAt: time.Date(2030, 1, 2, 3, 4, 5, 0, time.Local),
	}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Last error")
	assert.Contains(t, lines[2], "booking_created")
	assert.Contains(t, lines[2], "2030-01-02 03:04:05")
	assert.True(t, strings.HasSuffix(lines[2], "..."))
}
