package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	require.Equal(t, "http://127.0.0.1:8080", c.ServerEndpointAddr)
	require.Equal(t, "moodmapper.db", c.DatabasePath)
	require.Equal(t, 5*time.Second, c.PollInterval)
	require.Equal(t, 3*time.Second, c.PullDebounce)
	require.Equal(t, 5*time.Minute, c.SyncRecency)
}

func TestParseJsonOverlaysPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_endpoint_addr": "http://example.test:9090",
		"pull_debounce": "10s"
	}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"moodmapper", "-c", path}
	t.Cleanup(func() { os.Args = oldArgs })

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	require.Equal(t, "http://example.test:9090", c.ServerEndpointAddr)
	require.Equal(t, 10*time.Second, c.PullDebounce)
	// Absent fields keep their defaults.
	require.Equal(t, "moodmapper.db", c.DatabasePath)
	require.Equal(t, 5*time.Second, c.PollInterval)
}

func TestParseFlagsOverrideJson(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"moodmapper", "-a", "http://flag.test:1234", "-p", "30"}
	t.Cleanup(func() { os.Args = oldArgs })

	var c Config
	c.LoadDefaults()
	parseFlags(&c)

	require.Equal(t, "http://flag.test:1234", c.ServerEndpointAddr)
	require.Equal(t, 30*time.Second, c.PollInterval)
}
