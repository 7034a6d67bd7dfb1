package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
[networks.libera]
enabled = true
nick = "watcher"
channels = ["#go"]

[[networks.libera.servers]]
host = "irc.libera.chat"
port = 6697
ssl = true
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3600, config.Filter.ThresholdSeconds)
	assert.Equal(t, 300, config.Filter.SweepSeconds)
	assert.Equal(t, "notify.db", config.Store.Path)
	assert.EqualValues(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)

	network, ok := config.Networks["libera"]
	require.True(t, ok)
	assert.True(t, network.Enabled)
	assert.Equal(t, "watcher", network.Nick)
}

func TestLoadConfigExplicitFilter(t *testing.T) {
	path := writeConfig(t, `
[filter]
thresholdSeconds = 600
sweepSeconds = 60
notify = ["Friend"]
channels = ["#go"]

[networks.libera]
nick = "watcher"

[[networks.libera.servers]]
host = "irc.libera.chat"
port = 6667
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 600, config.Filter.ThresholdSeconds)
	assert.Equal(t, 60, config.Filter.SweepSeconds)
	assert.Equal(t, []string{"Friend"}, config.Filter.Notify)
	assert.Equal(t, []string{"#go"}, config.Filter.Channels)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsMissingNick(t *testing.T) {
	path := writeConfig(t, `
[networks.libera]
channels = ["#go"]

[[networks.libera.servers]]
host = "irc.libera.chat"
port = 6667
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsNoNetworks(t *testing.T) {
	path := writeConfig(t, `
[filter]
thresholdSeconds = 600
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestGetRandomServer(t *testing.T) {
	network := Network{Servers: []Server{{Host: "a"}, {Host: "b"}}}
	server := network.GetRandomServer()
	require.NotNil(t, server)
	assert.Contains(t, []string{"a", "b"}, server.Host)

	empty := Network{}
	assert.Nil(t, empty.GetRandomServer())
}
