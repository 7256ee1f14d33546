package providers

import (
	"cvewatch/internal/structures"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
jobs:
  dir: /etc/cvewatch/jobs
watermark:
  filePath: /var/lib/cvewatch/watermarks.json
mail:
  sender: cve@example.com
  host: smtp.example.com
logger:
  dir: /tmp/logs
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewConfigProvider_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, AppName, conf.AppName)
	assert.Equal(t, path, conf.Path)
	assert.True(t, conf.Debug)
	assert.Equal(t, "2.0", conf.Api.Schema)
	assert.Equal(t, 100, conf.Api.ResultsPerPage)
	assert.Equal(t, 5, conf.Api.Retries)
	assert.Equal(t, time.Second, conf.Api.RetryDelay)
	assert.Equal(t, 30*time.Minute, conf.Schedule.Interval)
	assert.True(t, conf.Mail.Verify)
	assert.Equal(t, "*.yaml", conf.Jobs.Pattern)
	assert.Equal(t, 8080, conf.WebServer.Port)
}

func TestNewConfigProvider_EnvOverrides(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	t.Setenv("CVEWATCH_API_KEY", "secret-key")
	t.Setenv("CVEWATCH_SMTP_PASSWORD", "hunter2")
	t.Setenv("CVEWATCH_SCHEDULE_INTERVAL", "10m")
	t.Setenv("CVEWATCH_LOG_LEVEL", "debug")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)

	assert.Equal(t, "secret-key", conf.Api.Key)
	assert.Equal(t, "hunter2", conf.Mail.Password)
	assert.Equal(t, 10*time.Minute, conf.Schedule.Interval)
	assert.Equal(t, "debug", conf.Logger.Level)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidConfig(t *testing.T) {
	path := writeConfig(t, minimalConfig+"\napi:\n  schema: \"9.9\"\n")

	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	assert.Error(t, err)
}
