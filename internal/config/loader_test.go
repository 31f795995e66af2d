package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	def := Defaults()
	assert.Equal(t, def.Service, cfg.Service)
	assert.Equal(t, def.Journal, cfg.Journal)
	assert.Empty(t, cfg.SourcePath)
	assert.Empty(t, cfg.Workload)
}

func TestLoadParsesWorkloadWithHexOpcodes(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
service:
  log_level: DEBUG
workload:
  - opcode: 0xBEFF
    high_power: true
    timestamp: 1000
  - opcode: 1
    repeat: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Service.LogLevel)
	assert.Equal(t, "gpop", cfg.Service.Name)
	assert.True(t, cfg.Journal.Enabled, "absent journal block keeps default")
	require.Len(t, cfg.Workload, 2)
	assert.Equal(t, WorkloadEntry{Opcode: 0xBEFF, HighPower: true, Timestamp: 1000}, cfg.Workload[0])
	assert.Equal(t, 3, cfg.Workload[1].Repeat)
	assert.Equal(t, path, cfg.SourcePath)
}

func TestLoadDirectoryResolvesConfigYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "service:\n  name: cp0\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "cp0", cfg.Service.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoadInterpolatesEnv(t *testing.T) {
	t.Setenv("GPOP_TEST_DB", "/tmp/gpop-test.db")
	path := writeConfig(t, t.TempDir(), "journal:\n  path: ${GPOP_TEST_DB}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/gpop-test.db", cfg.Journal.Path)
}

func TestLoadUnresolvedEnvFails(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "journal:\n  path: ${GPOP_DEFINITELY_UNSET_VAR}\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "GPOP_DEFINITELY_UNSET_VAR")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GPOP_LOG_LEVEL", "warn")
	t.Setenv("GPOP_API_LISTEN", "0.0.0.0:9000")
	t.Setenv("GPOP_JOURNAL_ENABLED", "false")
	path := writeConfig(t, t.TempDir(), "service:\n  log_level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Service.LogLevel)
	assert.Equal(t, "0.0.0.0:9000", cfg.API.Listen)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoadBadEnvBool(t *testing.T) {
	t.Setenv("GPOP_JOURNAL_ENABLED", "maybe")

	_, err := Load("")
	assert.ErrorContains(t, err, "parse env")
}

func TestLoadEnvEnablesJournal(t *testing.T) {
	t.Setenv("GPOP_JOURNAL_ENABLED", "true")
	path := writeConfig(t, t.TempDir(), "journal:\n  enabled: false\n  path: ./j.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Journal.Enabled)
}

func TestLoadUnsetEnvBoolKeepsFileValue(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "journal:\n  enabled: false\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad log level", "service:\n  log_level: loud\n", "service.log_level"},
		{"empty journal path", "journal:\n  enabled: true\n  path: \"\"\n", "journal.path"},
		{"empty listen", "api:\n  listen: \"\"\n", "api.listen"},
		{"negative repeat", "workload:\n  - opcode: 1\n    repeat: -1\n", "workload[0].repeat"},
		{"bad yaml", "service: [\n", "failed to parse YAML"},
		{"empty token", "api:\n  tokens:\n    - token: \"\"\n      scopes: [\"runs:ro\"]\n", "api.tokens[0].token is required"},
		{"unset token var", "api:\n  tokens:\n    - token: ${GPOP_TEST_UNSET_TOKEN}\n      scopes: [\"runs:ro\"]\n", "GPOP_TEST_UNSET_TOKEN"},
		{"token without scopes", "api:\n  tokens:\n    - token: abc\n", "api.tokens[0].scopes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadAPITokensFromEnv(t *testing.T) {
	t.Setenv("GPOP_TEST_TOKEN", "s3cret")
	path := writeConfig(t, t.TempDir(), `
api:
  tokens:
    - token: ${GPOP_TEST_TOKEN}
      scopes: ["dispatch:rw"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.API.Tokens, 1)
	assert.Equal(t, "s3cret", cfg.API.Tokens[0].Token)
	assert.Equal(t, []string{"dispatch:rw"}, cfg.API.Tokens[0].Scopes)
	assert.Equal(t, "127.0.0.1:8088", cfg.API.Listen, "listen keeps its default")
}

func TestLoadDisabledJournalSkipsPathCheck(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "journal:\n  enabled: false\n  path: \"\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Journal.Enabled)
}

func TestDiscoverPrefersEnv(t *testing.T) {
	t.Setenv("GPOP_CONFIG", "/etc/gpop/custom.yaml")
	assert.Equal(t, "/etc/gpop/custom.yaml", Discover())
}
