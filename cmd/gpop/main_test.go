package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/gpop/internal/journal"
	"github.com/mattjoyce/gpop/internal/log"
	"github.com/mattjoyce/gpop/internal/session"
)

const cliHelperEnv = "GPOP_TEST_CLI_HELPER"

func TestMain(m *testing.M) {
	// Re-executed as the gpop binary: run the CLI with a fresh logger.
	if os.Getenv(cliHelperEnv) == "1" {
		for i, a := range os.Args {
			if a == "--" {
				os.Exit(runCLI(os.Args[i+1:]))
			}
		}
		os.Exit(2)
	}
	log.Setup("ERROR")
	os.Exit(m.Run())
}

// execCLI runs gpop in a child process so the global logger is configured
// from the command's own config.
func execCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], append([]string{"--"}, args...)...)
	cmd.Env = append(os.Environ(), cliHelperEnv+"=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), stdout.String(), stderr.String()
	}
	require.NoError(t, err)
	return 0, stdout.String(), stderr.String()
}

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	require.NoError(t, err)
	stderrR, stderrW, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = stdoutW
	os.Stderr = stderrW

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes, _ := io.ReadAll(stdoutR)
	stderrBytes, _ := io.ReadAll(stderrR)
	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

func captureCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	return captureOutputWithExitCode(t, func() int {
		return runCLI(args)
	})
}

func writeTestConfig(t *testing.T, workload string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "gpop.db")
	body := "service:\n  log_level: error\njournal:\n  enabled: true\n  path: " + dbPath + "\n" + workload
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path, dbPath
}

func runJSON(t *testing.T, args ...string) *session.Result {
	t.Helper()
	code, stdout, stderr := captureCLI(t, append([]string{"run", "--json"}, args...)...)
	require.Equal(t, 0, code, "stderr: %s", stderr)

	var res session.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &res), "stdout: %s", stdout)
	return &res
}

func TestRunCLIUnknownCommand(t *testing.T) {
	code, _, stderr := captureCLI(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unknown command: frobnicate")
	assert.Contains(t, stderr, "Usage:")
}

func TestRunCLINoArgsPrintsUsage(t *testing.T) {
	code, _, stderr := captureCLI(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "gpop run")
}

func TestWatchRejectsUnknownFlag(t *testing.T) {
	code, _, _ := captureCLI(t, "watch", "--bogus")
	assert.Equal(t, 1, code)
}

func TestVersionJSON(t *testing.T) {
	code, stdout, _ := captureCLI(t, "version", "--json")
	require.Equal(t, 0, code)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.NotEmpty(t, info.BuildTime)
}

func TestRunDefaultSeed(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")

	res := runJSON(t, "--config", cfgPath)

	assert.Equal(t, "cli", res.Source)
	assert.Equal(t, 1, res.Commands)
	assert.Equal(t, 1, res.Triggers)
	assert.Equal(t, 1, res.Launches)
	require.Len(t, res.Calls, 2)
	assert.Equal(t, journal.KindTrigger, res.Calls[0].Kind)
	assert.Equal(t, uint32(0xBEFF), res.Calls[0].Opcode)
	assert.Equal(t, journal.KindLaunch, res.Calls[1].Kind)
	assert.Equal(t, uint32(0xBEFF), res.Calls[1].Opcode)
}

func TestRunConfiguredWorkload(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, `workload:
  - opcode: 1
  - opcode: 2
    high_power: true
`)

	res := runJSON(t, "--config", cfgPath)

	require.Len(t, res.Calls, 3)
	assert.Equal(t, journal.KindLaunch, res.Calls[0].Kind)
	assert.Equal(t, uint32(1), res.Calls[0].Opcode)
	assert.Equal(t, journal.KindTrigger, res.Calls[1].Kind)
	assert.Equal(t, uint32(2), res.Calls[1].Opcode)
	assert.Equal(t, journal.KindLaunch, res.Calls[2].Kind)
	assert.Equal(t, uint32(2), res.Calls[2].Opcode)
}

func TestRunAlternatingOverridesWorkload(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "workload:\n  - opcode: 7\n")

	res := runJSON(t, "--config", cfgPath, "--alternating", "100", "--base", "0x2000")

	assert.Equal(t, 100, res.Commands)
	assert.Equal(t, 100, res.Launches)
	assert.Equal(t, 50, res.Triggers)
	assert.Equal(t, uint32(0x2000), res.Calls[0].Opcode)
}

func TestRunRejectsBadBase(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")

	code, _, stderr := captureCLI(t, "run", "--config", cfgPath, "--alternating", "4", "--base", "zz")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Invalid workload")
}

func TestRunTextSummary(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")

	code, stdout, stderr := captureCLI(t, "run", "--config", cfgPath)
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, "1 commands, 1 launches, 1 triggers")
	assert.Contains(t, stdout, "GEMM_HEAVY")
}

func TestRunWithJournalDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  enabled: false\n"), 0o600))

	res := runJSON(t, "--config", path)
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Calls, 2)

	_, err := os.Stat(filepath.Join(dir, "data"))
	assert.True(t, os.IsNotExist(err), "no journal directory should be created")

	code, _, stderr := captureCLI(t, "runs", "--config", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Journal is disabled")
}

func TestInspectAndRunsReadJournal(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")
	res := runJSON(t, "--config", cfgPath)

	code, stdout, stderr := captureCLI(t, "inspect", res.RunID, "--config", cfgPath, "--json")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	var run journal.Run
	require.NoError(t, json.Unmarshal([]byte(stdout), &run))
	assert.Equal(t, res.RunID, run.ID)
	assert.Equal(t, 1, run.Triggers)
	require.Len(t, run.Calls, 2)
	assert.Equal(t, journal.KindTrigger, run.Calls[0].Kind)

	code, stdout, _ = captureCLI(t, "inspect", res.RunID, "--config", cfgPath)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, res.RunID)
	assert.Contains(t, stdout, "GEMM_HEAVY")

	code, stdout, _ = captureCLI(t, "runs", "--config", cfgPath, "--limit", "5")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, res.RunID)
}

func TestInspectUnknownRun(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")
	runJSON(t, "--config", cfgPath)

	code, _, stderr := captureCLI(t, "inspect", "nope", "--config", cfgPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Run nope not found")
}

func TestInspectRequiresRunID(t *testing.T) {
	code, _, stderr := captureCLI(t, "inspect")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage: gpop inspect")
}

func TestConfigLockThenCheck(t *testing.T) {
	cfgPath, _ := writeTestConfig(t, "")

	code, stdout, stderr := captureCLI(t, "config", "lock", "--config", cfgPath)
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, ".checksums")

	code, stdout, _ = captureCLI(t, "config", "check", "--config", cfgPath)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Configuration valid")

	f, err := os.OpenFile(cfgPath, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("# edited\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	code, _, stderr = captureCLI(t, "config", "check", "--config", cfgPath)
	assert.Equal(t, 1, code)
	assert.True(t, strings.Contains(stderr, "hash mismatch"), stderr)
}

func TestConfigUnknownAction(t *testing.T) {
	code, _, stderr := captureCLI(t, "config", "explode")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unknown config action")
}

func TestRunJSONKeepsLogsOffStdout(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "service:\n  log_level: info\njournal:\n  enabled: true\n  path: " + filepath.Join(dir, "gpop.db") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	code, stdout, stderr := execCLI(t, "run", "--config", cfgPath, "--json")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	var res session.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &res), "stdout: %s", stdout)
	assert.Equal(t, 1, res.Triggers)
	assert.Len(t, res.Calls, 2)

	assert.Contains(t, stderr, `"msg":"run started"`)
	assert.Contains(t, stderr, `"msg":"kernel launched"`)
}

func TestRunTextLogsStayOnStdout(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("journal:\n  enabled: false\n"), 0o600))

	code, stdout, stderr := execCLI(t, "run", "--config", cfgPath)
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, `"msg":"run completed"`)
	assert.Contains(t, stdout, "1 commands, 1 launches, 1 triggers")
}
