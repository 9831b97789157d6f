package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgingest/internal/config"
	"github.com/vvka-141/pgingest/pkg/pgingest"
)

var requiredArgs = []string{
	"--username", "root",
	"--password", "root",
	"--host", "localhost",
	"--port", "5432",
	"--db", "ny_taxi",
	"--table", "yellow_taxi_data",
	"--url", "https://example.com/yellow_tripdata_2021-01.csv",
}

// execute runs a fresh root command with args, capturing the parsed flags
// instead of ingesting.
func execute(t *testing.T, args ...string) (*ingestFlags, *cobra.Command, error) {
	t.Helper()
	flags, cmd, _, err := executeWithOutput(t, nil, args...)
	return flags, cmd, err
}

// executeWithOutput is execute with a run result and the combined output.
func executeWithOutput(t *testing.T, runErr error, args ...string) (*ingestFlags, *cobra.Command, string, error) {
	t.Helper()

	var got *ingestFlags
	var gotCmd *cobra.Command
	cmd := newRootCmd(func(c *cobra.Command, f *ingestFlags) error {
		got, gotCmd = f, c
		return runErr
	})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return got, gotCmd, out.String(), err
}

func TestRootCmd_ParsesFlags(t *testing.T) {
	flags, _, err := execute(t, append(requiredArgs, "-v", "--no-progress")...)
	require.NoError(t, err)
	require.NotNil(t, flags)

	assert.Equal(t, "root", flags.username)
	assert.Equal(t, "root", flags.password)
	assert.Equal(t, "localhost", flags.host)
	assert.Equal(t, "5432", flags.port)
	assert.Equal(t, "ny_taxi", flags.database)
	assert.Equal(t, "yellow_taxi_data", flags.table)
	assert.Equal(t, "https://example.com/yellow_tripdata_2021-01.csv", flags.url)
	assert.Equal(t, pgingest.DefaultBatchSize, flags.batchSize)
	assert.True(t, flags.verbose)
	assert.True(t, flags.noProgress)
}

func TestRootCmd_MissingRequiredFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no flags", nil},
		{"missing url", requiredArgs[:len(requiredArgs)-2]},
		{"missing username", requiredArgs[2:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Nil(t, flags, "run must not be reached")
			assert.Contains(t, err.Error(), "required flag(s)")
			assert.Equal(t, pgingest.ExitUsageError, pgingest.ExitCodeForError(err))
		})
	}
}

func TestRootCmd_MissingRequiredFlagPrintsUsage(t *testing.T) {
	_, _, out, err := executeWithOutput(t, nil, requiredArgs[2:]...)
	require.Error(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--username")
}

func TestRootCmd_RunFailureOmitsUsage(t *testing.T) {
	_, _, out, err := executeWithOutput(t, pgingest.ErrWriteFailed, requiredArgs...)
	require.ErrorIs(t, err, pgingest.ErrWriteFailed)
	assert.NotContains(t, out, "Usage:")
	assert.Contains(t, out, "Error: write failed")
}

func TestRootCmd_Version(t *testing.T) {
	flags, _, out, err := executeWithOutput(t, nil, "--version")
	require.NoError(t, err)
	assert.Nil(t, flags, "run must not be reached")
	assert.True(t, strings.HasPrefix(out, "pgingest "), "got %q", out)
}

func TestRootCmd_VersionAsFlagValue(t *testing.T) {
	args := append([]string{}, requiredArgs...)
	args[3] = "--version"

	flags, _, out, err := executeWithOutput(t, nil, args...)
	require.NoError(t, err)
	require.NotNil(t, flags, "run must be reached")
	assert.Equal(t, "--version", flags.password)
	assert.NotContains(t, out, "pgingest ")
}

func TestRootCmd_RejectsPositionalArgs(t *testing.T) {
	_, _, err := execute(t, append(requiredArgs, "extra")...)
	require.Error(t, err)
	assert.Equal(t, pgingest.ExitUsageError, pgingest.ExitCodeForError(err))
}

func TestRootCmd_UnknownFlag(t *testing.T) {
	_, _, err := execute(t, append(requiredArgs, "--chunksize", "10")...)
	require.Error(t, err)
	assert.Equal(t, pgingest.ExitUsageError, pgingest.ExitCodeForError(err))
}

func TestResolveSettings_Precedence(t *testing.T) {
	batch := 5000
	off := false
	fileCfg := &config.FileConfig{BatchSize: &batch, Progress: &off}

	// default only
	flags, cmd, err := execute(t, requiredArgs...)
	require.NoError(t, err)
	s := resolveSettings(cmd, flags, nil)
	assert.Equal(t, pgingest.DefaultBatchSize, s.batchSize)
	assert.True(t, s.progress)

	// file overrides default
	s = resolveSettings(cmd, flags, fileCfg)
	assert.Equal(t, 5000, s.batchSize)
	assert.False(t, s.progress)

	// flag overrides file
	flags, cmd, err = execute(t, append(requiredArgs, "--batch-size", "250")...)
	require.NoError(t, err)
	s = resolveSettings(cmd, flags, fileCfg)
	assert.Equal(t, 250, s.batchSize)

	// --no-progress wins over a file that enables progress
	on := true
	flags, cmd, err = execute(t, append(requiredArgs, "--no-progress")...)
	require.NoError(t, err)
	s = resolveSettings(cmd, flags, &config.FileConfig{Progress: &on})
	assert.False(t, s.progress)
}

func TestBuildIngestConfig(t *testing.T) {
	flags, cmd, err := execute(t, append(requiredArgs, "--batch-size", "10")...)
	require.NoError(t, err)

	cfg := buildIngestConfig(flags, resolveSettings(cmd, flags, nil))
	assert.Equal(t, pgingest.ConnectionConfig{
		Username: "root",
		Password: "root",
		Host:     "localhost",
		Port:     "5432",
		Database: "ny_taxi",
		AppName:  pgingest.ApplicationName,
	}, cfg.Connection)
	assert.Equal(t, "yellow_taxi_data", cfg.Table)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileConfig(t *testing.T) {
	_, err := loadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, pgingest.ErrInvalidConfig)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)

	path := filepath.Join(t.TempDir(), "taxi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_size: 42\n"), 0644))
	cfg, err := loadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.BatchSizeOr(0))
}

func TestLoadFileConfig_ImplicitFileMayBeAbsent(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadFileConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadFileConfig_ImplicitFileIsRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("progress: false\n"), 0644))
	t.Chdir(dir)

	cfg, err := loadFileConfig("")
	require.NoError(t, err)
	assert.False(t, cfg.ProgressOr(true))
}

func TestRunIngest_InvalidBatchSizeFailsBeforeConnecting(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newRootCmd(runIngest)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(requiredArgs, "--batch-size", "0", "--no-progress"))

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, pgingest.ErrInvalidConfig)
	assert.Equal(t, pgingest.ExitConfigError, pgingest.ExitCodeForError(err))
}

func TestRunIngest_MissingConfigFile(t *testing.T) {
	cmd := newRootCmd(runIngest)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(requiredArgs, "--config", filepath.Join(t.TempDir(), "nope.yaml")))

	err := cmd.Execute()
	assert.ErrorIs(t, err, pgingest.ErrInvalidConfig)
}
