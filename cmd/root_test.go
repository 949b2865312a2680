package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/mirrorfs/config"
)

func TestLoadRootConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "mirrorfs.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("host: 0.0.0.0\nport: 9000\ndata_dir: from-file\nstore_path: file.json\n"), 0o644))
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("MIRRORFS_DATA_DIR=from-env\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv(config.EnvDataDir) })
	t.Setenv(config.EnvPort, "9100")

	var got *config.Config
	inspect := &cobra.Command{
		Use: "inspect",
		RunE: func(*cobra.Command, []string) error {
			got = cfg
			return nil
		},
	}
	rootCmd.AddCommand(inspect)
	t.Cleanup(func() { rootCmd.RemoveCommand(inspect) })

	rootCmd.SetArgs([]string{"inspect", "--config", cfgFile, "--env-file", envFile, "--port", "9200", "-v", "4"})
	require.NoError(t, rootCmd.Execute())
	require.NotNil(t, got)

	assert.Equal(t, 9200, got.Port, "flag beats env and file")
	assert.Equal(t, "from-env", got.DataDir, "env beats file")
	assert.Equal(t, "0.0.0.0", got.Host, "file beats defaults")
	assert.Equal(t, "file.json", got.StorePath)
	assert.Equal(t, config.DefaultMetadataPath, got.MetadataPath)
	assert.Equal(t, config.VerbosityToLogLevel(config.DebugVerbose), got.LogLvl)
}

func TestVersionCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "mirrorfs dev (unknown)\n", buf.String())
}

func TestRedacted(t *testing.T) {
	c := config.NewDefaultConfig()
	c.DriveClientSecret = "s3cret"
	out := redacted(c)
	assert.Equal(t, "***", out.DriveClientSecret)
	assert.Equal(t, "s3cret", c.DriveClientSecret)
}
