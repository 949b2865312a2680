package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/brettbedarf/mirrorfs/config"
	"github.com/brettbedarf/mirrorfs/internal/util"
)

// rootFlags are the persistent flags shared by every subcommand
type rootFlags struct {
	configPath string
	envFile    string
	verbose    int
	dataDir    string
	storePath  string
	metadata   string
	host       string
	port       int
	remote     string
	remoteDir  string
}

var (
	flags rootFlags
	cfg   *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mirrorfs",
	Short: "Personal file service backed by a JSON tree",
	Long: `mirrorfs keeps a tree of folders and text files in memory, persists it as a
single JSON document and mirrors every file to a local folder, a remote store
(a plain directory or Google Drive) and a SQLite metadata index.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML or JSON config file")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Environment file loaded before reading MIRRORFS_* and GDRIVE_* variables")
	pf.IntVarP(&flags.verbose, "verbose", "v", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace)")
	pf.StringVar(&flags.dataDir, "data-dir", config.DefaultDataDir, "Physical folder mirroring the tree")
	pf.StringVar(&flags.storePath, "store", config.DefaultStorePath, "JSON snapshot of the tree")
	pf.StringVar(&flags.metadata, "metadata", config.DefaultMetadataPath, "SQLite metadata database")
	pf.StringVar(&flags.host, "host", config.DefaultHost, "HTTP listen host")
	pf.IntVarP(&flags.port, "port", "p", config.DefaultPort, "HTTP listen port")
	pf.StringVar(&flags.remote, "remote", config.DefaultRemoteType, "Remote mirror: none, dir or gdrive")
	pf.StringVar(&flags.remoteDir, "remote-dir", "", "Target folder for the dir remote")
}

// loadRootConfig resolves the config with precedence
// defaults < config file < environment < flags
func loadRootConfig(cmd *cobra.Command, _ []string) error {
	envLoaded := true
	if err := godotenv.Load(flags.envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
			return err
		}
		envLoaded = false
	}

	resolved := config.NewDefaultConfig()
	if flags.configPath != "" {
		override, err := config.LoadConfigOverrideFile(flags.configPath)
		if err != nil {
			return err
		}
		resolved.Merge(override)
	}

	envOverride, err := config.EnvOverride(os.LookupEnv)
	if err != nil {
		return err
	}
	resolved.Merge(envOverride)
	resolved.Merge(flagOverride(cmd))

	if err := resolved.Validate(); err != nil {
		return err
	}
	cfg = resolved

	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")
	if !envLoaded {
		logger.Debug().Str("file", flags.envFile).Msg("No env file found, using environment variables")
	}
	logger.Debug().Interface("config", redacted(cfg)).Msg("Configuration loaded")
	return nil
}

// flagOverride only carries flags set explicitly on the command line
func flagOverride(cmd *cobra.Command) *config.ConfigOverride {
	changed := cmd.Flags().Changed
	override := &config.ConfigOverride{}
	if changed("verbose") {
		override.LogLvl = util.Pointer(flags.verbose)
	}
	if changed("data-dir") {
		override.DataDir = util.Pointer(flags.dataDir)
	}
	if changed("store") {
		override.StorePath = util.Pointer(flags.storePath)
	}
	if changed("metadata") {
		override.MetadataPath = util.Pointer(flags.metadata)
	}
	if changed("host") {
		override.Host = util.Pointer(flags.host)
	}
	if changed("port") {
		override.Port = util.Pointer(flags.port)
	}
	if changed("remote") {
		override.RemoteType = util.Pointer(flags.remote)
	}
	if changed("remote-dir") {
		override.RemoteDir = util.Pointer(flags.remoteDir)
	}
	return override
}

// redacted copies c without OAuth secrets for logging
func redacted(c *config.Config) config.Config {
	out := *c
	if out.DriveClientSecret != "" {
		out.DriveClientSecret = "***"
	}
	return out
}
