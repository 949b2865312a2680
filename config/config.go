package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brettbedarf/mirrorfs/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl       = util.InfoLevel
	DefaultDataDir      = "data"
	DefaultStorePath    = "filesystem.json"
	DefaultDownloadsDir = "downloads"
	DefaultRestoreDir   = "restored"
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8088
	DefaultMetadataPath = "metadata.db"
	DefaultRemoteType   = RemoteNone

	DefaultDriveCredentialsPath = "credentials.json"
	DefaultDriveTokenPath       = "token.json"
)

// Config contains runtime configuration values for the service.
type Config struct {
	MountOptions
	LogLvl util.LogLevel // Log level (Default info)

	DataDir      string // Root of the physical directory mirrored by the tree (Default "data")
	StorePath    string // JSON snapshot of the tree (Default "filesystem.json")
	DownloadsDir string // Tree path and DataDir subfolder for single cloud downloads (Default "downloads")
	RestoreDir   string // Tree path and DataDir subfolder for restore-all (Default "restored")

	Host string // HTTP listen host (Default 127.0.0.1)
	Port int    // HTTP listen port (Default 8088)

	MetadataPath string // SQLite database holding file metadata (Default "metadata.db")

	RemoteType string // Remote mirror adapter: none, dir or gdrive (Default none)
	RemoteDir  string // Target directory for the dir adapter

	DriveCredentialsPath string // OAuth client secrets file (Default "credentials.json")
	DriveTokenPath       string // Cached OAuth token (Default "token.json")
	DriveFolderID        string // Optional parent folder for uploads
	DriveClientID        string // Used instead of the credentials file when set
	DriveClientSecret    string
	DriveShareLinks      bool // Make new uploads readable by anyone with the link
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate reports the first invalid field
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("invalid host (empty)")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.StorePath) == "" {
		return fmt.Errorf("invalid store path (empty)")
	}
	switch c.RemoteType {
	case RemoteNone, RemoteGDrive:
	case RemoteDir:
		if c.RemoteDir == "" {
			return fmt.Errorf("remote type %q requires remote_dir", RemoteDir)
		}
	default:
		return fmt.Errorf("unknown remote type: %s", c.RemoteType)
	}
	return nil
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	LogLvl       *int    `yaml:"log_level,omitempty" json:"log_level,omitempty"` // verbosity 1 (error) to 5 (trace)
	DataDir      *string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
	StorePath    *string `yaml:"store_path,omitempty" json:"store_path,omitempty"`
	DownloadsDir *string `yaml:"downloads_dir,omitempty" json:"downloads_dir,omitempty"`
	RestoreDir   *string `yaml:"restore_dir,omitempty" json:"restore_dir,omitempty"`
	Host         *string `yaml:"host,omitempty" json:"host,omitempty"`
	Port         *int    `yaml:"port,omitempty" json:"port,omitempty"`
	MetadataPath *string `yaml:"metadata_path,omitempty" json:"metadata_path,omitempty"`
	RemoteType   *string `yaml:"remote,omitempty" json:"remote,omitempty"`
	RemoteDir    *string `yaml:"remote_dir,omitempty" json:"remote_dir,omitempty"`

	DriveCredentialsPath *string `yaml:"drive_credentials_path,omitempty" json:"drive_credentials_path,omitempty"`
	DriveTokenPath       *string `yaml:"drive_token_path,omitempty" json:"drive_token_path,omitempty"`
	DriveFolderID        *string `yaml:"drive_folder_id,omitempty" json:"drive_folder_id,omitempty"`
	DriveClientID        *string `yaml:"drive_client_id,omitempty" json:"drive_client_id,omitempty"`
	DriveClientSecret    *string `yaml:"drive_client_secret,omitempty" json:"drive_client_secret,omitempty"`
	DriveShareLinks      *bool   `yaml:"drive_share_links,omitempty" json:"drive_share_links,omitempty"`

	FsName *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name   *string `yaml:"name,omitempty" json:"name,omitempty"`
	Debug  *bool   `yaml:"fuse_debug,omitempty" json:"fuse_debug,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions:         DefaultMountOptions(),
		LogLvl:               DefaultLogLvl,
		DataDir:              DefaultDataDir,
		StorePath:            DefaultStorePath,
		DownloadsDir:         DefaultDownloadsDir,
		RestoreDir:           DefaultRestoreDir,
		Host:                 DefaultHost,
		Port:                 DefaultPort,
		MetadataPath:         DefaultMetadataPath,
		RemoteType:           DefaultRemoteType,
		DriveCredentialsPath: DefaultDriveCredentialsPath,
		DriveTokenPath:       DefaultDriveTokenPath,
	}
}

// NewConfig creates a default Config with override applied. A nil override
// yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// VerbosityToLogLevel converts a 1 (error) to 5 (trace) verbosity into a
// [util.LogLevel], clamping out of range values.
func VerbosityToLogLevel(verbose int) util.LogLevel {
	if verbose < ErrorVerbose {
		verbose = ErrorVerbose
	}
	if verbose > TraceVerbose {
		verbose = TraceVerbose
	}
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerbosityToLogLevel(*override.LogLvl)
	}
	mergeValue(&c.DataDir, override.DataDir)
	mergeValue(&c.StorePath, override.StorePath)
	mergeValue(&c.DownloadsDir, override.DownloadsDir)
	mergeValue(&c.RestoreDir, override.RestoreDir)
	mergeValue(&c.Host, override.Host)
	mergeValue(&c.Port, override.Port)
	mergeValue(&c.MetadataPath, override.MetadataPath)
	mergeValue(&c.RemoteType, override.RemoteType)
	mergeValue(&c.RemoteDir, override.RemoteDir)
	mergeValue(&c.DriveCredentialsPath, override.DriveCredentialsPath)
	mergeValue(&c.DriveTokenPath, override.DriveTokenPath)
	mergeValue(&c.DriveFolderID, override.DriveFolderID)
	mergeValue(&c.DriveClientID, override.DriveClientID)
	mergeValue(&c.DriveClientSecret, override.DriveClientSecret)
	mergeValue(&c.DriveShareLinks, override.DriveShareLinks)
	mergeValue(&c.FsName, override.FsName)
	mergeValue(&c.Name, override.Name)
	mergeValue(&c.Debug, override.Debug)
}

func mergeValue[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}

// EnvOverride builds a ConfigOverride from environment variables looked up
// with lookup (normally os.LookupEnv). Only variables that are set and
// non-empty produce overrides.
func EnvOverride(lookup func(string) (string, bool)) (*ConfigOverride, error) {
	get := func(key string) *string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			v = strings.TrimSpace(v)
			return &v
		}
		return nil
	}

	override := &ConfigOverride{
		DataDir:              get(EnvDataDir),
		StorePath:            get(EnvStorePath),
		DownloadsDir:         get(EnvDownloadsDir),
		RestoreDir:           get(EnvRestoreDir),
		Host:                 get(EnvHost),
		MetadataPath:         get(EnvMetadataPath),
		RemoteType:           get(EnvRemoteType),
		RemoteDir:            get(EnvRemoteDir),
		DriveCredentialsPath: get(EnvDriveCredentialsPath),
		DriveTokenPath:       get(EnvDriveTokenPath),
		DriveFolderID:        get(EnvDriveFolderID),
		DriveClientID:        get(EnvDriveClientID),
		DriveClientSecret:    get(EnvDriveClientSecret),
	}
	for key, dst := range map[string]**int{EnvPort: &override.Port, EnvLogLevel: &override.LogLvl} {
		if v := get(key); v != nil {
			n, err := strconv.Atoi(*v)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s=%q: %w", key, *v, err)
			}
			*dst = &n
		}
	}
	if v := get(EnvDriveShareLinks); v != nil {
		b, err := strconv.ParseBool(*v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s=%q: %w", EnvDriveShareLinks, *v, err)
		}
		override.DriveShareLinks = &b
	}
	return override, nil
}
