package config

// Remote mirror types understood by the adapters registry
const (
	RemoteNone   = "none"
	RemoteDir    = "dir"
	RemoteGDrive = "gdrive"
)

// Log verbosity values accepted in config files and on the command line.
// 1 is the least verbose.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Environment variable names. The GDRIVE_* names match the .env files
// written for earlier deployments.
const (
	EnvDataDir      = "MIRRORFS_DATA_DIR"
	EnvStorePath    = "MIRRORFS_STORE_PATH"
	EnvHost         = "MIRRORFS_HOST"
	EnvPort         = "MIRRORFS_PORT"
	EnvMetadataPath = "MIRRORFS_METADATA_PATH"
	EnvRemoteType   = "MIRRORFS_REMOTE"
	EnvRemoteDir    = "MIRRORFS_REMOTE_DIR"
	EnvLogLevel     = "MIRRORFS_LOG_LEVEL"
	EnvDownloadsDir = "MIRRORFS_DOWNLOADS_DIR"
	EnvRestoreDir   = "MIRRORFS_RESTORE_DIR"

	EnvDriveClientID        = "GDRIVE_CLIENT_ID"
	EnvDriveClientSecret    = "GDRIVE_CLIENT_SECRET"
	EnvDriveTokenPath       = "GDRIVE_TOKEN_PATH"
	EnvDriveCredentialsPath = "GDRIVE_CREDENTIALS_PATH"
	EnvDriveFolderID        = "GDRIVE_FOLDER_ID"
	EnvDriveShareLinks      = "GDRIVE_SHARE_LINKS"
)
