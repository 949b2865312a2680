package adapters

import "github.com/brettbedarf/mirrorfs/config"

// NOTE: If build bloat becomes a concern for the drive client
// look into build tags i.e. +build !nogdrive

type BuiltInRemoteType = string

const (
	NoneRemoteType   BuiltInRemoteType = config.RemoteNone
	DirRemoteType    BuiltInRemoteType = config.RemoteDir
	GDriveRemoteType BuiltInRemoteType = config.RemoteGDrive
)

// RegisterBuiltins registers all built-in remotes by default
// or only the specific ones if keys are provided
func RegisterBuiltins(r *Registry, remotes ...BuiltInRemoteType) {
	if len(remotes) == 0 {
		remotes = append(remotes, NoneRemoteType, DirRemoteType, GDriveRemoteType)
	}

	for _, key := range remotes {
		switch key {
		case NoneRemoteType:
			r.Register(key, NoneProvider{})
		case DirRemoteType:
			r.Register(key, DirProvider{})
		case GDriveRemoteType:
			r.Register(key, &DriveProvider{})
		}
	}
}
