package config

const (
	DefaultFsName = "mirrorfs"
	DefaultName   = "mirrorfs"
)

// MountOptions holds high-level settings for the read-only FUSE view.
// No go-fuse types are exposed here.
type MountOptions struct {
	Debug  bool   // fuse debug logs
	FsName string // mount's FsName
	Name   string // mount's Name
}

// DefaultMountOptions names the mount after the project
func DefaultMountOptions() MountOptions {
	return MountOptions{
		FsName: DefaultFsName,
		Name:   DefaultName,
	}
}
