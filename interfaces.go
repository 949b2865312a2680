// Package mirrorfs contains core domain types and interfaces for the mirrorfs
// file service: an in-memory tree persisted as JSON and mirrored to local disk,
// a remote object store and a metadata index.
package mirrorfs

import (
	"context"
	"errors"
	"time"

	"github.com/brettbedarf/mirrorfs/config"
	"github.com/spf13/afero"
)

// ErrRemoteNotFound is returned by [RemoteMirror] implementations when no remote
// object carries the requested name.
var ErrRemoteNotFound = errors.New("remote object not found")

// RemoteMirror defines the operations against a remote object store. Remote
// objects live in a flat namespace keyed by base filename.
type RemoteMirror interface {
	// Push creates or updates the remote object named after the base filename
	// of localPath with the file's bytes
	Push(ctx context.Context, localPath string) error

	// Fetch downloads the remote object into saveDir and returns the local path
	Fetch(ctx context.Context, name string, saveDir string) (string, error)

	// List enumerates every remote object
	List(ctx context.Context) ([]RemoteEntry, error)

	// Delete removes the remote object with the given name
	Delete(ctx context.Context, name string) error
}

// RemoteEntry describes one remote object
type RemoteEntry struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	URL        string     `json:"url,omitempty"`
	Size       int64      `json:"size"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

// MetadataIndex records per-file metadata keyed by physical path.
// Upsert on an existing path updates size and last modified time in place.
type MetadataIndex interface {
	Upsert(ctx context.Context, md FileMetadata) error
	List(ctx context.Context) ([]FileMetadata, error)
}

// FileMetadata is one row of the metadata index
type FileMetadata struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// RemoteProvider builds a [RemoteMirror] from the application config. disk is
// the filesystem the mirror reads pushed files from and writes fetched files to.
type RemoteProvider interface {
	NewRemote(ctx context.Context, cfg *config.Config, disk afero.Fs) (RemoteMirror, error)
}
