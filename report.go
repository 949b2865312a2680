package mirrorfs

import (
	"fmt"
	"strings"
)

// Mirror identifies a secondary copy of the tree that is kept in sync on a
// best-effort basis. The in-memory tree and its JSON snapshot are authoritative.
type Mirror string

const (
	DiskMirror     Mirror = "disk"
	RemoteMirrorID Mirror = "remote"
	MetadataMirror Mirror = "metadata"
)

// MirrorWarning reports a failed mirror call. The primary operation it belongs
// to still succeeded.
type MirrorWarning struct {
	Mirror Mirror
	Op     string
	Path   string
	Err    error
}

func (w MirrorWarning) Error() string {
	return fmt.Sprintf("%s %s %s: %v", w.Mirror, w.Op, w.Path, w.Err)
}

func (w MirrorWarning) Unwrap() error {
	return w.Err
}

// Report carries the warnings raised by mirror calls during one operation.
// The zero value is an empty report.
type Report struct {
	Warnings []MirrorWarning
}

// Warn records a mirror failure; a nil err is ignored
func (r *Report) Warn(mirror Mirror, op, path string, err error) {
	if err == nil {
		return
	}
	r.Warnings = append(r.Warnings, MirrorWarning{Mirror: mirror, Op: op, Path: path, Err: err})
}

// Merge appends the warnings of other
func (r *Report) Merge(other Report) {
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Clean reports whether every mirror call succeeded
func (r Report) Clean() bool {
	return len(r.Warnings) == 0
}

func (r Report) String() string {
	if r.Clean() {
		return "ok"
	}
	msgs := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		msgs = append(msgs, w.Error())
	}
	return strings.Join(msgs, "; ")
}
