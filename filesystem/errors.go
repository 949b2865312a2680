package filesystem

import "errors"

// Error taxonomy for tree operations. Returned errors wrap one of these and
// should be matched with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrNotADirectory = errors.New("not a directory")
	ErrIsADirectory  = errors.New("is a directory")
	ErrInvalidName   = errors.New("invalid file name")
	ErrInvalidPath   = errors.New("invalid path")
	ErrAlreadyExists = errors.New("already exists")
	ErrIOFailure     = errors.New("i/o failure")
)

// PathError records the operation and path that caused an error
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathErr(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}
