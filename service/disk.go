package service

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Disk mirrors tree paths onto a physical directory
type Disk struct {
	fs   afero.Fs
	root string
}

func NewDisk(fs afero.Fs, root string) *Disk {
	return &Disk{fs: fs, root: root}
}

func (d *Disk) Fs() afero.Fs {
	return d.fs
}

// Path maps tree path segments to their physical location under root
func (d *Disk) Path(parts ...string) string {
	return filepath.Join(append([]string{d.root}, parts...)...)
}

func (d *Disk) MkdirAll(parts []string) error {
	return d.fs.MkdirAll(d.Path(parts...), 0o755)
}

// WriteFile writes content to the physical file for parts, creating parent
// directories, and returns the physical path and resulting size.
func (d *Disk) WriteFile(parts []string, content string) (string, int64, error) {
	p := d.Path(parts...)
	if err := d.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return p, 0, err
	}
	if err := afero.WriteFile(d.fs, p, []byte(content), 0o644); err != nil {
		return p, 0, err
	}
	info, err := d.fs.Stat(p)
	if err != nil {
		return p, 0, err
	}
	return p, info.Size(), nil
}

// Remove deletes the physical file or directory tree for parts. A missing
// entry is not an error.
func (d *Disk) Remove(parts []string) error {
	err := d.fs.RemoveAll(d.Path(parts...))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Files lists the regular files below the physical directory for parts
func (d *Disk) Files(parts []string) ([]string, error) {
	var files []string
	err := afero.Walk(d.fs, d.Path(parts...), func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
