// Package metadata keeps per-file metadata in a SQLite table
// (file_metadata) through gorm.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned by Get when no row has the requested path
var ErrNotFound = errors.New("metadata not found")

// Record is one row of file_metadata. LastModified holds epoch seconds.
type Record struct {
	ID           uint   `gorm:"primaryKey"`
	Path         string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	Size         int64
	LastModified int64 `gorm:"column:last_modified"`
}

func (Record) TableName() string {
	return "file_metadata"
}

func (r Record) toMetadata() mirrorfs.FileMetadata {
	return mirrorfs.FileMetadata{
		Path:         r.Path,
		Name:         r.Name,
		Size:         r.Size,
		LastModified: time.Unix(r.LastModified, 0),
	}
}

// Index implements [mirrorfs.MetadataIndex] on top of gorm
type Index struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the file_metadata table.
func Open(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create metadata dir %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(util.NewLogLogger("gorm", util.WarnLevel), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open metadata db %s: %w", path, err)
	}
	return New(db)
}

// New wraps an open gorm handle and migrates the schema
func New(db *gorm.DB) (*Index, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate metadata: %w", err)
	}
	return &Index{db: db}, nil
}

// Upsert inserts md or, when its path already exists, updates size and
// last modified time in place.
func (i *Index) Upsert(ctx context.Context, md mirrorfs.FileMetadata) error {
	rec := Record{
		Path:         md.Path,
		Name:         md.Name,
		Size:         md.Size,
		LastModified: md.LastModified.Unix(),
	}
	err := i.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"size", "last_modified"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert metadata %s: %w", md.Path, err)
	}
	logger := util.GetLogger("Metadata.Upsert")
	logger.Trace().Str("path", md.Path).Int64("size", md.Size).Msg("Upserted metadata")
	return nil
}

// List returns every row ordered by path
func (i *Index) List(ctx context.Context) ([]mirrorfs.FileMetadata, error) {
	var recs []Record
	if err := i.db.WithContext(ctx).Order("path").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list metadata: %w", err)
	}
	out := make([]mirrorfs.FileMetadata, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toMetadata())
	}
	return out, nil
}

// Get returns the row for path
func (i *Index) Get(ctx context.Context, path string) (mirrorfs.FileMetadata, error) {
	var rec Record
	err := i.db.WithContext(ctx).Where("path = ?", path).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return mirrorfs.FileMetadata{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return mirrorfs.FileMetadata{}, fmt.Errorf("get metadata %s: %w", path, err)
	}
	return rec.toMetadata(), nil
}

// Close releases the underlying database handle
func (i *Index) Close() error {
	sqlDB, err := i.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Readable formats a modification time for display; the zero or epoch time
// renders as N/A.
func Readable(t time.Time) string {
	if t.IsZero() || t.Unix() <= 0 {
		return "N/A"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

var _ mirrorfs.MetadataIndex = (*Index)(nil)
