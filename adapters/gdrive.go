package adapters

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/config"
	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const driveListFields = "nextPageToken, files(id, name, size, modifiedTime, webViewLink)"

// DriveProvider builds a Google Drive remote from the OAuth client settings
// and the token cached by the auth command. Options are passed to
// drive.NewService after the authenticated client; tests use them to point
// the service at a fake endpoint.
type DriveProvider struct {
	Options []option.ClientOption
}

func (p *DriveProvider) NewRemote(ctx context.Context, cfg *config.Config, disk afero.Fs) (mirrorfs.RemoteMirror, error) {
	opts := p.Options
	if len(opts) == 0 {
		oauthCfg, err := DriveOAuthConfig(cfg, disk)
		if err != nil {
			return nil, err
		}
		tok, err := LoadToken(disk, cfg.DriveTokenPath)
		if err != nil {
			return nil, errors.Wrap(err, "no usable drive token; run the auth command first")
		}
		opts = []option.ClientOption{option.WithHTTPClient(oauthCfg.Client(ctx, tok))}
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create drive service")
	}
	remote := NewDriveRemote(svc, disk, cfg.DriveFolderID)
	remote.ShareLinks = cfg.DriveShareLinks
	return remote, nil
}

// DriveRemote mirrors files into Google Drive. Objects are matched by name;
// when FolderID is set, lookups and uploads are confined to that folder.
type DriveRemote struct {
	// ShareLinks grants anyone with the link read access to newly created files
	ShareLinks bool

	svc      *drive.Service
	disk     afero.Fs
	folderID string
}

func NewDriveRemote(svc *drive.Service, disk afero.Fs, folderID string) *DriveRemote {
	return &DriveRemote{svc: svc, disk: disk, folderID: folderID}
}

// escapeQuery quotes a value for use inside a single quoted Drive query literal
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

func (d *DriveRemote) scopeQuery(q string) string {
	q += " and trashed=false"
	if d.folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(d.folderID))
	}
	return q
}

// findByName returns the first non-trashed file named name
func (d *DriveRemote) findByName(ctx context.Context, name string) (*drive.File, error) {
	q := d.scopeQuery(fmt.Sprintf("name='%s'", escapeQuery(name)))
	res, err := d.svc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "look up %s", name)
	}
	if len(res.Files) == 0 {
		return nil, errors.Wrap(mirrorfs.ErrRemoteNotFound, name)
	}
	return res.Files[0], nil
}

func (d *DriveRemote) Push(ctx context.Context, localPath string) error {
	logger := util.GetLogger("DriveRemote.Push")
	name := filepath.Base(localPath)

	f, err := d.disk.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "open %s", localPath)
	}
	defer f.Close()

	existing, err := d.findByName(ctx, name)
	if err != nil && !errors.Is(err, mirrorfs.ErrRemoteNotFound) {
		return err
	}

	if existing != nil {
		if _, err := d.svc.Files.Update(existing.Id, &drive.File{}).Media(f).Context(ctx).Do(); err != nil {
			return errors.Wrapf(err, "update %s", name)
		}
		logger.Debug().Str("name", name).Str("id", existing.Id).Msg("Updated drive file")
		return nil
	}

	meta := &drive.File{Name: name, MimeType: mime.TypeByExtension(filepath.Ext(name))}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}
	created, err := d.svc.Files.Create(meta).Media(f).Fields("id").Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "upload %s", name)
	}
	logger.Debug().Str("name", name).Str("id", created.Id).Msg("Uploaded drive file")

	if d.ShareLinks {
		perm := &drive.Permission{Type: "anyone", Role: "reader"}
		if _, err := d.svc.Permissions.Create(created.Id, perm).Context(ctx).Do(); err != nil {
			return errors.Wrapf(err, "share %s", name)
		}
		logger.Debug().Str("name", name).Str("id", created.Id).Msg("Shared drive file")
	}
	return nil
}

func (d *DriveRemote) Fetch(ctx context.Context, name, saveDir string) (string, error) {
	file, err := d.findByName(ctx, name)
	if err != nil {
		return "", err
	}

	resp, err := d.svc.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		if isNotFound(err) {
			return "", errors.Wrap(mirrorfs.ErrRemoteNotFound, name)
		}
		return "", errors.Wrapf(err, "download %s", name)
	}
	defer resp.Body.Close()

	if err := d.disk.MkdirAll(saveDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", saveDir)
	}
	dst := filepath.Join(saveDir, filepath.Base(name))
	out, err := d.disk.Create(dst)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", errors.Wrapf(err, "save %s", dst)
	}
	return dst, nil
}

func (d *DriveRemote) List(ctx context.Context) ([]mirrorfs.RemoteEntry, error) {
	q := "trashed=false"
	if d.folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(d.folderID))
	}

	var entries []mirrorfs.RemoteEntry
	err := d.svc.Files.List().Q(q).Fields(driveListFields).PageSize(100).Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			entry := mirrorfs.RemoteEntry{ID: f.Id, Name: f.Name, URL: f.WebViewLink, Size: f.Size}
			if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
				entry.ModifiedAt = &t
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list drive files")
	}
	return entries, nil
}

// Delete removes the first file named name. Other files sharing the name are
// left alone.
func (d *DriveRemote) Delete(ctx context.Context, name string) error {
	file, err := d.findByName(ctx, name)
	if err != nil {
		return err
	}
	if err := d.svc.Files.Delete(file.Id).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return errors.Wrap(mirrorfs.ErrRemoteNotFound, name)
		}
		return errors.Wrapf(err, "delete %s", name)
	}
	return nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

var _ mirrorfs.RemoteMirror = (*DriveRemote)(nil)
