package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/filesystem"
	"github.com/brettbedarf/mirrorfs/metadata"
	"github.com/brettbedarf/mirrorfs/service"
	"github.com/gin-gonic/gin"
)

// WarningsHeader carries the number of mirror calls that failed during an
// otherwise successful request
const WarningsHeader = "X-Mirror-Warnings"

const (
	msgMissingPath        = "Missing path"
	msgMissingPathContent = "Missing path or content"
	msgFileNotFound       = "File not found"
)

type metadataRow struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

type cloudFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/filesystem", s.tree)
	r.GET("/list", s.list)
	r.GET("/create-file-api", s.createFile)
	r.GET("/create-folder", s.createFolder)
	r.GET("/read-file", s.readFile)
	r.GET("/write-file", s.writeFile)
	r.GET("/append-file", s.appendFile)
	r.GET("/metadata", s.metadata)
	r.GET("/cloud", s.cloud)

	r.POST("/delete-local", s.deleteLocal)
	r.POST("/delete-cloud", s.deleteCloud)
	r.POST("/download", s.download)
	r.POST("/restoreall", s.restoreAll)
	r.POST("/sync-folder", s.syncFolder)
	r.POST("/create-file", s.upload)
	r.POST("/reload", s.reload)
}

// param reads key from the query string, falling back to a form body
func param(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetQuery(key); ok {
		return v, true
	}
	return c.GetPostForm(key)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, filesystem.ErrNotFound), errors.Is(err, mirrorfs.ErrRemoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, filesystem.ErrInvalidName),
		errors.Is(err, filesystem.ErrInvalidPath),
		errors.Is(err, filesystem.ErrNotADirectory),
		errors.Is(err, filesystem.ErrIsADirectory):
		return http.StatusBadRequest
	case errors.Is(err, filesystem.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrRemoteUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as plain text. notFound replaces the message for 404s
// when set.
func fail(c *gin.Context, err error, notFound string) {
	status := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusNotFound && notFound != "" {
		msg = notFound
	}
	c.String(status, "%s", msg)
}

// failLookup is fail for handlers addressing an existing entry. A file standing
// in for a parent directory means the entry cannot exist, so it reads as not found.
func failLookup(c *gin.Context, err error, notFound string) {
	if errors.Is(err, filesystem.ErrNotADirectory) {
		_ = c.Error(err)
		c.String(http.StatusNotFound, "%s", notFound)
		return
	}
	fail(c, err, notFound)
}

func respond(c *gin.Context, report mirrorfs.Report, msg string) {
	if !report.Clean() {
		c.Header(WarningsHeader, strconv.Itoa(len(report.Warnings)))
	}
	c.String(http.StatusOK, "%s", msg)
}

func (s *Server) tree(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Tree())
}

func (s *Server) list(c *gin.Context) {
	p, _ := param(c, "path")
	infos, err := s.svc.List(p)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, infos)
}

func (s *Server) createFile(c *gin.Context) {
	p, _ := param(c, "path")
	if p == "" {
		c.String(http.StatusBadRequest, msgMissingPath)
		return
	}
	report, err := s.svc.CreateFile(c.Request.Context(), p)
	if err != nil {
		fail(c, err, "")
		return
	}
	respond(c, report, fmt.Sprintf("File created at %s", p))
}

func (s *Server) createFolder(c *gin.Context) {
	p, _ := param(c, "path")
	if p == "" {
		c.String(http.StatusBadRequest, msgMissingPath)
		return
	}
	report, err := s.svc.CreateDirectory(c.Request.Context(), p)
	switch {
	case errors.Is(err, filesystem.ErrAlreadyExists):
		c.String(http.StatusOK, "Folder already exists at %s", p)
	case err != nil:
		fail(c, err, "")
	default:
		respond(c, report, fmt.Sprintf("Folder created at %s", p))
	}
}

func (s *Server) readFile(c *gin.Context) {
	p, _ := param(c, "path")
	if p == "" {
		c.String(http.StatusNotFound, msgFileNotFound)
		return
	}
	content, err := s.svc.ReadFile(p)
	if err != nil {
		failLookup(c, err, msgFileNotFound)
		return
	}
	c.String(http.StatusOK, "%s", content)
}

func (s *Server) writeFile(c *gin.Context) {
	s.updateFile(c, s.svc.WriteFile)
}

func (s *Server) appendFile(c *gin.Context) {
	s.updateFile(c, s.svc.AppendFile)
}

func (s *Server) updateFile(c *gin.Context, update func(ctx context.Context, p, content string) (mirrorfs.Report, error)) {
	p, _ := param(c, "path")
	content, hasContent := param(c, "content")
	if p == "" || !hasContent {
		c.String(http.StatusBadRequest, msgMissingPathContent)
		return
	}
	report, err := update(c.Request.Context(), p, content)
	if err != nil {
		failLookup(c, err, msgFileNotFound)
		return
	}
	respond(c, report, fmt.Sprintf("%s updated", p))
}

func (s *Server) deleteLocal(c *gin.Context) {
	p, _ := param(c, "path")
	if p == "" {
		c.String(http.StatusBadRequest, msgMissingPath)
		return
	}
	report, err := s.svc.DeleteLocal(c.Request.Context(), p)
	if err != nil {
		failLookup(c, err, fmt.Sprintf("Path not found: %s", p))
		return
	}
	respond(c, report, fmt.Sprintf("Deleted %s from local", p))
}

func (s *Server) deleteCloud(c *gin.Context) {
	p, _ := param(c, "path")
	if p == "" {
		c.String(http.StatusBadRequest, msgMissingPath)
		return
	}
	name, err := s.svc.DeleteCloud(c.Request.Context(), p)
	if err != nil {
		fail(c, err, fmt.Sprintf("%s not found in cloud", name))
		return
	}
	c.String(http.StatusOK, "Deleted %s from cloud", name)
}

func (s *Server) download(c *gin.Context) {
	p, _ := param(c, "path")
	if p == "" {
		c.String(http.StatusBadRequest, msgMissingPath)
		return
	}
	report, err := s.svc.Download(c.Request.Context(), p)
	if err != nil {
		fail(c, err, fmt.Sprintf("%s not found in cloud", p))
		return
	}
	respond(c, report, fmt.Sprintf("Downloaded %s from cloud", p))
}

func (s *Server) restoreAll(c *gin.Context) {
	report, err := s.svc.RestoreAll(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	respond(c, report, "All files restored from cloud")
}

func (s *Server) syncFolder(c *gin.Context) {
	p, _ := param(c, "path")
	if p == "" {
		c.String(http.StatusBadRequest, msgMissingPath)
		return
	}
	_, report, err := s.svc.SyncFolder(c.Request.Context(), p)
	if err != nil {
		fail(c, err, fmt.Sprintf("Folder not found: %s", p))
		return
	}
	respond(c, report, fmt.Sprintf("Synced %s", p))
}

func (s *Server) upload(c *gin.Context) {
	filename, _ := c.GetPostForm("filename")
	content, _ := c.GetPostForm("content")
	if filename == "" {
		c.String(http.StatusBadRequest, "Missing filename")
		return
	}
	report, err := s.svc.Upload(c.Request.Context(), filename, content)
	if err != nil {
		fail(c, err, "")
		return
	}
	if !report.Clean() {
		c.Header(WarningsHeader, strconv.Itoa(len(report.Warnings)))
	}
	c.Redirect(http.StatusSeeOther, "/cloud")
}

func (s *Server) reload(c *gin.Context) {
	if err := s.svc.Reload(c.Request.Context()); err != nil {
		fail(c, err, "")
		return
	}
	c.String(http.StatusOK, "Reloaded")
}

func (s *Server) metadata(c *gin.Context) {
	rows, err := s.svc.Metadata(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	out := make([]metadataRow, 0, len(rows))
	for _, md := range rows {
		out = append(out, metadataRow{
			Path:         md.Path,
			Name:         md.Name,
			Size:         md.Size,
			LastModified: metadata.Readable(md.LastModified),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) cloud(c *gin.Context) {
	entries, err := s.svc.CloudFiles(c.Request.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	out := make([]cloudFile, 0, len(entries))
	for _, e := range entries {
		out = append(out, cloudFile{Name: e.Name, URL: e.URL})
	}
	c.JSON(http.StatusOK, out)
}
