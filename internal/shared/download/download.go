package download

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"bgpiesa-backend/internal/infrastructure/storage"
	"bgpiesa-backend/internal/shared/response"
	"bgpiesa-backend/pkg/logger"
)

const (
	Attachment = "attachment"
	Inline     = "inline"

	ContentTypePDF = "application/pdf"

	msgFileMissing = "Файлът липсва."
)

// Options describe how a document is handed to the browser
type Options struct {
	Filename    string
	Disposition string
	// ContentType forces the response type. Empty keeps the upstream type.
	ContentType string
}

func (o Options) disposition() string {
	d := o.Disposition
	if d == "" {
		d = Attachment
	}
	if o.Filename == "" {
		return d
	}
	return fmt.Sprintf("%s; filename=%q", d, o.Filename)
}

// Owner reports whether a URL points into our object store
type Owner interface {
	IsManaged(url string) bool
}

// Server resolves a stored document reference into a response:
// store URLs are proxied (redirect on failure), other remote URLs are
// redirected, anything else is a path under the local media root.
type Server struct {
	fetcher     storage.Fetcher
	owner       Owner
	mediaRoot   string
	mediaPrefix string
}

func NewServer(fetcher storage.Fetcher, owner Owner, mediaRoot, mediaPrefix string) *Server {
	return &Server{fetcher: fetcher, owner: owner, mediaRoot: mediaRoot, mediaPrefix: mediaPrefix}
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func (s *Server) Serve(c *gin.Context, location string, opts Options) {
	if isRemote(location) {
		if s.owner == nil || !s.owner.IsManaged(location) {
			c.Redirect(http.StatusFound, location)
			return
		}
		s.proxy(c, location, opts)
		return
	}
	s.serveLocal(c, location, opts)
}

func (s *Server) proxy(c *gin.Context, location string, opts Options) {
	asset, err := s.fetcher.Fetch(c.Request.Context(), location)
	if err != nil {
		logger.Warn("asset proxy failed, redirecting", map[string]interface{}{
			"url":   location,
			"error": err.Error(),
		})
		c.Redirect(http.StatusFound, location)
		return
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = asset.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, int64(len(asset.Data)), contentType, bytes.NewReader(asset.Data), map[string]string{
		"Content-Disposition": opts.disposition(),
	})
}

// LocalPath maps a stored reference onto the media root.
// Returns false when the reference escapes the root.
func (s *Server) LocalPath(location string) (string, bool) {
	rel := strings.TrimPrefix(location, s.mediaPrefix)
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if rel == "" {
		return "", false
	}

	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", false
	}
	return filepath.Join(s.mediaRoot, cleaned), true
}

func (s *Server) serveLocal(c *gin.Context, location string, opts Options) {
	path, ok := s.LocalPath(location)
	if !ok {
		response.NotFound(c, msgFileMissing)
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		response.NotFound(c, msgFileMissing)
		return
	}

	if opts.ContentType != "" {
		c.Header("Content-Type", opts.ContentType)
	}
	c.Header("Content-Disposition", opts.disposition())
	c.File(path)
}
