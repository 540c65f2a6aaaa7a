package storage

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Kind is the resource class an asset is stored under
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindRaw   Kind = "raw"
	KindAuto  Kind = "auto" // unknown, any of the above
)

// Folders used by the catalog
const (
	FolderAuthors = "authors"
	FolderPDFs    = "pdfs"
	FolderImages  = "images"
	FolderFiles   = "files"
)

// Store is the object store contract used by the media coordinator.
// Delete has no error result: removal is best effort and must never
// block the database mutation it accompanies.
type Store interface {
	Upload(ctx context.Context, content io.Reader, folder, namePrefix string) (string, error)
	Delete(ctx context.Context, url string)
	IsManaged(url string) bool
}

const uploadMarker = "/upload/"

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ParseAssetURL recovers the store identifier and kind from a retrieval URL
// of the shape {domain}/{kind}/upload/[v{version}/]{folder}/{name}.{ext}.
// The identifier keeps its folder segments and loses the extension.
func ParseAssetURL(url string) (identifier string, kind Kind, ok bool) {
	idx := strings.Index(url, uploadMarker)
	if idx < 0 {
		return "", KindAuto, false
	}

	rest := url[idx+len(uploadMarker):]
	if q := strings.IndexAny(rest, "?#"); q >= 0 {
		rest = rest[:q]
	}

	if first, tail, found := strings.Cut(rest, "/"); found && versionSegment.MatchString(first) {
		rest = tail
	}

	if dot := strings.LastIndex(rest, "."); dot > strings.LastIndex(rest, "/") {
		rest = rest[:dot]
	}
	if rest == "" {
		return "", KindAuto, false
	}

	return rest, kindFromURL(url), true
}

func kindFromURL(url string) Kind {
	switch {
	case strings.Contains(url, "/image/"):
		return KindImage
	case strings.Contains(url, "/video/"):
		return KindVideo
	case strings.Contains(url, "/raw/"), strings.HasSuffix(strings.ToLower(url), ".pdf"):
		return KindRaw
	default:
		return KindAuto
	}
}

// kindFromMIME maps a sniffed content type to a storage kind
func kindFromMIME(mime string) Kind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	default:
		return KindRaw
	}
}

// UniqueName joins prefix with an 8 hex character random suffix
func UniqueName(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if prefix == "" {
		return suffix
	}
	return prefix + "-" + suffix
}

// hasBase reports whether url lives below base
func hasBase(url, base string) bool {
	return base != "" && strings.HasPrefix(url, strings.TrimRight(base, "/")+"/")
}
