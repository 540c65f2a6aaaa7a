package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantID   string
		wantKind Kind
		wantOK   bool
	}{
		{
			name:     "versioned image",
			url:      "https://store.example/image/upload/v123/authors/author-1-abcd1234.jpg",
			wantID:   "authors/author-1-abcd1234",
			wantKind: KindImage,
			wantOK:   true,
		},
		{
			name:     "unversioned raw pdf",
			url:      "https://store.example/raw/upload/pdfs/play-7-script-0a1b2c3d.pdf",
			wantID:   "pdfs/play-7-script-0a1b2c3d",
			wantKind: KindRaw,
			wantOK:   true,
		},
		{
			name:     "pdf suffix implies raw",
			url:      "https://store.example/x/upload/v9/pdfs/piece-2-deadbeef.PDF",
			wantID:   "pdfs/piece-2-deadbeef",
			wantKind: KindRaw,
			wantOK:   true,
		},
		{
			name:     "video",
			url:      "https://store.example/video/upload/files/play-3-00ff00ff.mp4",
			wantID:   "files/play-3-00ff00ff",
			wantKind: KindVideo,
			wantOK:   true,
		},
		{
			name:     "unknown kind",
			url:      "https://store.example/files/upload/files/play-3-00ff00ff.docx",
			wantID:   "files/play-3-00ff00ff",
			wantKind: KindAuto,
			wantOK:   true,
		},
		{
			name:     "version-like folder is only stripped when first",
			url:      "https://store.example/image/upload/images/v2/play-1-11111111.png",
			wantID:   "images/v2/play-1-11111111",
			wantKind: KindImage,
			wantOK:   true,
		},
		{
			name:     "no extension",
			url:      "https://store.example/image/upload/v1/authors/author-5-cafebabe",
			wantID:   "authors/author-5-cafebabe",
			wantKind: KindImage,
			wantOK:   true,
		},
		{
			name:   "no upload marker",
			url:    "https://elsewhere.example/photos/1.jpg",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, kind, ok := ParseAssetURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestUniqueName(t *testing.T) {
	suffix := regexp.MustCompile(`^[0-9a-f]{8}$`)

	bare := UniqueName("")
	assert.Regexp(t, suffix, bare)

	named := UniqueName("author-1")
	require.True(t, strings.HasPrefix(named, "author-1-"))
	assert.Regexp(t, suffix, strings.TrimPrefix(named, "author-1-"))

	assert.NotEqual(t, UniqueName("x"), UniqueName("x"))
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestMemoryStore_UploadAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://localhost:8000/store")

	url, err := store.Upload(ctx, bytes.NewReader(pngHeader), FolderAuthors, "author-1")
	require.NoError(t, err)
	assert.Regexp(t, `^http://localhost:8000/store/image/upload/authors/author-1-[0-9a-f]{8}\.png$`, url)
	assert.True(t, store.IsManaged(url))

	data, contentType, ok := store.Get(url)
	require.True(t, ok)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", contentType)

	pdfURL, err := store.Upload(ctx, strings.NewReader("%PDF-1.4\n%âãÏÓ\n"), FolderPDFs, "play-2-script")
	require.NoError(t, err)
	assert.Contains(t, pdfURL, "/raw/upload/pdfs/play-2-script-")
	assert.Equal(t, 2, store.Len())

	store.Delete(ctx, url)
	assert.Equal(t, 1, store.Len())

	// foreign and malformed urls are ignored
	store.Delete(ctx, "https://elsewhere.example/raw/upload/pdfs/x.pdf")
	store.Delete(ctx, "http://localhost:8000/store/garbage")
	assert.Equal(t, 1, store.Len())
}

func TestIsManaged(t *testing.T) {
	store := NewMemoryStore("https://cdn.example/bucket")

	assert.True(t, store.IsManaged("https://cdn.example/bucket/image/upload/a.png"))
	assert.False(t, store.IsManaged("https://cdn.example/bucket-other/image/upload/a.png"))
	assert.False(t, store.IsManaged("/media/pdfs/a.pdf"))
	assert.False(t, store.IsManaged(""))
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		case "/big":
			_, _ = w.Write(bytes.Repeat([]byte("a"), 64))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		asset, err := NewHTTPFetcher(time.Second, 0).Fetch(ctx, srv.URL+"/ok.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), asset.Data)
		assert.Equal(t, "application/pdf", asset.ContentType)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := NewHTTPFetcher(time.Second, 0).Fetch(ctx, srv.URL+"/missing")
		assert.Error(t, err)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := NewHTTPFetcher(time.Second, 16).Fetch(ctx, srv.URL+"/big")
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := NewHTTPFetcher(50*time.Millisecond, 0).Fetch(ctx, srv.URL+"/slow")
		assert.Error(t, err)
	})
}
