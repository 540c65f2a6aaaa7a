package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgpiesa-backend/internal/config"
	"bgpiesa-backend/internal/infrastructure/storage"
	"bgpiesa-backend/pkg/cache"
)

type fakeDB struct{ err error }

func (f fakeDB) HealthCheck(context.Context) error { return f.err }

type pingCache struct {
	cache.Noop
	err error
}

func (p pingCache) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := config.AppConfig{Name: "bgpiesa", Version: "1.2.3"}

	tests := []struct {
		name     string
		db       healthChecker
		cache    cache.Cache
		code     int
		status   string
		dbStatus string
		cacheRes string
	}{
		{"healthy without cache", fakeDB{}, cache.Noop{}, http.StatusOK, "ok", "ok", "disabled"},
		{"healthy with cache", fakeDB{}, pingCache{}, http.StatusOK, "ok", "ok", "ok"},
		{"cache down stays ok", fakeDB{}, pingCache{err: errors.New("down")}, http.StatusOK, "ok", "ok", "error"},
		{"database down", fakeDB{err: errors.New("down")}, cache.Noop{}, http.StatusServiceUnavailable, "degraded", "error", "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/api/health", healthCheckHandler(app, tt.db, tt.cache))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			require.Equal(t, tt.code, w.Code)

			var body struct {
				Status   string            `json:"status"`
				App      string            `json:"app"`
				Services map[string]string `json:"services"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, "bgpiesa", body.App)
			assert.Equal(t, tt.dbStatus, body.Services["database"])
			assert.Equal(t, tt.cacheRes, body.Services["cache"])
		})
	}
}

func TestMemoryObjectHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := storage.NewMemoryStore("http://localhost:8000/store")

	url, err := store.Upload(context.Background(), strings.NewReader("%PDF-1.4 test"), storage.FolderPDFs, "play-1-script")
	require.NoError(t, err)

	r := gin.New()
	r.GET(config.MemoryStorePath+"/*key", memoryObjectHandler(store))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(url, "http://localhost:8000"), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 test", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/pdf")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/store/raw/upload/pdfs/missing.pdf", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
