package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "signing-key")
	t.Setenv("MINIO_ACCESS_KEY", "minio")
	t.Setenv("MINIO_SECRET_KEY", "minio123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bgpiesa", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 12*time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "media", cfg.Media.Root)
	assert.Equal(t, StorageDriverMinIO, cfg.Storage.Driver)
	assert.Equal(t, "http://localhost:9000/bgpiesa", cfg.Storage.PublicURL)
	assert.Equal(t, int64(50<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, 30*time.Second, cfg.Storage.FetchTimeout)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BACKEND_CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("STORAGE_PUBLIC_URL", "https://cdn.example/assets/")
	t.Setenv("ASSET_FETCH_TIMEOUT", "5s")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, "https://cdn.example/assets", cfg.Storage.PublicURL)
	assert.Equal(t, 5*time.Second, cfg.Storage.FetchTimeout)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.URL)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MINIO_ACCESS_KEY", "")
	t.Setenv("MINIO_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "MINIO_ACCESS_KEY")
}

func TestLoad_MemoryStorage(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "signing-key")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/store", cfg.Storage.PublicURL)

	t.Setenv("APP_ENV", "production")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequiredEnv(t)

	t.Run("algorithm", func(t *testing.T) {
		t.Setenv("JWT_ALGORITHM", "RS256")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_ALGORITHM")
	})

	t.Run("duration", func(t *testing.T) {
		t.Setenv("ASSET_FETCH_TIMEOUT", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "ASSET_FETCH_TIMEOUT")
	})

	t.Run("port", func(t *testing.T) {
		t.Setenv("DB_PORT", "abc")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_PORT")
	})
}
