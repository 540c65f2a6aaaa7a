package container

import (
	"context"
	"fmt"
	"time"

	"bgpiesa-backend/internal/config"
	infraCache "bgpiesa-backend/internal/infrastructure/cache"
	"bgpiesa-backend/internal/infrastructure/database"
	"bgpiesa-backend/internal/infrastructure/database/migration"
	"bgpiesa-backend/internal/infrastructure/storage"
	"bgpiesa-backend/internal/shared/download"
	"bgpiesa-backend/internal/shared/utils"
	"bgpiesa-backend/pkg/cache"
	"bgpiesa-backend/pkg/jwt"
	"bgpiesa-backend/pkg/logger"

	adminHandler "bgpiesa-backend/internal/domains/admin/handler"
	adminService "bgpiesa-backend/internal/domains/admin/service"
	authorHandler "bgpiesa-backend/internal/domains/author/handler"
	authorRepo "bgpiesa-backend/internal/domains/author/repository"
	authorService "bgpiesa-backend/internal/domains/author/service"
	libraryHandler "bgpiesa-backend/internal/domains/library/handler"
	libraryRepo "bgpiesa-backend/internal/domains/library/repository"
	libraryService "bgpiesa-backend/internal/domains/library/service"
	mediaService "bgpiesa-backend/internal/domains/media/service"
	playHandler "bgpiesa-backend/internal/domains/play/handler"
	playRepo "bgpiesa-backend/internal/domains/play/repository"
	playService "bgpiesa-backend/internal/domains/play/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the whole dependency graph, built once at start
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Store       storage.Store
	MemoryStore *storage.MemoryStore // set only for the memory driver
	JWTManager  *jwt.Manager
	Downloads   *download.Server
	Clock       utils.Clock

	// Repositories
	AuthorRepo  authorRepo.RepositoryInterface
	PlayRepo    playRepo.RepositoryInterface
	LibraryRepo libraryRepo.RepositoryInterface

	// Services
	Media          *mediaService.MediaService
	AuthorService  authorService.ServiceInterface
	PlayService    playService.ServiceInterface
	LibraryService libraryService.ServiceInterface
	AdminService   adminService.ServiceInterface

	// Handlers
	AuthorHandler  *authorHandler.AuthorHandler
	PlayHandler    *playHandler.PlayHandler
	LibraryHandler *libraryHandler.LibraryHandler
	AdminHandler   *adminHandler.AdminHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the graph in dependency order:
// config -> database + schema -> cache -> object store -> repositories -> services -> handlers
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	logger.Info("Initializing container", map[string]interface{}{
		"app":         cfg.App.Name,
		"environment": cfg.App.Environment,
	})

	c := &Container{Config: cfg, Clock: utils.SystemClock}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initSchema(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initCache(ctx)

	if err := c.initStorage(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.AccessTokenExpiry)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init jwt: %w", err)
	}
	c.JWTManager = tokens

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("Container initialized", nil)
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initDatabase(ctx context.Context) error {
	db := database.NewPostgresDB(&c.Config.Database)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(connectCtx); err != nil {
		db.Close()
		return fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	return nil
}

// initSchema creates missing tables, upgrades older layouts, then indexes
func (c *Container) initSchema(ctx context.Context) error {
	pool := c.DB.Pool

	if err := database.EnsureTables(ctx, pool); err != nil {
		return err
	}
	if err := migration.NewMigrator(migration.NewPostgresCatalog(pool)).Run(ctx); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	if err := database.EnsureIndexes(ctx, pool); err != nil {
		return err
	}

	logger.Info("Schema ready", nil)
	return nil
}

// initCache falls back to a no-op cache when Redis is off or unreachable
func (c *Container) initCache(ctx context.Context) {
	c.Cache = cache.Noop{}

	if c.Config.Redis.Addr == "" {
		logger.Info("Read cache disabled", nil)
		return
	}

	rc := infraCache.NewRedisCache(c.Config.Redis.Addr, c.Config.Redis.Password, c.Config.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rc.Connect(pingCtx); err != nil {
		logger.Warn("Redis unavailable, read cache disabled", map[string]interface{}{"error": err.Error()})
		_ = rc.Close()
		return
	}
	c.Cache = rc
}

func (c *Container) initStorage(ctx context.Context) error {
	sc := c.Config.Storage

	switch sc.Driver {
	case config.StorageDriverMemory:
		mem := storage.NewMemoryStore(sc.PublicURL)
		c.Store = mem
		c.MemoryStore = mem
	case config.StorageDriverMinIO:
		store, err := storage.NewMinIOStore(ctx, sc.MinIO, sc.PublicURL)
		if err != nil {
			return fmt.Errorf("failed to init object store: %w", err)
		}
		c.Store = store
	default:
		return fmt.Errorf("unsupported storage driver %q", sc.Driver)
	}

	fetcher := storage.NewHTTPFetcher(sc.FetchTimeout, sc.MaxUploadBytes)
	c.Downloads = download.NewServer(fetcher, c.Store, c.Config.Media.Root, c.Config.Media.URLPrefix)

	logger.Info("Object store ready", map[string]interface{}{
		"driver":     sc.Driver,
		"public_url": sc.PublicURL,
	})
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.AuthorRepo = authorRepo.NewPostgresRepository(pool)
	c.PlayRepo = playRepo.NewPostgresRepository(pool)
	c.LibraryRepo = libraryRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	ttl := c.Config.Redis.TTL

	c.Media = mediaService.NewMediaService(c.Store, c.AuthorRepo, c.PlayRepo, c.LibraryRepo, c.Clock)

	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, c.PlayRepo, c.Cache, ttl, c.Clock)
	c.PlayService = playService.NewPlayService(c.PlayRepo, c.Media, c.Cache, ttl, c.Clock)
	c.LibraryService = libraryService.NewLibraryService(c.LibraryRepo, c.AuthorRepo, c.PlayRepo, c.Cache, ttl, c.Clock)
	c.AdminService = adminService.NewAdminService(c.Config.Admin.Password, c.JWTManager)
}

func (c *Container) initHandlers() {
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService, c.Media)
	c.PlayHandler = playHandler.NewPlayHandler(c.PlayService, c.Media, c.Downloads)
	c.LibraryHandler = libraryHandler.NewLibraryHandler(c.LibraryService, c.Media, c.Downloads)
	c.AdminHandler = adminHandler.NewAdminHandler(c.AdminService)
}

// ========================================
// HELPER METHODS
// ========================================

// Cleanup releases pooled connections. Safe on a partially built container.
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Error("Failed to close database", err)
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			logger.Error("Failed to close Redis", err)
		}
	}

	logger.Info("Container cleanup completed", nil)
}
