package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/domains/play/repository"
	"bgpiesa-backend/internal/shared/utils"
	"bgpiesa-backend/internal/shared/validators"
	"bgpiesa-backend/pkg/cache"
)

// ImageDiscarder drops the stored assets behind a play's current images
type ImageDiscarder interface {
	DiscardPlayImages(ctx context.Context, playID int64) error
}

type ServiceInterface interface {
	Create(ctx context.Context, req *model.CreatePlayRequest) (*model.PlayDetail, error)
	GetByID(ctx context.Context, id int64) (*model.Play, error)
	GetDetail(ctx context.Context, id int64) (*model.PlayDetail, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.Play, error)
	Update(ctx context.Context, id int64, req *model.UpdatePlayRequest) (*model.PlayDetail, error)

	// ScriptLocation returns the stored script reference or ErrScriptMissing
	ScriptLocation(ctx context.Context, id int64) (string, error)
	// FileForPlay returns the file only when it belongs to the play
	FileForPlay(ctx context.Context, playID, fileID int64) (*model.PlayFile, error)
}

type playService struct {
	repo     repository.RepositoryInterface
	images   ImageDiscarder
	cache    cache.Cache
	cacheTTL time.Duration
	now      utils.Clock
}

func NewPlayService(repo repository.RepositoryInterface, images ImageDiscarder, c cache.Cache, cacheTTL time.Duration, now utils.Clock) ServiceInterface {
	if now == nil {
		now = utils.SystemClock
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &playService{repo: repo, images: images, cache: c, cacheTTL: cacheTTL, now: now}
}

func detailCacheKey(id int64) string {
	return fmt.Sprintf("%splay:%d", cache.CatalogPrefix, id)
}

func (s *playService) Create(ctx context.Context, req *model.CreatePlayRequest) (*model.PlayDetail, error) {
	if err := validators.ToAppError(req.Validate()); err != nil {
		return nil, err
	}

	p := req.ToEntity()
	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now

	urls := make([]string, 0, len(req.ImageURLs))
	for _, u := range req.ImageURLs {
		urls = append(urls, strings.TrimSpace(u))
	}

	created, err := s.repo.Create(ctx, p, urls)
	if err != nil {
		return nil, err
	}
	return s.repo.GetDetail(ctx, created.ID)
}

func (s *playService) GetByID(ctx context.Context, id int64) (*model.Play, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *playService) GetDetail(ctx context.Context, id int64) (*model.PlayDetail, error) {
	var cached model.PlayDetail
	if hit, err := s.cache.Get(ctx, detailCacheKey(id), &cached); err == nil && hit {
		return &cached, nil
	}

	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, detailCacheKey(id), detail, s.cacheTTL)
	return detail, nil
}

func (s *playService) List(ctx context.Context, filter model.ListFilter) ([]model.Play, error) {
	return s.repo.List(ctx, filter)
}

// Update applies the supplied fields. When image_urls was sent the old
// image assets are dropped from the store, then fields and image rows are
// written in one transaction.
func (s *playService) Update(ctx context.Context, id int64, req *model.UpdatePlayRequest) (*model.PlayDetail, error) {
	if err := validators.ToAppError(req.Validate()); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	req.Apply(&updated)
	updated.UpdatedAt = utils.NextTimestamp(current.UpdatedAt, s.now())

	if req.ImageURLs == nil {
		if _, err := s.repo.Update(ctx, &updated); err != nil {
			return nil, err
		}
		return s.repo.GetDetail(ctx, id)
	}

	urls := make([]string, 0, len(*req.ImageURLs))
	for _, u := range *req.ImageURLs {
		urls = append(urls, strings.TrimSpace(u))
	}
	if err := s.images.DiscardPlayImages(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateWithImages(ctx, &updated, urls); err != nil {
		return nil, err
	}

	return s.repo.GetDetail(ctx, id)
}

func (s *playService) ScriptLocation(ctx context.Context, id int64) (string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if p.PDFPath == nil || strings.TrimSpace(*p.PDFPath) == "" {
		return "", model.ErrScriptMissing
	}
	return *p.PDFPath, nil
}

func (s *playService) FileForPlay(ctx context.Context, playID, fileID int64) (*model.PlayFile, error) {
	f, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f.PlayID != playID {
		return nil, model.ErrFileNotFound
	}
	file := f.AsFile()
	return &file, nil
}
