package service

import (
	"context"
	"fmt"
	"time"

	"bgpiesa-backend/internal/domains/author/model"
	"bgpiesa-backend/internal/domains/author/repository"
	playmodel "bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/shared/utils"
	"bgpiesa-backend/internal/shared/validators"
	"bgpiesa-backend/pkg/cache"
)

// AuthorDetail is an author together with their plays
type AuthorDetail struct {
	model.Author
	Plays []playmodel.Play `json:"plays"`
}

// PlayLister is the slice of the play repository the author pages need
type PlayLister interface {
	ListByAuthor(ctx context.Context, authorID int64, search string) ([]playmodel.Play, error)
}

type ServiceInterface interface {
	Create(ctx context.Context, req *model.CreateAuthorRequest) (*model.Author, error)
	GetByID(ctx context.Context, id int64) (*model.Author, error)
	GetDetail(ctx context.Context, id int64, playSearch string) (*AuthorDetail, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.Author, error)
	Update(ctx context.Context, id int64, req *model.UpdateAuthorRequest) (*model.Author, error)
}

type authorService struct {
	repo     repository.RepositoryInterface
	plays    PlayLister
	cache    cache.Cache
	cacheTTL time.Duration
	now      utils.Clock
}

func NewAuthorService(repo repository.RepositoryInterface, plays PlayLister, c cache.Cache, cacheTTL time.Duration, now utils.Clock) ServiceInterface {
	if now == nil {
		now = utils.SystemClock
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &authorService{repo: repo, plays: plays, cache: c, cacheTTL: cacheTTL, now: now}
}

func detailCacheKey(id int64) string {
	return fmt.Sprintf("%sauthor:%d", cache.CatalogPrefix, id)
}

func (s *authorService) Create(ctx context.Context, req *model.CreateAuthorRequest) (*model.Author, error) {
	if err := validators.ToAppError(req.Validate()); err != nil {
		return nil, err
	}

	a := req.ToEntity()
	now := s.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	return s.repo.Create(ctx, a)
}

func (s *authorService) GetByID(ctx context.Context, id int64) (*model.Author, error) {
	return s.repo.GetByID(ctx, id)
}

// GetDetail loads the author and their plays, optionally filtered by title.
// The unfiltered variant is served from the read cache when present.
func (s *authorService) GetDetail(ctx context.Context, id int64, playSearch string) (*AuthorDetail, error) {
	cacheable := playSearch == ""
	if cacheable {
		var cached AuthorDetail
		if hit, err := s.cache.Get(ctx, detailCacheKey(id), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plays, err := s.plays.ListByAuthor(ctx, id, playSearch)
	if err != nil {
		return nil, err
	}

	detail := &AuthorDetail{Author: *a, Plays: plays}
	if cacheable {
		_ = s.cache.Set(ctx, detailCacheKey(id), detail, s.cacheTTL)
	}
	return detail, nil
}

func (s *authorService) List(ctx context.Context, filter model.ListFilter) ([]model.Author, error) {
	return s.repo.List(ctx, filter)
}

func (s *authorService) Update(ctx context.Context, id int64, req *model.UpdateAuthorRequest) (*model.Author, error) {
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

	return s.repo.Update(ctx, &updated)
}
