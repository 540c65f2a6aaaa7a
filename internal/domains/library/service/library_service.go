package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	authormodel "bgpiesa-backend/internal/domains/author/model"
	"bgpiesa-backend/internal/domains/library/model"
	"bgpiesa-backend/internal/domains/library/repository"
	playmodel "bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/shared/utils"
	"bgpiesa-backend/internal/shared/validators"
	"bgpiesa-backend/pkg/cache"
)

// AuthorGetter and PlayGetter resolve the references a piece points at
type AuthorGetter interface {
	GetByID(ctx context.Context, id int64) (*authormodel.Author, error)
}

type PlayGetter interface {
	GetByID(ctx context.Context, id int64) (*playmodel.Play, error)
}

type ServiceInterface interface {
	Create(ctx context.Context, req *model.CreatePieceRequest) (*model.LiteraryPiece, error)
	GetByID(ctx context.Context, id int64) (*model.LiteraryPiece, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.LiteraryPiece, error)
	Update(ctx context.Context, id int64, req *model.UpdatePieceRequest) (*model.LiteraryPiece, error)
	// PDFLocation returns the stored document reference or ErrPDFMissing
	PDFLocation(ctx context.Context, id int64) (string, error)
}

type libraryService struct {
	repo     repository.RepositoryInterface
	authors  AuthorGetter
	plays    PlayGetter
	cache    cache.Cache
	cacheTTL time.Duration
	now      utils.Clock
}

func NewLibraryService(repo repository.RepositoryInterface, authors AuthorGetter, plays PlayGetter, c cache.Cache, cacheTTL time.Duration, now utils.Clock) ServiceInterface {
	if now == nil {
		now = utils.SystemClock
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &libraryService{repo: repo, authors: authors, plays: plays, cache: c, cacheTTL: cacheTTL, now: now}
}

func detailCacheKey(id int64) string {
	return fmt.Sprintf("%spiece:%d", cache.CatalogPrefix, id)
}

func (s *libraryService) checkReferences(ctx context.Context, authorID int64, playID *int64) error {
	if _, err := s.authors.GetByID(ctx, authorID); err != nil {
		return err
	}
	if playID != nil {
		if _, err := s.plays.GetByID(ctx, *playID); err != nil {
			return err
		}
	}
	return nil
}

func (s *libraryService) Create(ctx context.Context, req *model.CreatePieceRequest) (*model.LiteraryPiece, error) {
	if err := validators.ToAppError(req.Validate()); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.AuthorID, req.PlayID); err != nil {
		return nil, err
	}

	lp := req.ToEntity()
	now := s.now()
	lp.CreatedAt = now
	lp.UpdatedAt = now

	return s.repo.Create(ctx, lp)
}

func (s *libraryService) GetByID(ctx context.Context, id int64) (*model.LiteraryPiece, error) {
	var cached model.LiteraryPiece
	if hit, err := s.cache.Get(ctx, detailCacheKey(id), &cached); err == nil && hit {
		return &cached, nil
	}

	lp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, detailCacheKey(id), lp, s.cacheTTL)
	return lp, nil
}

func (s *libraryService) List(ctx context.Context, filter model.ListFilter) ([]model.LiteraryPiece, error) {
	return s.repo.List(ctx, filter)
}

func (s *libraryService) Update(ctx context.Context, id int64, req *model.UpdatePieceRequest) (*model.LiteraryPiece, error) {
	if err := validators.ToAppError(req.Validate()); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	req.Apply(&updated)

	if req.AuthorID.Set || (req.PlayID.Set && updated.PlayID != nil) {
		if err := s.checkReferences(ctx, updated.AuthorID, updated.PlayID); err != nil {
			return nil, err
		}
	}

	updated.UpdatedAt = utils.NextTimestamp(current.UpdatedAt, s.now())
	return s.repo.Update(ctx, &updated)
}

func (s *libraryService) PDFLocation(ctx context.Context, id int64) (string, error) {
	lp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if lp.PDFPath == nil || strings.TrimSpace(*lp.PDFPath) == "" {
		return "", model.ErrPDFMissing
	}
	return *lp.PDFPath, nil
}
