package repository

import (
	"context"

	"bgpiesa-backend/internal/domains/author/model"
)

type RepositoryInterface interface {
	Create(ctx context.Context, a *model.Author) (*model.Author, error)
	GetByID(ctx context.Context, id int64) (*model.Author, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.Author, error)
	// Update writes every mutable column of a
	Update(ctx context.Context, a *model.Author) (*model.Author, error)
	Delete(ctx context.Context, id int64) error
	CountPlays(ctx context.Context, id int64) (int, error)
}
