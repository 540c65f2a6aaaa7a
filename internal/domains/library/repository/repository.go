package repository

import (
	"context"

	"bgpiesa-backend/internal/domains/library/model"
)

type RepositoryInterface interface {
	Create(ctx context.Context, p *model.LiteraryPiece) (*model.LiteraryPiece, error)
	// GetByID loads the piece with its author and linked play
	GetByID(ctx context.Context, id int64) (*model.LiteraryPiece, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.LiteraryPiece, error)
	Update(ctx context.Context, p *model.LiteraryPiece) (*model.LiteraryPiece, error)
	Delete(ctx context.Context, id int64) error
}
