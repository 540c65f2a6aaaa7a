package repository

import (
	"context"
	"time"

	"bgpiesa-backend/internal/domains/play/model"
)

type RepositoryInterface interface {
	// Create inserts the play and one image row per url in one transaction
	Create(ctx context.Context, p *model.Play, imageURLs []string) (*model.Play, error)
	GetByID(ctx context.Context, id int64) (*model.Play, error)
	// GetDetail loads the play with author, images and files
	GetDetail(ctx context.Context, id int64) (*model.PlayDetail, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.Play, error)
	ListByAuthor(ctx context.Context, authorID int64, search string) ([]model.Play, error)
	Update(ctx context.Context, p *model.Play) (*model.Play, error)
	// UpdateWithImages writes p and replaces its whole image collection atomically
	UpdateWithImages(ctx context.Context, p *model.Play, imageURLs []string) (*model.Play, error)
	Delete(ctx context.Context, id int64) error

	ListImages(ctx context.Context, playID int64) ([]model.Attachment, error)
	GetImage(ctx context.Context, imageID int64) (*model.Attachment, error)
	AddImage(ctx context.Context, img *model.Attachment, updatedAt time.Time) (*model.Attachment, error)
	UpdateImageCaptions(ctx context.Context, img *model.Attachment, updatedAt time.Time) (*model.Attachment, error)
	DeleteImage(ctx context.Context, img *model.Attachment, updatedAt time.Time) error

	ListFiles(ctx context.Context, playID int64) ([]model.Attachment, error)
	GetFile(ctx context.Context, fileID int64) (*model.Attachment, error)
	AddFile(ctx context.Context, f *model.Attachment, updatedAt time.Time) (*model.Attachment, error)
	UpdateFileCaptions(ctx context.Context, f *model.Attachment, updatedAt time.Time) (*model.Attachment, error)
	DeleteFile(ctx context.Context, f *model.Attachment, updatedAt time.Time) error
}
