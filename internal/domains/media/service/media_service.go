package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	authormodel "bgpiesa-backend/internal/domains/author/model"
	librarymodel "bgpiesa-backend/internal/domains/library/model"
	playmodel "bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/infrastructure/storage"
	"bgpiesa-backend/internal/shared/apperror"
	"bgpiesa-backend/internal/shared/utils"
	"bgpiesa-backend/pkg/logger"
)

var ErrUploadFailed = apperror.New(
	apperror.KindUpstream,
	"ASSET_UPLOAD_FAILED",
	"Качването на файла не успя.",
)

// ============================================
// Persistence the coordinator drives
// ============================================

type AuthorStore interface {
	GetByID(ctx context.Context, id int64) (*authormodel.Author, error)
	Update(ctx context.Context, a *authormodel.Author) (*authormodel.Author, error)
	Delete(ctx context.Context, id int64) error
	CountPlays(ctx context.Context, id int64) (int, error)
}

type PlayStore interface {
	GetByID(ctx context.Context, id int64) (*playmodel.Play, error)
	GetDetail(ctx context.Context, id int64) (*playmodel.PlayDetail, error)
	Update(ctx context.Context, p *playmodel.Play) (*playmodel.Play, error)
	Delete(ctx context.Context, id int64) error

	ListImages(ctx context.Context, playID int64) ([]playmodel.Attachment, error)
	GetImage(ctx context.Context, imageID int64) (*playmodel.Attachment, error)
	AddImage(ctx context.Context, img *playmodel.Attachment, updatedAt time.Time) (*playmodel.Attachment, error)
	UpdateImageCaptions(ctx context.Context, img *playmodel.Attachment, updatedAt time.Time) (*playmodel.Attachment, error)
	DeleteImage(ctx context.Context, img *playmodel.Attachment, updatedAt time.Time) error

	ListFiles(ctx context.Context, playID int64) ([]playmodel.Attachment, error)
	GetFile(ctx context.Context, fileID int64) (*playmodel.Attachment, error)
	AddFile(ctx context.Context, f *playmodel.Attachment, updatedAt time.Time) (*playmodel.Attachment, error)
	UpdateFileCaptions(ctx context.Context, f *playmodel.Attachment, updatedAt time.Time) (*playmodel.Attachment, error)
	DeleteFile(ctx context.Context, f *playmodel.Attachment, updatedAt time.Time) error
}

type PieceStore interface {
	GetByID(ctx context.Context, id int64) (*librarymodel.LiteraryPiece, error)
	Update(ctx context.Context, p *librarymodel.LiteraryPiece) (*librarymodel.LiteraryPiece, error)
	Delete(ctx context.Context, id int64) error
}

// MediaService keeps stored assets in step with the rows that reference them.
// Uploads happen before the row changes and abort on failure; deletes are
// best effort and happen before the row goes away.
type MediaService struct {
	store   storage.Store
	authors AuthorStore
	plays   PlayStore
	pieces  PieceStore
	now     utils.Clock
}

func NewMediaService(store storage.Store, authors AuthorStore, plays PlayStore, pieces PieceStore, now utils.Clock) *MediaService {
	if now == nil {
		now = utils.SystemClock
	}
	return &MediaService{store: store, authors: authors, plays: plays, pieces: pieces, now: now}
}

func (s *MediaService) upload(ctx context.Context, content io.Reader, folder, prefix string) (string, error) {
	url, err := s.store.Upload(ctx, content, folder, prefix)
	if err != nil {
		return "", ErrUploadFailed.Wrap(err)
	}
	return url, nil
}

// discard removes a managed asset. Foreign and empty references are left alone.
func (s *MediaService) discard(ctx context.Context, ref *string) {
	if ref == nil {
		return
	}
	url := strings.TrimSpace(*ref)
	if url == "" {
		return
	}
	if !s.store.IsManaged(url) {
		logger.Debug("skipping unmanaged asset", map[string]interface{}{"url": url})
		return
	}
	s.store.Delete(ctx, url)
}

func (s *MediaService) discardAll(ctx context.Context, items []playmodel.Attachment) {
	for i := range items {
		s.discard(ctx, &items[i].URL)
	}
}

// ============================================
// Authors
// ============================================

func (s *MediaService) ReplaceAuthorPhoto(ctx context.Context, authorID int64, content io.Reader) (*authormodel.Author, error) {
	a, err := s.authors.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	s.discard(ctx, a.PhotoURL)

	url, err := s.upload(ctx, content, storage.FolderAuthors, fmt.Sprintf("author-%d", authorID))
	if err != nil {
		return nil, err
	}

	updated := *a
	updated.PhotoURL = &url
	updated.UpdatedAt = utils.NextTimestamp(a.UpdatedAt, s.now())
	return s.authors.Update(ctx, &updated)
}

func (s *MediaService) DeleteAuthor(ctx context.Context, authorID int64) error {
	a, err := s.authors.GetByID(ctx, authorID)
	if err != nil {
		return err
	}

	count, err := s.authors.CountPlays(ctx, authorID)
	if err != nil {
		return err
	}
	if count > 0 {
		return authormodel.ErrAuthorHasPlays
	}

	s.discard(ctx, a.PhotoURL)
	return s.authors.Delete(ctx, authorID)
}

// ============================================
// Plays
// ============================================

func (s *MediaService) ReplacePlayPDF(ctx context.Context, playID int64, content io.Reader) (*playmodel.Play, error) {
	p, err := s.plays.GetByID(ctx, playID)
	if err != nil {
		return nil, err
	}

	s.discard(ctx, p.PDFPath)

	url, err := s.upload(ctx, content, storage.FolderPDFs, fmt.Sprintf("play-%d-script", playID))
	if err != nil {
		return nil, err
	}

	updated := *p
	updated.PDFPath = &url
	updated.UpdatedAt = utils.NextTimestamp(p.UpdatedAt, s.now())
	return s.plays.Update(ctx, &updated)
}

func (s *MediaService) AttachPlayImage(ctx context.Context, playID int64, content io.Reader, captionBG, captionEN *string) (*playmodel.PlayDetail, error) {
	return s.attach(ctx, playID, content, captionBG, captionEN, storage.FolderImages, s.plays.AddImage)
}

func (s *MediaService) AttachPlayFile(ctx context.Context, playID int64, content io.Reader, captionBG, captionEN *string) (*playmodel.PlayDetail, error) {
	return s.attach(ctx, playID, content, captionBG, captionEN, storage.FolderFiles, s.plays.AddFile)
}

type addFunc func(ctx context.Context, a *playmodel.Attachment, updatedAt time.Time) (*playmodel.Attachment, error)

func (s *MediaService) attach(ctx context.Context, playID int64, content io.Reader, captionBG, captionEN *string, folder string, add addFunc) (*playmodel.PlayDetail, error) {
	p, err := s.plays.GetByID(ctx, playID)
	if err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, content, folder, fmt.Sprintf("play-%d", playID))
	if err != nil {
		return nil, err
	}

	child := &playmodel.Attachment{
		PlayID:    playID,
		URL:       url,
		CaptionBG: utils.TrimToNil(captionBG),
		CaptionEN: utils.TrimToNil(captionEN),
	}
	if _, err := add(ctx, child, utils.NextTimestamp(p.UpdatedAt, s.now())); err != nil {
		return nil, err
	}
	return s.plays.GetDetail(ctx, playID)
}

// DiscardPlayImages removes the stored assets of every current image.
// Rows are left to the caller; store failures never surface.
func (s *MediaService) DiscardPlayImages(ctx context.Context, playID int64) error {
	images, err := s.plays.ListImages(ctx, playID)
	if err != nil {
		return err
	}
	s.discardAll(ctx, images)
	return nil
}

// ownedChild loads the play and the child, rejecting children of other plays
func (s *MediaService) ownedChild(ctx context.Context, playID, childID int64,
	get func(context.Context, int64) (*playmodel.Attachment, error), notFound error,
) (*playmodel.Play, *playmodel.Attachment, error) {
	p, err := s.plays.GetByID(ctx, playID)
	if err != nil {
		return nil, nil, err
	}
	child, err := get(ctx, childID)
	if err != nil {
		return nil, nil, err
	}
	if child.PlayID != playID {
		return nil, nil, notFound
	}
	return p, child, nil
}

func applyCaptions(child *playmodel.Attachment, req *playmodel.UpdateCaptionRequest) {
	if req.CaptionBG != nil {
		child.CaptionBG = utils.TrimToNil(req.CaptionBG)
	}
	if req.CaptionEN != nil {
		child.CaptionEN = utils.TrimToNil(req.CaptionEN)
	}
}

func (s *MediaService) UpdateImageCaption(ctx context.Context, playID, imageID int64, req *playmodel.UpdateCaptionRequest) (*playmodel.PlayImage, error) {
	p, img, err := s.ownedChild(ctx, playID, imageID, s.plays.GetImage, playmodel.ErrImageNotFound)
	if err != nil {
		return nil, err
	}

	applyCaptions(img, req)
	updated, err := s.plays.UpdateImageCaptions(ctx, img, utils.NextTimestamp(p.UpdatedAt, s.now()))
	if err != nil {
		return nil, err
	}
	out := updated.AsImage()
	return &out, nil
}

func (s *MediaService) UpdateFileCaption(ctx context.Context, playID, fileID int64, req *playmodel.UpdateCaptionRequest) (*playmodel.PlayFile, error) {
	p, f, err := s.ownedChild(ctx, playID, fileID, s.plays.GetFile, playmodel.ErrFileNotFound)
	if err != nil {
		return nil, err
	}

	applyCaptions(f, req)
	updated, err := s.plays.UpdateFileCaptions(ctx, f, utils.NextTimestamp(p.UpdatedAt, s.now()))
	if err != nil {
		return nil, err
	}
	out := updated.AsFile()
	return &out, nil
}

func (s *MediaService) DeletePlayImage(ctx context.Context, playID, imageID int64) error {
	p, img, err := s.ownedChild(ctx, playID, imageID, s.plays.GetImage, playmodel.ErrImageNotFound)
	if err != nil {
		return err
	}

	s.discard(ctx, &img.URL)
	return s.plays.DeleteImage(ctx, img, utils.NextTimestamp(p.UpdatedAt, s.now()))
}

func (s *MediaService) DeletePlayFile(ctx context.Context, playID, fileID int64) error {
	p, f, err := s.ownedChild(ctx, playID, fileID, s.plays.GetFile, playmodel.ErrFileNotFound)
	if err != nil {
		return err
	}

	s.discard(ctx, &f.URL)
	return s.plays.DeleteFile(ctx, f, utils.NextTimestamp(p.UpdatedAt, s.now()))
}

// DeletePlay removes the script, every image and file, then the row.
// Child rows go with the play through the cascade.
func (s *MediaService) DeletePlay(ctx context.Context, playID int64) error {
	p, err := s.plays.GetByID(ctx, playID)
	if err != nil {
		return err
	}

	images, err := s.plays.ListImages(ctx, playID)
	if err != nil {
		return err
	}
	files, err := s.plays.ListFiles(ctx, playID)
	if err != nil {
		return err
	}

	s.discard(ctx, p.PDFPath)
	s.discardAll(ctx, images)
	s.discardAll(ctx, files)

	return s.plays.Delete(ctx, playID)
}

// ============================================
// Literary pieces
// ============================================

func (s *MediaService) ReplacePiecePDF(ctx context.Context, pieceID int64, content io.Reader) (*librarymodel.LiteraryPiece, error) {
	lp, err := s.pieces.GetByID(ctx, pieceID)
	if err != nil {
		return nil, err
	}

	s.discard(ctx, lp.PDFPath)

	url, err := s.upload(ctx, content, storage.FolderPDFs, fmt.Sprintf("piece-%d", pieceID))
	if err != nil {
		return nil, err
	}

	updated := *lp
	updated.PDFPath = &url
	updated.UpdatedAt = utils.NextTimestamp(lp.UpdatedAt, s.now())
	return s.pieces.Update(ctx, &updated)
}

func (s *MediaService) DeletePiece(ctx context.Context, pieceID int64) error {
	lp, err := s.pieces.GetByID(ctx, pieceID)
	if err != nil {
		return err
	}

	s.discard(ctx, lp.PDFPath)
	return s.pieces.Delete(ctx, pieceID)
}
