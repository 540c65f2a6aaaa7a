package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authormodel "bgpiesa-backend/internal/domains/author/model"
	librarymodel "bgpiesa-backend/internal/domains/library/model"
	playmodel "bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/shared/apperror"
)

const managedBase = "https://store.example/"

// ============================================
// Fakes
// ============================================

type fakeStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
	seq       int
}

func (f *fakeStore) Upload(_ context.Context, content io.Reader, folder, prefix string) (string, error) {
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.seq++
	url := managedBase + "raw/upload/" + folder + "/" + prefix + "-" + strings.Repeat("a", f.seq) + ".bin"
	f.uploads = append(f.uploads, url)
	return url, nil
}

// Delete records the call
func (f *fakeStore) Delete(_ context.Context, url string) {
	f.deletes = append(f.deletes, url)
}

func (f *fakeStore) IsManaged(url string) bool {
	return strings.HasPrefix(url, managedBase)
}

type fakeAuthors struct {
	items map[int64]*authormodel.Author
	plays map[int64]int
}

func (f *fakeAuthors) GetByID(_ context.Context, id int64) (*authormodel.Author, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, authormodel.ErrAuthorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAuthors) Update(_ context.Context, a *authormodel.Author) (*authormodel.Author, error) {
	cp := *a
	f.items[a.ID] = &cp
	return &cp, nil
}

func (f *fakeAuthors) Delete(_ context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

func (f *fakeAuthors) CountPlays(_ context.Context, id int64) (int, error) {
	return f.plays[id], nil
}

type fakePlays struct {
	items   map[int64]*playmodel.Play
	images  map[int64]*playmodel.Attachment
	files   map[int64]*playmodel.Attachment
	nextID  int64
	touched map[int64]time.Time
}

func newFakePlays() *fakePlays {
	return &fakePlays{
		items:   map[int64]*playmodel.Play{},
		images:  map[int64]*playmodel.Attachment{},
		files:   map[int64]*playmodel.Attachment{},
		nextID:  100,
		touched: map[int64]time.Time{},
	}
}

func (f *fakePlays) GetByID(_ context.Context, id int64) (*playmodel.Play, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, playmodel.ErrPlayNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlays) GetDetail(ctx context.Context, id int64) (*playmodel.PlayDetail, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &playmodel.PlayDetail{Play: *p}
	images, _ := f.ListImages(ctx, id)
	for _, img := range images {
		d.Images = append(d.Images, img.AsImage())
	}
	files, _ := f.ListFiles(ctx, id)
	for _, file := range files {
		d.Files = append(d.Files, file.AsFile())
	}
	return d, nil
}

func (f *fakePlays) Update(_ context.Context, p *playmodel.Play) (*playmodel.Play, error) {
	cp := *p
	f.items[p.ID] = &cp
	return &cp, nil
}

func (f *fakePlays) Delete(_ context.Context, id int64) error {
	delete(f.items, id)
	for k, v := range f.images {
		if v.PlayID == id {
			delete(f.images, k)
		}
	}
	for k, v := range f.files {
		if v.PlayID == id {
			delete(f.files, k)
		}
	}
	return nil
}

func (f *fakePlays) touch(playID int64, at time.Time) {
	f.touched[playID] = at
	f.items[playID].UpdatedAt = at
}

func list(m map[int64]*playmodel.Attachment, playID int64) []playmodel.Attachment {
	out := make([]playmodel.Attachment, 0)
	for id := int64(0); id <= 1000; id++ {
		if a, ok := m[id]; ok && a.PlayID == playID {
			out = append(out, *a)
		}
	}
	return out
}

func (f *fakePlays) ListImages(_ context.Context, playID int64) ([]playmodel.Attachment, error) {
	return list(f.images, playID), nil
}

func (f *fakePlays) ListFiles(_ context.Context, playID int64) ([]playmodel.Attachment, error) {
	return list(f.files, playID), nil
}

func get(m map[int64]*playmodel.Attachment, id int64, notFound error) (*playmodel.Attachment, error) {
	a, ok := m[id]
	if !ok {
		return nil, notFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakePlays) GetImage(_ context.Context, id int64) (*playmodel.Attachment, error) {
	return get(f.images, id, playmodel.ErrImageNotFound)
}

func (f *fakePlays) GetFile(_ context.Context, id int64) (*playmodel.Attachment, error) {
	return get(f.files, id, playmodel.ErrFileNotFound)
}

func (f *fakePlays) add(m map[int64]*playmodel.Attachment, a *playmodel.Attachment, at time.Time) *playmodel.Attachment {
	f.nextID++
	cp := *a
	cp.ID = f.nextID
	m[cp.ID] = &cp
	f.touch(a.PlayID, at)
	return &cp
}

func (f *fakePlays) AddImage(_ context.Context, a *playmodel.Attachment, at time.Time) (*playmodel.Attachment, error) {
	return f.add(f.images, a, at), nil
}

func (f *fakePlays) AddFile(_ context.Context, a *playmodel.Attachment, at time.Time) (*playmodel.Attachment, error) {
	return f.add(f.files, a, at), nil
}

func (f *fakePlays) UpdateImageCaptions(_ context.Context, a *playmodel.Attachment, at time.Time) (*playmodel.Attachment, error) {
	cp := *a
	f.images[a.ID] = &cp
	f.touch(a.PlayID, at)
	return &cp, nil
}

func (f *fakePlays) UpdateFileCaptions(_ context.Context, a *playmodel.Attachment, at time.Time) (*playmodel.Attachment, error) {
	cp := *a
	f.files[a.ID] = &cp
	f.touch(a.PlayID, at)
	return &cp, nil
}

func (f *fakePlays) DeleteImage(_ context.Context, a *playmodel.Attachment, at time.Time) error {
	delete(f.images, a.ID)
	f.touch(a.PlayID, at)
	return nil
}

func (f *fakePlays) DeleteFile(_ context.Context, a *playmodel.Attachment, at time.Time) error {
	delete(f.files, a.ID)
	f.touch(a.PlayID, at)
	return nil
}

type fakePieces struct {
	items map[int64]*librarymodel.LiteraryPiece
}

func (f *fakePieces) GetByID(_ context.Context, id int64) (*librarymodel.LiteraryPiece, error) {
	lp, ok := f.items[id]
	if !ok {
		return nil, librarymodel.ErrPieceNotFound
	}
	cp := *lp
	return &cp, nil
}

func (f *fakePieces) Update(_ context.Context, lp *librarymodel.LiteraryPiece) (*librarymodel.LiteraryPiece, error) {
	cp := *lp
	f.items[lp.ID] = &cp
	return &cp, nil
}

func (f *fakePieces) Delete(_ context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

// ============================================
// Helpers
// ============================================

var (
	t0  = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
)

func strPtr(s string) *string { return &s }

type fixture struct {
	store   *fakeStore
	authors *fakeAuthors
	plays   *fakePlays
	pieces  *fakePieces
	svc     *MediaService
}

func newFixture() *fixture {
	f := &fixture{
		store:   &fakeStore{},
		authors: &fakeAuthors{items: map[int64]*authormodel.Author{}, plays: map[int64]int{}},
		plays:   newFakePlays(),
		pieces:  &fakePieces{items: map[int64]*librarymodel.LiteraryPiece{}},
	}
	f.svc = NewMediaService(f.store, f.authors, f.plays, f.pieces, func() time.Time { return now })
	return f
}

func (f *fixture) addAuthor(id int64, photo *string) {
	f.authors.items[id] = &authormodel.Author{ID: id, Name: "Иван Вазов", BiographyBG: "Био", PhotoURL: photo, CreatedAt: t0, UpdatedAt: t0}
}

func (f *fixture) addPlay(id int64, pdf *string) {
	f.plays.items[id] = &playmodel.Play{ID: id, TitleBG: "Пиеса", DescriptionBG: "Описание", AuthorID: 1, PDFPath: pdf, CreatedAt: t0, UpdatedAt: t0}
}

func body() io.Reader { return strings.NewReader("content") }

// ============================================
// Tests
// ============================================

func TestReplaceAuthorPhoto(t *testing.T) {
	t.Run("managed photo is deleted once and replaced", func(t *testing.T) {
		f := newFixture()
		old := managedBase + "image/upload/v1/authors/author-1-old.jpg"
		f.addAuthor(1, strPtr(old))

		a, err := f.svc.ReplaceAuthorPhoto(context.Background(), 1, body())

		require.NoError(t, err)
		assert.Equal(t, []string{old}, f.store.deletes)
		require.Len(t, f.store.uploads, 1)
		assert.Contains(t, f.store.uploads[0], "/authors/author-1-")
		assert.Equal(t, f.store.uploads[0], *a.PhotoURL)
		assert.Equal(t, now, a.UpdatedAt)
		assert.Equal(t, t0, a.CreatedAt)
	})

	t.Run("foreign photo is not deleted", func(t *testing.T) {
		f := newFixture()
		f.addAuthor(1, strPtr("https://elsewhere.example/me.jpg"))

		_, err := f.svc.ReplaceAuthorPhoto(context.Background(), 1, body())

		require.NoError(t, err)
		assert.Empty(t, f.store.deletes)
		assert.Len(t, f.store.uploads, 1)
	})

	t.Run("missing author uploads nothing", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.ReplaceAuthorPhoto(context.Background(), 9, body())

		assert.ErrorIs(t, err, authormodel.ErrAuthorNotFound)
		assert.Empty(t, f.store.uploads)
	})

	t.Run("upload failure aborts without writing", func(t *testing.T) {
		f := newFixture()
		f.store.uploadErr = errors.New("store down")
		f.addAuthor(1, nil)

		_, err := f.svc.ReplaceAuthorPhoto(context.Background(), 1, body())

		require.Error(t, err)
		assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
		assert.Nil(t, f.authors.items[1].PhotoURL)
		assert.Equal(t, t0, f.authors.items[1].UpdatedAt)
	})
}

func TestDeleteAuthor(t *testing.T) {
	t.Run("author with plays is kept", func(t *testing.T) {
		f := newFixture()
		f.addAuthor(1, strPtr(managedBase+"image/upload/authors/a.jpg"))
		f.authors.plays[1] = 2

		err := f.svc.DeleteAuthor(context.Background(), 1)

		assert.ErrorIs(t, err, authormodel.ErrAuthorHasPlays)
		assert.Contains(t, f.authors.items, int64(1))
		assert.Empty(t, f.store.deletes)
	})

	t.Run("photo removed then row", func(t *testing.T) {
		f := newFixture()
		photo := managedBase + "image/upload/authors/a.jpg"
		f.addAuthor(1, strPtr(photo))

		require.NoError(t, f.svc.DeleteAuthor(context.Background(), 1))

		assert.Equal(t, []string{photo}, f.store.deletes)
		assert.NotContains(t, f.authors.items, int64(1))
	})
}

func TestDeletePlay(t *testing.T) {
	f := newFixture()
	pdf := managedBase + "raw/upload/pdfs/play-5-script-x.pdf"
	f.addPlay(5, strPtr(pdf))
	f.plays.images[1] = &playmodel.Attachment{ID: 1, PlayID: 5, URL: managedBase + "image/upload/images/play-5-a.jpg"}
	f.plays.images[2] = &playmodel.Attachment{ID: 2, PlayID: 5, URL: "https://elsewhere.example/b.jpg"}
	f.plays.files[3] = &playmodel.Attachment{ID: 3, PlayID: 5, URL: managedBase + "raw/upload/files/play-5-c.docx"}

	require.NoError(t, f.svc.DeletePlay(context.Background(), 5))

	assert.ElementsMatch(t, []string{
		pdf,
		managedBase + "image/upload/images/play-5-a.jpg",
		managedBase + "raw/upload/files/play-5-c.docx",
	}, f.store.deletes)
	assert.NotContains(t, f.plays.items, int64(5))
	assert.Empty(t, f.plays.images)
	assert.Empty(t, f.plays.files)
}

// downStore never removes anything, as when the bucket is unreachable.
// It records whether the play row still existed at each delete.
type downStore struct {
	fakeStore
	plays        *fakePlays
	playID       int64
	rowAtDeletes []bool
}

func (d *downStore) Delete(_ context.Context, url string) {
	_, present := d.plays.items[d.playID]
	d.rowAtDeletes = append(d.rowAtDeletes, present)
	d.deletes = append(d.deletes, url)
}

func TestDeletePlayWhenStoreIsDown(t *testing.T) {
	f := newFixture()
	store := &downStore{plays: f.plays, playID: 5}
	svc := NewMediaService(store, f.authors, f.plays, f.pieces, func() time.Time { return now })

	f.addPlay(5, strPtr(managedBase+"raw/upload/pdfs/play-5-script-x.pdf"))
	f.plays.images[1] = &playmodel.Attachment{ID: 1, PlayID: 5, URL: managedBase + "image/upload/images/play-5-a.jpg"}
	f.plays.files[2] = &playmodel.Attachment{ID: 2, PlayID: 5, URL: managedBase + "raw/upload/files/play-5-b.pdf"}

	require.NoError(t, svc.DeletePlay(context.Background(), 5))

	assert.Len(t, store.deletes, 3)
	assert.Equal(t, []bool{true, true, true}, store.rowAtDeletes)
	assert.NotContains(t, f.plays.items, int64(5))
	assert.Empty(t, f.plays.images)
	assert.Empty(t, f.plays.files)
}

func TestAttachPlayImage(t *testing.T) {
	f := newFixture()
	f.addPlay(5, nil)

	detail, err := f.svc.AttachPlayImage(context.Background(), 5, body(), strPtr("  Сцена  "), strPtr("   "))

	require.NoError(t, err)
	require.Len(t, detail.Images, 1)
	assert.Equal(t, "Сцена", *detail.Images[0].CaptionBG)
	assert.Nil(t, detail.Images[0].CaptionEN)
	assert.Contains(t, detail.Images[0].ImageURL, "/images/play-5-")
	assert.Equal(t, now, f.plays.touched[5])
	assert.Equal(t, now, detail.UpdatedAt)
}

func TestAttachPlayFileUploadFailure(t *testing.T) {
	f := newFixture()
	f.store.uploadErr = errors.New("boom")
	f.addPlay(5, nil)

	_, err := f.svc.AttachPlayFile(context.Background(), 5, body(), nil, nil)

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Empty(t, f.plays.files)
	assert.NotContains(t, f.plays.touched, int64(5))
}

func TestDiscardPlayImages(t *testing.T) {
	f := newFixture()
	f.addPlay(5, nil)
	managed := managedBase + "image/upload/images/play-5-a.jpg"
	f.plays.images[1] = &playmodel.Attachment{ID: 1, PlayID: 5, URL: managed}
	f.plays.images[2] = &playmodel.Attachment{ID: 2, PlayID: 5, URL: "https://elsewhere.example/b.jpg"}

	err := f.svc.DiscardPlayImages(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{managed}, f.store.deletes)
	images, _ := f.plays.ListImages(context.Background(), 5)
	assert.Len(t, images, 2, "rows belong to the play update")
	assert.NotContains(t, f.plays.touched, int64(5))
}

func TestChildOwnership(t *testing.T) {
	f := newFixture()
	f.addPlay(5, nil)
	f.addPlay(6, nil)
	f.plays.images[1] = &playmodel.Attachment{ID: 1, PlayID: 6, URL: managedBase + "image/upload/images/x.jpg"}
	f.plays.files[2] = &playmodel.Attachment{ID: 2, PlayID: 6, URL: managedBase + "raw/upload/files/y.pdf"}
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.DeletePlayImage(ctx, 5, 1), playmodel.ErrImageNotFound)
	assert.ErrorIs(t, f.svc.DeletePlayFile(ctx, 5, 2), playmodel.ErrFileNotFound)
	_, err := f.svc.UpdateImageCaption(ctx, 5, 1, &playmodel.UpdateCaptionRequest{CaptionBG: strPtr("x")})
	assert.ErrorIs(t, err, playmodel.ErrImageNotFound)
	_, err = f.svc.UpdateFileCaption(ctx, 5, 2, &playmodel.UpdateCaptionRequest{})
	assert.ErrorIs(t, err, playmodel.ErrFileNotFound)

	assert.Empty(t, f.store.deletes)
	assert.Len(t, f.plays.images, 1)
	assert.Len(t, f.plays.files, 1)
	assert.ErrorIs(t, f.svc.DeletePlayImage(ctx, 99, 1), playmodel.ErrPlayNotFound)
}

func TestDeletePlayImage(t *testing.T) {
	f := newFixture()
	f.addPlay(5, nil)
	url := managedBase + "image/upload/images/play-5-a.jpg"
	f.plays.images[1] = &playmodel.Attachment{ID: 1, PlayID: 5, URL: url}

	require.NoError(t, f.svc.DeletePlayImage(context.Background(), 5, 1))

	assert.Equal(t, []string{url}, f.store.deletes)
	assert.Empty(t, f.plays.images)
	assert.Equal(t, now, f.plays.touched[5])
}

func TestUpdateCaption(t *testing.T) {
	f := newFixture()
	f.addPlay(5, nil)
	f.plays.files[1] = &playmodel.Attachment{ID: 1, PlayID: 5, URL: "u", CaptionBG: strPtr("Старо"), CaptionEN: strPtr("Old")}

	tests := []struct {
		name   string
		req    playmodel.UpdateCaptionRequest
		wantBG *string
		wantEN *string
	}{
		{"absent keeps both", playmodel.UpdateCaptionRequest{}, strPtr("Старо"), strPtr("Old")},
		{"value replaces", playmodel.UpdateCaptionRequest{CaptionBG: strPtr(" Ново ")}, strPtr("Ново"), strPtr("Old")},
		{"blank clears", playmodel.UpdateCaptionRequest{CaptionEN: strPtr("  ")}, strPtr("Ново"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.svc.UpdateFileCaption(context.Background(), 5, 1, &tt.req)

			require.NoError(t, err)
			assert.Equal(t, tt.wantBG, out.CaptionBG)
			assert.Equal(t, tt.wantEN, out.CaptionEN)
		})
	}
}

func TestUpdatedAtStrictlyIncreases(t *testing.T) {
	f := newFixture()
	f.addPlay(5, nil)
	f.plays.items[5].UpdatedAt = now
	f.plays.files[1] = &playmodel.Attachment{ID: 1, PlayID: 5, URL: "u"}

	_, err := f.svc.UpdateFileCaption(context.Background(), 5, 1, &playmodel.UpdateCaptionRequest{CaptionBG: strPtr("x")})

	require.NoError(t, err)
	assert.True(t, f.plays.touched[5].After(now))
}

func TestPiecePDF(t *testing.T) {
	f := newFixture()
	old := managedBase + "raw/upload/pdfs/piece-4-old.pdf"
	f.pieces.items[4] = &librarymodel.LiteraryPiece{ID: 4, TitleBG: "Стих", PDFPath: strPtr(old), UpdatedAt: t0}

	lp, err := f.svc.ReplacePiecePDF(context.Background(), 4, body())

	require.NoError(t, err)
	assert.Equal(t, []string{old}, f.store.deletes)
	assert.Contains(t, *lp.PDFPath, "/pdfs/piece-4-")

	require.NoError(t, f.svc.DeletePiece(context.Background(), 4))
	assert.Equal(t, []string{old, *lp.PDFPath}, f.store.deletes)
	assert.Empty(t, f.pieces.items)
}
