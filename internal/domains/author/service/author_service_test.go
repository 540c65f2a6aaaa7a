package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgpiesa-backend/internal/domains/author/model"
	playmodel "bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/shared/apperror"
	"bgpiesa-backend/internal/shared/optional"
)

type fakeRepo struct {
	items  map[int64]*model.Author
	nextID int64
	gets   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[int64]*model.Author{}}
}

func (f *fakeRepo) Create(_ context.Context, a *model.Author) (*model.Author, error) {
	f.nextID++
	cp := *a
	cp.ID = f.nextID
	f.items[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*model.Author, error) {
	f.gets++
	a, ok := f.items[id]
	if !ok {
		return nil, model.ErrAuthorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, _ model.ListFilter) ([]model.Author, error) {
	out := make([]model.Author, 0, len(f.items))
	for _, a := range f.items {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, a *model.Author) (*model.Author, error) {
	cp := *a
	f.items[a.ID] = &cp
	return &cp, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) CountPlays(context.Context, int64) (int, error) { return 0, nil }

type fakePlays struct {
	searches []string
}

func (f *fakePlays) ListByAuthor(_ context.Context, authorID int64, search string) ([]playmodel.Play, error) {
	f.searches = append(f.searches, search)
	return []playmodel.Play{{ID: 1, TitleBG: "Службогонци", AuthorID: authorID}}, nil
}

type memCache struct {
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memCache) Delete(context.Context, ...string) error     { return nil }
func (m *memCache) DeletePattern(context.Context, string) error { return nil }
func (m *memCache) Ping(context.Context) error                  { return nil }

func strPtr(s string) *string { return &s }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCreate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	svc := NewAuthorService(repo, &fakePlays{}, nil, time.Minute, fixedClock(now))

	t.Run("assigns id and timestamps", func(t *testing.T) {
		a, err := svc.Create(context.Background(), &model.CreateAuthorRequest{
			Name:        "  Иван Вазов ",
			BiographyBG: "Патриарх на българската литература",
		})

		require.NoError(t, err)
		assert.Positive(t, a.ID)
		assert.Equal(t, "Иван Вазов", a.Name)
		assert.Equal(t, now, a.CreatedAt)
		assert.Equal(t, now, a.UpdatedAt)
	})

	t.Run("rejects blank required fields", func(t *testing.T) {
		_, err := svc.Create(context.Background(), &model.CreateAuthorRequest{Name: "   ", BiographyBG: ""})

		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestUpdate(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	repo.items[1] = &model.Author{
		ID: 1, Name: "Йордан Йовков", BiographyBG: "Био", BiographyEN: strPtr("Bio"),
		PhotoURL: strPtr("https://x/p.jpg"), CreatedAt: created, UpdatedAt: created,
	}
	// clock stuck at the creation instant
	svc := NewAuthorService(repo, &fakePlays{}, nil, time.Minute, fixedClock(created))

	t.Run("only supplied fields change", func(t *testing.T) {
		a, err := svc.Update(context.Background(), 1, &model.UpdateAuthorRequest{
			BiographyEN: optional.Null[string](),
		})

		require.NoError(t, err)
		assert.Equal(t, "Йордан Йовков", a.Name)
		assert.Equal(t, "Био", a.BiographyBG)
		assert.Nil(t, a.BiographyEN)
		assert.Equal(t, "https://x/p.jpg", *a.PhotoURL)
		assert.Equal(t, created, a.CreatedAt)
		assert.True(t, a.UpdatedAt.After(created))
	})

	t.Run("updated_at keeps increasing", func(t *testing.T) {
		before := repo.items[1].UpdatedAt
		a, err := svc.Update(context.Background(), 1, &model.UpdateAuthorRequest{Name: optional.Of("Й. Йовков")})

		require.NoError(t, err)
		assert.Equal(t, "Й. Йовков", a.Name)
		assert.True(t, a.UpdatedAt.After(before))
	})

	t.Run("null name is rejected", func(t *testing.T) {
		_, err := svc.Update(context.Background(), 1, &model.UpdateAuthorRequest{Name: optional.Null[string]()})

		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("missing author", func(t *testing.T) {
		_, err := svc.Update(context.Background(), 42, &model.UpdateAuthorRequest{})

		assert.ErrorIs(t, err, model.ErrAuthorNotFound)
	})
}

func TestGetDetail(t *testing.T) {
	repo := newFakeRepo()
	repo.items[1] = &model.Author{ID: 1, Name: "Алеко Константинов", BiographyBG: "Био"}
	plays := &fakePlays{}
	c := &memCache{data: map[string][]byte{}}
	svc := NewAuthorService(repo, plays, c, time.Minute, nil)

	d, err := svc.GetDetail(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Алеко Константинов", d.Name)
	require.Len(t, d.Plays, 1)
	assert.Contains(t, c.data, "catalog:author:1")

	_, err = svc.GetDetail(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets, "second unfiltered read is served from cache")

	_, err = svc.GetDetail(context.Background(), 1, "служ")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.gets)
	assert.Equal(t, []string{"", "служ"}, plays.searches)

	_, err = svc.GetDetail(context.Background(), 7, "")
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)
}
