package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	authormodel "bgpiesa-backend/internal/domains/author/model"
	"bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/infrastructure/database"
	pkgdb "bgpiesa-backend/pkg/database"
)

var playColumns = []string{
	"p.id", "p.title_bg", "p.title_en", "p.description_bg", "p.description_en",
	"p.year", "p.genre", "p.theme", "p.male_participants", "p.female_participants",
	"p.pdf_path", "p.author_id", "p.created_at", "p.updated_at",
}

var authorColumns = []string{
	"a.id", "a.name", "a.biography_bg", "a.biography_en", "a.photo_url", "a.created_at", "a.updated_at",
}

const returningPlay = `id, title_bg, title_en, description_bg, description_en, year, genre, theme,
	male_participants, female_participants, pdf_path, author_id, created_at, updated_at`

type postgresRepository struct {
	pool   *pgxpool.Pool
	images attachmentTable
	files  attachmentTable
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool:   pool,
		images: attachmentTable{table: "playimage", urlColumn: "image_url", notFound: model.ErrImageNotFound},
		files:  attachmentTable{table: "playfile", urlColumn: "file_url", notFound: model.ErrFileNotFound},
	}
}

func playDest(p *model.Play) []interface{} {
	return []interface{}{
		&p.ID, &p.TitleBG, &p.TitleEN, &p.DescriptionBG, &p.DescriptionEN,
		&p.Year, &p.Genre, &p.Theme, &p.MaleParticipants, &p.FemaleParticipants,
		&p.PDFPath, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
	}
}

func authorDest(a *authormodel.Author) []interface{} {
	return []interface{}{&a.ID, &a.Name, &a.BiographyBG, &a.BiographyEN, &a.PhotoURL, &a.CreatedAt, &a.UpdatedAt}
}

func scanPlay(row pgx.Row) (*model.Play, error) {
	var p model.Play
	if err := row.Scan(playDest(&p)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPlayWithAuthor(row pgx.Row) (*model.Play, error) {
	var p model.Play
	var a authormodel.Author
	if err := row.Scan(append(playDest(&p), authorDest(&a)...)...); err != nil {
		return nil, err
	}
	p.Author = &a
	return &p, nil
}

// mapWriteError turns FK failures on author_id into the author NotFound error
func mapWriteError(err error, action string) error {
	if database.IsForeignKeyViolation(err) {
		return authormodel.ErrAuthorNotFound.Wrap(err)
	}
	return fmt.Errorf("failed to %s play: %w", action, err)
}

func (r *postgresRepository) Create(ctx context.Context, p *model.Play, imageURLs []string) (*model.Play, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Play, error) {
		query := `
			INSERT INTO play (title_bg, title_en, description_bg, description_en, year, genre, theme,
				male_participants, female_participants, pdf_path, author_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING ` + returningPlay

		created, err := scanPlay(tx.QueryRow(ctx, query,
			p.TitleBG, p.TitleEN, p.DescriptionBG, p.DescriptionEN, p.Year, p.Genre, p.Theme,
			p.MaleParticipants, p.FemaleParticipants, p.PDFPath, p.AuthorID, p.CreatedAt, p.UpdatedAt,
		))
		if err != nil {
			return nil, mapWriteError(err, "create")
		}

		for _, url := range imageURLs {
			if _, err := r.images.insert(ctx, tx, &model.Attachment{PlayID: created.ID, URL: url}); err != nil {
				return nil, err
			}
		}
		return created, nil
	})
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Play, error) {
	query := `SELECT ` + returningPlay + ` FROM play WHERE id = $1`

	p, err := scanPlay(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayNotFound
		}
		return nil, fmt.Errorf("failed to get play by id: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) GetDetail(ctx context.Context, id int64) (*model.PlayDetail, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(append(append([]string{}, playColumns...), authorColumns...)...).
		From("play p").
		Join("author a", "a.id = p.author_id").
		Where(sb.Equal("p.id", id))
	query, args := sb.Build()

	p, err := scanPlayWithAuthor(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayNotFound
		}
		return nil, fmt.Errorf("failed to get play detail: %w", err)
	}

	images, err := r.images.list(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	files, err := r.files.list(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}

	detail := &model.PlayDetail{
		Play:   *p,
		Images: make([]model.PlayImage, 0, len(images)),
		Files:  make([]model.PlayFile, 0, len(files)),
	}
	for _, img := range images {
		detail.Images = append(detail.Images, img.AsImage())
	}
	for _, f := range files {
		detail.Files = append(detail.Files, f.AsFile())
	}
	return detail, nil
}

// BuildListQuery renders the filtered list statement. Search matches either
// title case-insensitively; genre and theme are exact; ranges are inclusive.
func BuildListQuery(filter model.ListFilter) (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(append(append([]string{}, playColumns...), authorColumns...)...).
		From("play p").
		Join("author a", "a.id = p.author_id")

	if search := strings.TrimSpace(filter.Search); search != "" {
		sb.Where(sb.Or(
			database.LowerLike(sb, "p.title_bg", search),
			database.LowerLike(sb, "p.title_en", search),
		))
	}
	if filter.AuthorID != nil {
		sb.Where(sb.Equal("p.author_id", *filter.AuthorID))
	}
	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		sb.Where(sb.Equal("p.genre", genre))
	}
	if theme := strings.TrimSpace(filter.Theme); theme != "" {
		sb.Where(sb.Equal("p.theme", theme))
	}

	ranges := []struct {
		column string
		min    *int
		max    *int
	}{
		{"p.year", filter.YearMin, filter.YearMax},
		{"p.male_participants", filter.MaleParticipantsMin, filter.MaleParticipantsMax},
		{"p.female_participants", filter.FemaleParticipantsMin, filter.FemaleParticipantsMax},
	}
	for _, rg := range ranges {
		if rg.min != nil {
			sb.Where(sb.GreaterEqualThan(rg.column, *rg.min))
		}
		if rg.max != nil {
			sb.Where(sb.LessEqualThan(rg.column, *rg.max))
		}
	}

	sb.OrderBy("p.title_bg").Asc()
	return sb.Build()
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter) ([]model.Play, error) {
	query, args := BuildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}
	defer rows.Close()

	plays := make([]model.Play, 0)
	for rows.Next() {
		p, err := scanPlayWithAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		plays = append(plays, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plays: %w", err)
	}
	return plays, nil
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID int64, search string) ([]model.Play, error) {
	return r.List(ctx, model.ListFilter{AuthorID: &authorID, Search: search})
}

func (r *postgresRepository) Update(ctx context.Context, p *model.Play) (*model.Play, error) {
	return updatePlay(ctx, r.pool, p)
}

// UpdateWithImages writes p and swaps its image collection in one transaction
func (r *postgresRepository) UpdateWithImages(ctx context.Context, p *model.Play, imageURLs []string) (*model.Play, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Play, error) {
		updated, err := updatePlay(ctx, tx, p)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM playimage WHERE play_id = $1`, p.ID); err != nil {
			return nil, fmt.Errorf("failed to clear images: %w", err)
		}
		for _, url := range imageURLs {
			if _, err := r.images.insert(ctx, tx, &model.Attachment{PlayID: p.ID, URL: url}); err != nil {
				return nil, err
			}
		}
		return updated, nil
	})
}

func updatePlay(ctx context.Context, q querier, p *model.Play) (*model.Play, error) {
	query := `
		UPDATE play
		SET title_bg = $2, title_en = $3, description_bg = $4, description_en = $5, year = $6,
			genre = $7, theme = $8, male_participants = $9, female_participants = $10,
			pdf_path = $11, author_id = $12, updated_at = $13
		WHERE id = $1
		RETURNING ` + returningPlay

	updated, err := scanPlay(q.QueryRow(ctx, query,
		p.ID, p.TitleBG, p.TitleEN, p.DescriptionBG, p.DescriptionEN, p.Year,
		p.Genre, p.Theme, p.MaleParticipants, p.FemaleParticipants,
		p.PDFPath, p.AuthorID, p.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayNotFound
		}
		return nil, mapWriteError(err, "update")
	}
	return updated, nil
}

// Delete removes the play; images and files go with it via ON DELETE CASCADE
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM play WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete play: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlayNotFound
	}
	return nil
}

func touchPlay(ctx context.Context, q database.Execer, playID int64, updatedAt time.Time) error {
	tag, err := q.Exec(ctx, `UPDATE play SET updated_at = $2 WHERE id = $1`, playID, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to bump play: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlayNotFound
	}
	return nil
}

// ============================================
// Images
// ============================================

func (r *postgresRepository) ListImages(ctx context.Context, playID int64) ([]model.Attachment, error) {
	return r.images.list(ctx, r.pool, playID)
}

func (r *postgresRepository) GetImage(ctx context.Context, imageID int64) (*model.Attachment, error) {
	return r.images.get(ctx, r.pool, imageID)
}

func (r *postgresRepository) AddImage(ctx context.Context, img *model.Attachment, updatedAt time.Time) (*model.Attachment, error) {
	return r.addAttachment(ctx, r.images, img, updatedAt)
}

func (r *postgresRepository) UpdateImageCaptions(ctx context.Context, img *model.Attachment, updatedAt time.Time) (*model.Attachment, error) {
	return r.updateCaptions(ctx, r.images, img, updatedAt)
}

func (r *postgresRepository) DeleteImage(ctx context.Context, img *model.Attachment, updatedAt time.Time) error {
	return r.deleteAttachment(ctx, r.images, img, updatedAt)
}

// ============================================
// Files
// ============================================

func (r *postgresRepository) ListFiles(ctx context.Context, playID int64) ([]model.Attachment, error) {
	return r.files.list(ctx, r.pool, playID)
}

func (r *postgresRepository) GetFile(ctx context.Context, fileID int64) (*model.Attachment, error) {
	return r.files.get(ctx, r.pool, fileID)
}

func (r *postgresRepository) AddFile(ctx context.Context, f *model.Attachment, updatedAt time.Time) (*model.Attachment, error) {
	return r.addAttachment(ctx, r.files, f, updatedAt)
}

func (r *postgresRepository) UpdateFileCaptions(ctx context.Context, f *model.Attachment, updatedAt time.Time) (*model.Attachment, error) {
	return r.updateCaptions(ctx, r.files, f, updatedAt)
}

func (r *postgresRepository) DeleteFile(ctx context.Context, f *model.Attachment, updatedAt time.Time) error {
	return r.deleteAttachment(ctx, r.files, f, updatedAt)
}

// ============================================
// Shared attachment writes: child row change + parent bump, atomically
// ============================================

func (r *postgresRepository) addAttachment(ctx context.Context, t attachmentTable, a *model.Attachment, updatedAt time.Time) (*model.Attachment, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Attachment, error) {
		created, err := t.insert(ctx, tx, a)
		if err != nil {
			return nil, err
		}
		if err := touchPlay(ctx, tx, a.PlayID, updatedAt); err != nil {
			return nil, err
		}
		return created, nil
	})
}

func (r *postgresRepository) updateCaptions(ctx context.Context, t attachmentTable, a *model.Attachment, updatedAt time.Time) (*model.Attachment, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Attachment, error) {
		updated, err := t.updateCaptions(ctx, tx, a)
		if err != nil {
			return nil, err
		}
		if err := touchPlay(ctx, tx, a.PlayID, updatedAt); err != nil {
			return nil, err
		}
		return updated, nil
	})
}

func (r *postgresRepository) deleteAttachment(ctx context.Context, t attachmentTable, a *model.Attachment, updatedAt time.Time) error {
	return pkgdb.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := t.delete(ctx, tx, a.ID); err != nil {
			return err
		}
		return touchPlay(ctx, tx, a.PlayID, updatedAt)
	})
}
