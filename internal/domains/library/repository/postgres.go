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
	"bgpiesa-backend/internal/domains/library/model"
	playmodel "bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/infrastructure/database"
)

var selectColumns = []string{
	"lp.id", "lp.title_bg", "lp.title_en", "lp.description_bg", "lp.description_en",
	"lp.pdf_path", "lp.author_id", "lp.play_id", "lp.created_at", "lp.updated_at",
	"a.id", "a.name", "a.biography_bg", "a.biography_en", "a.photo_url", "a.created_at", "a.updated_at",
	"p.id", "p.title_bg", "p.title_en", "p.description_bg", "p.description_en",
	"p.year", "p.genre", "p.theme", "p.male_participants", "p.female_participants",
	"p.pdf_path", "p.author_id", "p.created_at", "p.updated_at",
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// nullablePlay receives the LEFT JOINed play columns
type nullablePlay struct {
	ID                 *int64
	TitleBG            *string
	TitleEN            *string
	DescriptionBG      *string
	DescriptionEN      *string
	Year               *int
	Genre              *string
	Theme              *string
	MaleParticipants   *int
	FemaleParticipants *int
	PDFPath            *string
	AuthorID           *int64
	CreatedAt          *time.Time
	UpdatedAt          *time.Time
}

func (n nullablePlay) toPlay() *playmodel.Play {
	if n.ID == nil {
		return nil
	}
	p := &playmodel.Play{
		ID:                 *n.ID,
		TitleEN:            n.TitleEN,
		DescriptionEN:      n.DescriptionEN,
		Year:               n.Year,
		Genre:              n.Genre,
		Theme:              n.Theme,
		MaleParticipants:   n.MaleParticipants,
		FemaleParticipants: n.FemaleParticipants,
		PDFPath:            n.PDFPath,
	}
	if n.TitleBG != nil {
		p.TitleBG = *n.TitleBG
	}
	if n.DescriptionBG != nil {
		p.DescriptionBG = *n.DescriptionBG
	}
	if n.AuthorID != nil {
		p.AuthorID = *n.AuthorID
	}
	if n.CreatedAt != nil {
		p.CreatedAt = *n.CreatedAt
	}
	if n.UpdatedAt != nil {
		p.UpdatedAt = *n.UpdatedAt
	}
	return p
}

func scanPiece(row pgx.Row) (*model.LiteraryPiece, error) {
	var lp model.LiteraryPiece
	var a authormodel.Author
	var p nullablePlay

	err := row.Scan(
		&lp.ID, &lp.TitleBG, &lp.TitleEN, &lp.DescriptionBG, &lp.DescriptionEN,
		&lp.PDFPath, &lp.AuthorID, &lp.PlayID, &lp.CreatedAt, &lp.UpdatedAt,
		&a.ID, &a.Name, &a.BiographyBG, &a.BiographyEN, &a.PhotoURL, &a.CreatedAt, &a.UpdatedAt,
		&p.ID, &p.TitleBG, &p.TitleEN, &p.DescriptionBG, &p.DescriptionEN,
		&p.Year, &p.Genre, &p.Theme, &p.MaleParticipants, &p.FemaleParticipants,
		&p.PDFPath, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lp.Author = &a
	lp.Play = p.toPlay()
	return &lp, nil
}

func newSelect() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(selectColumns...).
		From("literarypiece lp").
		Join("author a", "a.id = lp.author_id").
		JoinWithOption(sqlbuilder.LeftJoin, "play p", "p.id = lp.play_id")
	return sb
}

func (r *postgresRepository) Create(ctx context.Context, lp *model.LiteraryPiece) (*model.LiteraryPiece, error) {
	query := `
		INSERT INTO literarypiece (title_bg, title_en, description_bg, description_en, pdf_path,
			author_id, play_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		lp.TitleBG, lp.TitleEN, lp.DescriptionBG, lp.DescriptionEN, lp.PDFPath,
		lp.AuthorID, lp.PlayID, lp.CreatedAt, lp.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create literary piece: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.LiteraryPiece, error) {
	sb := newSelect()
	sb.Where(sb.Equal("lp.id", id))
	query, args := sb.Build()

	lp, err := scanPiece(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPieceNotFound
		}
		return nil, fmt.Errorf("failed to get literary piece: %w", err)
	}
	return lp, nil
}

// BuildListQuery renders the filtered list statement.
// Search matches either title case-insensitively.
func BuildListQuery(filter model.ListFilter) (string, []interface{}) {
	sb := newSelect()

	if search := strings.TrimSpace(filter.Search); search != "" {
		sb.Where(sb.Or(
			database.LowerLike(sb, "lp.title_bg", search),
			database.LowerLike(sb, "lp.title_en", search),
		))
	}
	if filter.AuthorID != nil {
		sb.Where(sb.Equal("lp.author_id", *filter.AuthorID))
	}
	if filter.PlayID != nil {
		sb.Where(sb.Equal("lp.play_id", *filter.PlayID))
	}

	sb.OrderBy("lp.title_bg").Asc()
	return sb.Build()
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter) ([]model.LiteraryPiece, error) {
	query, args := BuildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list literary pieces: %w", err)
	}
	defer rows.Close()

	pieces := make([]model.LiteraryPiece, 0)
	for rows.Next() {
		lp, err := scanPiece(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan literary piece: %w", err)
		}
		pieces = append(pieces, *lp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate literary pieces: %w", err)
	}
	return pieces, nil
}

func (r *postgresRepository) Update(ctx context.Context, lp *model.LiteraryPiece) (*model.LiteraryPiece, error) {
	query := `
		UPDATE literarypiece
		SET title_bg = $2, title_en = $3, description_bg = $4, description_en = $5,
			pdf_path = $6, author_id = $7, play_id = $8, updated_at = $9
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		lp.ID, lp.TitleBG, lp.TitleEN, lp.DescriptionBG, lp.DescriptionEN,
		lp.PDFPath, lp.AuthorID, lp.PlayID, lp.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update literary piece: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, model.ErrPieceNotFound
	}
	return r.GetByID(ctx, lp.ID)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM literarypiece WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete literary piece: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPieceNotFound
	}
	return nil
}
