package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/infrastructure/database"
	"bgpiesa-backend/internal/shared/apperror"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// attachmentTable describes playimage and playfile, which share a shape
type attachmentTable struct {
	table     string
	urlColumn string
	notFound  *apperror.AppError
}

func (t attachmentTable) columns() string {
	return "id, play_id, " + t.urlColumn + ", caption_bg, caption_en"
}

func scanAttachment(row pgx.Row) (*model.Attachment, error) {
	var a model.Attachment
	if err := row.Scan(&a.ID, &a.PlayID, &a.URL, &a.CaptionBG, &a.CaptionEN); err != nil {
		return nil, err
	}
	return &a, nil
}

// list returns the play's rows in insertion order
func (t attachmentTable) list(ctx context.Context, q querier, playID int64) ([]model.Attachment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE play_id = $1 ORDER BY id`, t.columns(), t.table)

	rows, err := q.Query(ctx, query, playID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.table, err)
	}
	defer rows.Close()

	items := make([]model.Attachment, 0)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.table, err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", t.table, err)
	}
	return items, nil
}

func (t attachmentTable) get(ctx context.Context, q querier, id int64) (*model.Attachment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, t.columns(), t.table)

	a, err := scanAttachment(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, t.notFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", t.table, err)
	}
	return a, nil
}

func (t attachmentTable) insert(ctx context.Context, q querier, a *model.Attachment) (*model.Attachment, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (play_id, %s, caption_bg, caption_en)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, t.table, t.urlColumn, t.columns())

	created, err := scanAttachment(q.QueryRow(ctx, query, a.PlayID, a.URL, a.CaptionBG, a.CaptionEN))
	if err != nil {
		return nil, mapAttachmentError(err, t.table)
	}
	return created, nil
}

func (t attachmentTable) updateCaptions(ctx context.Context, q querier, a *model.Attachment) (*model.Attachment, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET caption_bg = $2, caption_en = $3
		WHERE id = $1
		RETURNING %s`, t.table, t.columns())

	updated, err := scanAttachment(q.QueryRow(ctx, query, a.ID, a.CaptionBG, a.CaptionEN))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, t.notFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", t.table, err)
	}
	return updated, nil
}

func (t attachmentTable) delete(ctx context.Context, q querier, id int64) error {
	tag, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t.table, err)
	}
	if tag.RowsAffected() == 0 {
		return t.notFound
	}
	return nil
}

func mapAttachmentError(err error, table string) error {
	if database.IsForeignKeyViolation(err) {
		return model.ErrPlayNotFound.Wrap(err)
	}
	return fmt.Errorf("failed to insert %s: %w", table, err)
}
