package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Su57/stardew/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// CRUDRepository is the record-store capability shared by every admin entity.
type CRUDRepository[T any, ID comparable] interface {
	GetByID(ctx context.Context, id ID) (*T, error)
	List(ctx context.Context, limit, offset int) ([]*T, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id ID) error
}

const uniqueViolation = "23505"

// execWithCheck runs a statement that must touch at least one row and reports
// models.ErrNotFound otherwise.
func execWithCheck(ctx context.Context, db sqlx.ExecerContext, what string, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, translatePGError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("failed to %s: %w", what, models.ErrNotFound)
	}

	return nil
}

// getOne wraps sqlx Get and maps sql.ErrNoRows to models.ErrNotFound.
func getOne(ctx context.Context, db sqlx.QueryerContext, dest any, what string, query string, args ...any) error {
	err := sqlx.GetContext(ctx, db, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", what, err)
	}
	return nil
}

func translatePGError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", models.ErrConflict, pqErr.Detail)
	}
	return err
}

func paginate(query string, limit, offset int) (string, []any) {
	if limit <= 0 {
		return query, nil
	}
	return query + " LIMIT $1 OFFSET $2", []any{limit, offset}
}
