// Package counters provides repositories for the counters table, which
// backs sequential tracking-id allocation.
package counters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/dbx"
	"github.com/dmitrijs2005/mailtrack/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Increment calls the increment_counter function installed by the migrations.
func (r *PostgresRepository) Increment(ctx context.Context, key string) (int64, error) {
	var v int64
	if err := r.db.QueryRowContext(ctx, `SELECT increment_counter($1)`, key).Scan(&v); err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}
	return v, nil
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (*models.Counter, error) {
	var v sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE key = $1`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("read counter %s: %w", key, err)
	}
	c := &models.Counter{Key: key}
	if v.Valid {
		c.Value = &v.Int64
	}
	return c, nil
}

func (r *PostgresRepository) Set(ctx context.Context, key string, value int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE counters SET value = $2 WHERE key = $1`, key, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
