// Package mails provides the mails table repositories: a direct PostgreSQL
// implementation and one over the PostgREST HTTP API.
package mails

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/dbx"
	"github.com/dmitrijs2005/mailtrack/internal/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectColumns = strings.Join(models.Columns, ", ")

// SelectAll returns every record, newest first.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.MailRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM mails ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select mails: %w", err)
	}
	defer rows.Close()

	var result []*models.MailRecord
	for rows.Next() {
		var (
			row                         models.Row
			status                      string
			fileInfo, history, comments []byte
			fileURL                     sql.NullString
		)
		if err := rows.Scan(
			&row.ID, &row.Sender, &row.Recipient, &row.Subject, &row.Notes, &status,
			&row.AIScanned, &fileInfo, &fileURL, &history, &comments,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		row.Status = models.Status(status)
		if len(fileInfo) > 0 {
			if err := json.Unmarshal(fileInfo, &row.FileInfo); err != nil {
				return nil, fmt.Errorf("mail %s: file_info: %w", row.ID, err)
			}
		}
		if fileURL.Valid {
			row.FileDataURL = &fileURL.String
		}
		if err := unmarshalList(history, &row.History); err != nil {
			return nil, fmt.Errorf("mail %s: history: %w", row.ID, err)
		}
		if err := unmarshalList(comments, &row.Comments); err != nil {
			return nil, fmt.Errorf("mail %s: comments: %w", row.ID, err)
		}
		result = append(result, models.FromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert stores m and returns it as persisted.
func (r *PostgresRepository) Insert(ctx context.Context, m *models.MailRecord) (*models.MailRecord, error) {
	row := models.ToRow(m)

	var fileInfo any
	if row.FileInfo != nil {
		b, err := json.Marshal(row.FileInfo)
		if err != nil {
			return nil, err
		}
		fileInfo = string(b)
	}
	var fileURL any
	if row.FileDataURL != nil {
		fileURL = *row.FileDataURL
	}
	history, err := json.Marshal(row.History)
	if err != nil {
		return nil, err
	}
	comments, err := json.Marshal(row.Comments)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO mails (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.db.ExecContext(ctx, query,
		row.ID, row.Sender, row.Recipient, row.Subject, row.Notes, string(row.Status),
		row.AIScanned, fileInfo, fileURL, string(history), string(comments),
		row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("insert %s: %w", row.ID, common.ErrIDInUse)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return models.FromRow(row), nil
}

// Patch updates the columns set in p on the row with the given id.
func (r *PostgresRepository) Patch(ctx context.Context, id string, p models.MailPatch) error {
	fields := p.Fields()
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		v, err := columnValue(f.Value)
		if err != nil {
			return fmt.Errorf("patch %s: %w", f.Column, err)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", f.Column, i+1))
		args = append(args, v)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE mails SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("patch %s: %w", id, common.ErrIDInUse)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes the row with the given id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mails WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// RecentIDs returns the ids of the newest limit records.
func (r *PostgresRepository) RecentIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM mails ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// columnValue converts patch values to driver values; list columns go as JSON text.
func columnValue(v any) (any, error) {
	switch t := v.(type) {
	case models.Status:
		return string(t), nil
	case []models.HistoryEntry, []models.Comment:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return v, nil
	}
}

func unmarshalList[T any](b []byte, dst *[]T) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
