package mails

import (
	"context"

	"github.com/dmitrijs2005/mailtrack/internal/models"
)

// Repository persists mail records. Implementations return
// common.ErrIDInUse for duplicate ids and common.ErrorNotFound when a
// targeted row does not exist.
type Repository interface {
	SelectAll(ctx context.Context) ([]*models.MailRecord, error)
	Insert(ctx context.Context, m *models.MailRecord) (*models.MailRecord, error)
	Patch(ctx context.Context, id string, p models.MailPatch) error
	Delete(ctx context.Context, id string) error
	RecentIDs(ctx context.Context, limit int) ([]string, error)
}
