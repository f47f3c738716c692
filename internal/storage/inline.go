package storage

import (
	"context"

	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/netx"
)

// InlineUploader keeps the document on the record itself as a data URL.
type InlineUploader struct{}

func (InlineUploader) Upload(_ context.Context, u *models.Upload) (string, error) {
	return netx.EncodeDataURL(u.MimeType, u.Data), nil
}
