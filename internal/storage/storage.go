// Package storage uploads intake documents and returns the location that is
// recorded on the mail record.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/models"
)

// Uploader stores an upload and returns its durable location.
type Uploader interface {
	Upload(ctx context.Context, u *models.Upload) (string, error)
}

var nowFn = time.Now

// SanitizeName replaces every character outside [A-Za-z0-9._-] with '_'.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '_', c == '-':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ObjectPath is the object key for name uploaded at t.
func ObjectPath(t time.Time, name string) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), SanitizeName(name))
}
