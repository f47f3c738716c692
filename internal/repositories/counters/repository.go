package counters

import (
	"context"

	"github.com/dmitrijs2005/mailtrack/internal/models"
)

// Repository manages named sequential counters.
type Repository interface {
	// Increment atomically bumps key and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)
	// Get returns common.ErrorNotFound when the row does not exist.
	Get(ctx context.Context, key string) (*models.Counter, error)
	Set(ctx context.Context, key string, value int64) error
}
