// Package repomanager vends the mails and counters repositories for the
// configured backend and owns backend-level concerns such as migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/mailtrack/internal/repositories/counters"
	"github.com/dmitrijs2005/mailtrack/internal/repositories/mails"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Mails() mails.Repository
	Counters() counters.Repository
	Close() error
}
