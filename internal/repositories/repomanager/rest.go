package repomanager

import (
	"context"

	"github.com/dmitrijs2005/mailtrack/internal/repositories/counters"
	"github.com/dmitrijs2005/mailtrack/internal/repositories/mails"
	"github.com/dmitrijs2005/mailtrack/internal/rest"
)

// RESTRepositoryManager serves repositories over a hosted PostgREST project.
// The schema belongs to the hosted project, so RunMigrations does nothing.
type RESTRepositoryManager struct {
	client *rest.Client
}

func NewRESTRepositoryManager(client *rest.Client) *RESTRepositoryManager {
	return &RESTRepositoryManager{client: client}
}

func (m *RESTRepositoryManager) Mails() mails.Repository {
	return mails.NewRESTRepository(m.client)
}

func (m *RESTRepositoryManager) Counters() counters.Repository {
	return counters.NewRESTRepository(m.client)
}

func (m *RESTRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *RESTRepositoryManager) Close() error {
	return nil
}
