package mails

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/rest"
)

const tablePath = "/rest/v1/mails"

// Doer is the transport used by RESTRepository; *rest.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req rest.Request, out any) error
}

// RESTRepository implements Repository over the PostgREST table API.
type RESTRepository struct {
	client Doer
}

func NewRESTRepository(client Doer) *RESTRepository {
	return &RESTRepository{client: client}
}

func (r *RESTRepository) SelectAll(ctx context.Context) ([]*models.MailRecord, error) {
	var rows []models.Row
	err := r.client.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   tablePath,
		Query:  url.Values{"select": {"*"}, "order": {"created_at.desc"}},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to select mails: %w", err)
	}
	result := make([]*models.MailRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.FromRow(row))
	}
	return result, nil
}

func (r *RESTRepository) Insert(ctx context.Context, m *models.MailRecord) (*models.MailRecord, error) {
	var rows []models.Row
	err := r.client.Do(ctx, rest.Request{
		Method: http.MethodPost,
		Path:   tablePath,
		JSON:   models.ToRow(m),
		Prefer: "return=representation",
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", m.ID, err)
	}
	if len(rows) == 0 {
		return m.Clone(), nil
	}
	return models.FromRow(rows[0]), nil
}

// Patch sends the set columns; an empty representation means no row matched.
func (r *RESTRepository) Patch(ctx context.Context, id string, p models.MailPatch) error {
	if p.Empty() {
		return nil
	}
	var rows []models.Row
	err := r.client.Do(ctx, rest.Request{
		Method: http.MethodPatch,
		Path:   tablePath,
		Query:  url.Values{"id": {rest.Eq(id)}, "select": {"id"}},
		JSON:   p.Map(),
		Prefer: "return=representation",
	}, &rows)
	if err != nil {
		return fmt.Errorf("patch %s: %w", id, err)
	}
	if len(rows) == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *RESTRepository) Delete(ctx context.Context, id string) error {
	err := r.client.Do(ctx, rest.Request{
		Method: http.MethodDelete,
		Path:   tablePath,
		Query:  url.Values{"id": {rest.Eq(id)}},
	}, nil)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func (r *RESTRepository) RecentIDs(ctx context.Context, limit int) ([]string, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	err := r.client.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   tablePath,
		Query: url.Values{
			"select": {"id"},
			"order":  {"created_at.desc"},
			"limit":  {strconv.Itoa(limit)},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to select ids: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}
