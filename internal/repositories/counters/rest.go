package counters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/rest"
)

const (
	tablePath     = "/rest/v1/counters"
	incrementPath = "/rest/v1/rpc/increment_counter"
)

// Doer is the transport used by RESTRepository; *rest.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req rest.Request, out any) error
}

// RESTRepository implements Repository over PostgREST (table + rpc).
type RESTRepository struct {
	client Doer
}

func NewRESTRepository(client Doer) *RESTRepository {
	return &RESTRepository{client: client}
}

func (r *RESTRepository) Increment(ctx context.Context, key string) (int64, error) {
	var v *int64
	err := r.client.Do(ctx, rest.Request{
		Method: http.MethodPost,
		Path:   incrementPath,
		JSON:   map[string]string{"counter_key": key},
	}, &v)
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}
	if v == nil {
		return 0, fmt.Errorf("increment %s: empty reply", key)
	}
	return *v, nil
}

func (r *RESTRepository) Get(ctx context.Context, key string) (*models.Counter, error) {
	var rows []models.Counter
	err := r.client.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   tablePath,
		Query:  url.Values{"key": {rest.Eq(key)}, "select": {"value"}},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("read counter %s: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	return &models.Counter{Key: key, Value: rows[0].Value}, nil
}

func (r *RESTRepository) Set(ctx context.Context, key string, value int64) error {
	err := r.client.Do(ctx, rest.Request{
		Method: http.MethodPatch,
		Path:   tablePath,
		Query:  url.Values{"key": {rest.Eq(key)}},
		JSON:   map[string]int64{"value": value},
		Prefer: "return=minimal",
	}, nil)
	if err != nil {
		return fmt.Errorf("write counter %s: %w", key, err)
	}
	return nil
}
