package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/logging"
	"github.com/dmitrijs2005/mailtrack/internal/models"
)

// fakeMails is an in-memory mails.Repository that records calls.
type fakeMails struct {
	rows    []*models.MailRecord
	patches []models.MailPatch
	calls   map[string]int

	selectErr, insertErr, patchErr, deleteErr, recentErr error
}

func newFakeMails(rows ...*models.MailRecord) *fakeMails {
	return &fakeMails{rows: rows, calls: map[string]int{}}
}

func (f *fakeMails) SelectAll(ctx context.Context) ([]*models.MailRecord, error) {
	f.calls["select"]++
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	out := make([]*models.MailRecord, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (f *fakeMails) Insert(ctx context.Context, m *models.MailRecord) (*models.MailRecord, error) {
	f.calls["insert"]++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	for _, r := range f.rows {
		if r.ID == m.ID {
			return nil, common.ErrIDInUse
		}
	}
	f.rows = append([]*models.MailRecord{m.Clone()}, f.rows...)
	return m.Clone(), nil
}

func (f *fakeMails) Patch(ctx context.Context, id string, p models.MailPatch) error {
	f.calls["patch"]++
	if f.patchErr != nil {
		return f.patchErr
	}
	for _, r := range f.rows {
		if r.ID == id {
			p.Apply(r)
			f.patches = append(f.patches, p)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeMails) Delete(ctx context.Context, id string) error {
	f.calls["delete"]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeMails) RecentIDs(ctx context.Context, limit int) ([]string, error) {
	f.calls["recent"]++
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	var ids []string
	for i, r := range f.rows {
		if i >= limit {
			break
		}
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// fakeCounters is an in-memory counters.Repository.
type fakeCounters struct {
	values  map[string]*int64
	sets    []int64
	incrErr error
	getErr  error
	setErr  error
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{values: map[string]*int64{}}
}

func (f *fakeCounters) Increment(ctx context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	v, ok := f.values[key]
	next := int64(common.TrackingBaseline) + 1
	if ok && v != nil {
		next = *v + 1
	}
	f.values[key] = &next
	return next, nil
}

func (f *fakeCounters) Get(ctx context.Context, key string) (*models.Counter, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Counter{Key: key, Value: v}, nil
}

func (f *fakeCounters) Set(ctx context.Context, key string, value int64) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, value)
	f.values[key] = &value
	return nil
}

var errDown = errors.New("backend down")

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// freezeTime pins nowFn, advancing one minute per call.
func freezeTime(t *testing.T) {
	t.Helper()
	orig := nowFn
	cur := t0
	nowFn = func() time.Time {
		cur = cur.Add(time.Minute)
		return cur
	}
	t.Cleanup(func() { nowFn = orig })
}

func record(id string, status models.Status, created time.Time) *models.MailRecord {
	history := []models.HistoryEntry{{Status: models.StatusReceived, Time: created, Note: models.ReceivedNote}}
	if status != models.StatusReceived {
		history = append(history, models.HistoryEntry{Status: status, Time: created, Note: models.TransitionNote(status)})
	}
	return &models.MailRecord{
		ID: id, Sender: "Sender " + id, Recipient: "Recipient " + id,
		Status: status, History: history, Comments: []models.Comment{},
		CreatedAt: created, UpdatedAt: created,
	}
}

func loadedStore(t *testing.T, repo *fakeMails) *Store {
	t.Helper()
	s := NewStore(repo, logging.Nop(), "")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func nopLogger() logging.Logger { return logging.Nop() }

const (
	timeoutShort = time.Second
	tick         = 5 * time.Millisecond
)
