package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/logging"
	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/scanner"
	"github.com/dmitrijs2005/mailtrack/internal/storage"
	"github.com/dmitrijs2005/mailtrack/internal/tracker"
)

// memMails is an in-memory mails.Repository.
type memMails struct {
	rows []*models.MailRecord
}

func (f *memMails) SelectAll(ctx context.Context) ([]*models.MailRecord, error) {
	out := make([]*models.MailRecord, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (f *memMails) Insert(ctx context.Context, m *models.MailRecord) (*models.MailRecord, error) {
	for _, r := range f.rows {
		if r.ID == m.ID {
			return nil, common.ErrIDInUse
		}
	}
	f.rows = append([]*models.MailRecord{m.Clone()}, f.rows...)
	return m.Clone(), nil
}

func (f *memMails) Patch(ctx context.Context, id string, p models.MailPatch) error {
	for _, r := range f.rows {
		if r.ID == id {
			p.Apply(r)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *memMails) Delete(ctx context.Context, id string) error {
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *memMails) RecentIDs(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	for i, r := range f.rows {
		if i >= limit {
			break
		}
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// memCounters starts every key at the tracking baseline.
type memCounters struct {
	values map[string]int64
}

func (f *memCounters) Increment(ctx context.Context, key string) (int64, error) {
	v, ok := f.values[key]
	if !ok {
		v = common.TrackingBaseline
	}
	v++
	f.values[key] = v
	return v, nil
}

func (f *memCounters) Get(ctx context.Context, key string) (*models.Counter, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Counter{Key: key, Value: &v}, nil
}

func (f *memCounters) Set(ctx context.Context, key string, value int64) error {
	f.values[key] = value
	return nil
}

type stubScanner struct {
	fields *scanner.Fields
	err    error
}

func (s *stubScanner) Scan(ctx context.Context, u *models.Upload) (*scanner.Fields, error) {
	return s.fields, s.err
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

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

type testApp struct {
	*App
	repo    *memMails
	out     *bytes.Buffer
	notices *bytes.Buffer
}

// newTestApp builds a loaded console over in-memory backends. input feeds
// interactive prompts.
func newTestApp(t *testing.T, input string, sc scanner.Scanner, rows ...*models.MailRecord) *testApp {
	t.Helper()
	ctx := context.Background()

	repo := &memMails{rows: rows}
	store := tracker.NewStore(repo, logging.Nop(), "")
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	alloc := tracker.NewAllocator(&memCounters{values: map[string]int64{}}, repo, tracker.DefaultAllocatorOptions(), logging.Nop())

	notices := &bytes.Buffer{}
	n := NewNotifier(notices)
	intake := tracker.NewIntake(store, alloc, sc, storage.InlineUploader{}, n, logging.Nop())

	out := &bytes.Buffer{}
	app := NewApp(store, intake, n, logging.Nop(), Options{DownloadDir: t.TempDir()})
	app.reader = bufio.NewReader(strings.NewReader(input))
	app.out = out

	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(out, a...) }
	t.Cleanup(func() { printlnFn = origPrint })

	return &testApp{App: app, repo: repo, out: out, notices: notices}
}
