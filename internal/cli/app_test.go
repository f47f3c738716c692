package cli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []*models.MailRecord {
	a := record("#244", models.StatusReceived, t0)
	a.Sender = "Acme Corp"
	b := record("#245", models.StatusProcessing, t0.Add(time.Hour))
	c := record("#246", models.StatusClosed, t0.Add(2*time.Hour))
	c.Subject = "Invoice March"
	return []*models.MailRecord{c, b, a}
}

func TestApp_ListFilterSearchSort(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "", nil, sampleRows()...)

	require.NoError(t, app.List(ctx))
	out := app.out.String()
	assert.Contains(t, out, "#244")
	assert.Less(t, strings.Index(out, "#246"), strings.Index(out, "#244"), "newest first")

	app.out.Reset()
	require.NoError(t, app.ToggleSort(ctx))
	out = app.out.String()
	assert.Less(t, strings.Index(out, "#244"), strings.Index(out, "#246"), "oldest first")

	app.out.Reset()
	require.NoError(t, app.SetFilter(ctx, []string{"processing"}))
	out = app.out.String()
	assert.Contains(t, out, "#245")
	assert.NotContains(t, out, "#244")

	app.out.Reset()
	require.NoError(t, app.SetFilter(ctx, []string{"all"}))
	app.out.Reset()
	require.NoError(t, app.Search(ctx, []string{"ACME"}))
	assert.Contains(t, app.out.String(), "Acme Corp")
	assert.NotContains(t, app.out.String(), "#245")
	assert.Contains(t, app.statusLine(), `"ACME"`)

	app.out.Reset()
	require.NoError(t, app.Search(ctx, []string{"nothing-matches"}))
	assert.Contains(t, app.out.String(), "No mail found.")

	err := app.SetFilter(ctx, []string{"archived"})
	assert.ErrorIs(t, err, errUsage)
}

func TestApp_Stats(t *testing.T) {
	app := newTestApp(t, "", nil, sampleRows()...)

	require.NoError(t, app.Stats(context.Background()))
	assert.Equal(t, "Total 3 | Received 1 | Processing 1 | Closed 1\n", app.out.String())
}

func TestApp_SetStatus(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "", nil, sampleRows()...)

	require.NoError(t, app.SetStatus(ctx, []string{"#244", "closed"}))
	assert.Contains(t, app.notices.String(), "✓ Status set to Closed.")

	m, err := app.store.Get("#244")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, m.Status)
	require.Len(t, m.History, 2)
	assert.Equal(t, "Status changed to Closed.", m.History[1].Note)

	err = app.SetStatus(ctx, []string{"#244", "Closed"})
	assert.ErrorIs(t, err, common.ErrStatusUnchanged)
	assert.Contains(t, app.notices.String(), "◈ Already Closed.")

	assert.ErrorIs(t, app.SetStatus(ctx, []string{"#244"}), errUsage)
	assert.ErrorIs(t, app.SetStatus(ctx, []string{"#244", "lost"}), errUsage)
}

func TestApp_Rename(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "", nil, sampleRows()...)

	err := app.Rename(ctx, []string{"#244", "#245"})
	assert.ErrorIs(t, err, common.ErrIDInUse)
	assert.Contains(t, app.notices.String(), "✗ That tracking ID is already in use.")

	require.NoError(t, app.Rename(ctx, []string{"#244", "PRIORITY-1"}))
	_, err = app.store.Get("PRIORITY-1")
	assert.NoError(t, err)
	assert.Equal(t, "PRIORITY-1", app.repo.rows[2].ID)
}

func TestApp_DeleteAndShowMissing(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "#245\n", nil, sampleRows()...)

	// id comes from the prompt
	require.NoError(t, app.Delete(ctx, nil))
	assert.Contains(t, app.notices.String(), "✗ Mail removed.")
	assert.Equal(t, 2, app.store.Counts().Total)

	err := app.Show(ctx, []string{"#245"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestApp_CommentThread(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, "", nil, sampleRows()...)

	require.NoError(t, app.Comment(ctx, []string{"#244", "first", "note"}))
	assert.Contains(t, app.notices.String(), "Comment posted as Staff.")

	require.NoError(t, app.SetAuthor(ctx, []string{"Dana"}))
	require.NoError(t, app.Comment(ctx, []string{"#244", "second"}))

	m, err := app.store.Get("#244")
	require.NoError(t, err)
	require.Len(t, m.Comments, 2)
	assert.Equal(t, "first note", m.Comments[0].Text)
	assert.Equal(t, "Dana", m.Comments[1].Author)

	app.out.Reset()
	require.NoError(t, app.Show(ctx, []string{"#244"}))
	assert.Contains(t, app.out.String(), "1. Staff")
	assert.Contains(t, app.out.String(), "2. Dana")

	// by position
	require.NoError(t, app.Uncomment(ctx, []string{"#244", "1"}))
	// by id
	m, _ = app.store.Get("#244")
	require.NoError(t, app.Uncomment(ctx, []string{"#244", string(m.Comments[0].ID)}))

	m, _ = app.store.Get("#244")
	assert.Empty(t, m.Comments)

	err = app.Comment(ctx, []string{"#244", "   "})
	assert.ErrorIs(t, err, common.ErrEmptyComment)
	assert.ErrorIs(t, app.Uncomment(ctx, []string{"#244", "nope"}), common.ErrorNotFound)
}

func TestApp_Show(t *testing.T) {
	rows := sampleRows()
	rows[0].Attachment = &models.Attachment{Name: "inv.pdf", Size: "1.0 KB", MimeType: "application/pdf"}
	rows[0].Notes = "handle today"
	app := newTestApp(t, "", nil, rows...)

	require.NoError(t, app.Show(context.Background(), []string{"#246"}))
	out := app.out.String()

	assert.Contains(t, out, "#246  [Closed]")
	assert.Contains(t, out, "Notes:     handle today")
	assert.Contains(t, out, "inv.pdf (1.0 KB, application/pdf)")
	assert.Contains(t, out, "File preview not available")
	assert.Contains(t, out, "No comments yet.")
	assert.Less(t, strings.Index(out, "CLOSED"), strings.Index(out, "RECEIVED"), "history newest first")
}

func TestApp_Download(t *testing.T) {
	ctx := context.Background()
	rows := sampleRows()
	rows[0].Attachment = &models.Attachment{Name: "inv.pdf", MimeType: "application/pdf", Location: "https://files.example.co/inv.pdf"}
	app := newTestApp(t, "", nil, rows...)

	orig := fetchFn
	t.Cleanup(func() { fetchFn = orig })
	var fetched string
	fetchFn = func(ctx context.Context, location string) (string, []byte, error) {
		fetched = location
		return "application/pdf", []byte("%PDF-1.4"), nil
	}

	dir := t.TempDir()
	require.NoError(t, app.Download(ctx, []string{"#246", dir}))
	assert.Equal(t, "https://files.example.co/inv.pdf", fetched)

	b, err := os.ReadFile(filepath.Join(dir, "inv.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(b))
	assert.Contains(t, app.notices.String(), "✓ Saved to ")

	err = app.Download(ctx, []string{"#244"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, app.notices.String(), "File preview not available.")

	fetchFn = func(ctx context.Context, location string) (string, []byte, error) {
		return "", nil, errors.New("status 404")
	}
	assert.Error(t, app.Download(ctx, []string{"#246", dir}))
	assert.Contains(t, app.notices.String(), "✗ Download failed: status 404")
}

func stubUpload(t *testing.T, u *models.Upload) {
	t.Helper()
	orig := readUpload
	readUpload = func(path string) (*models.Upload, error) { return u, nil }
	t.Cleanup(func() { readUpload = orig })
}

func TestApp_AddWithScan(t *testing.T) {
	ctx := context.Background()
	stubUpload(t, &models.Upload{Name: "scan.png", MimeType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})

	sc := &stubScanner{fields: &scanner.Fields{Sender: "Acme Corp", Recipient: "Front Desk", Subject: "Quarterly invoice"}}
	// path, accept sender and recipient, override subject, one line of notes
	input := "/tmp/scan.png\n\n\nInvoice Q1\nfragile\n\n"
	app := newTestApp(t, input, sc)

	require.NoError(t, app.Add(ctx))
	assert.Contains(t, app.out.String(), "Logging new mail #244")

	m, err := app.store.Get("#244")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", m.Sender)
	assert.Equal(t, "Front Desk", m.Recipient)
	assert.Equal(t, "Invoice Q1", m.Subject)
	assert.Equal(t, "fragile", m.Notes)
	assert.True(t, m.AIScanned)
	require.NotNil(t, m.Attachment)
	assert.True(t, strings.HasPrefix(m.Attachment.Location, "data:image/png;base64,"))

	notices := app.notices.String()
	assert.Contains(t, notices, "◈ Scanning document with AI...")
	assert.Contains(t, notices, "✓ Mail logged! Tracking: #244")
}

func TestApp_AddUnsupportedFileManualEntry(t *testing.T) {
	ctx := context.Background()
	stubUpload(t, &models.Upload{Name: "notes.txt", MimeType: "text/plain", Data: []byte("hi")})

	input := "/tmp/notes.txt\nGlobex\nReception\n\n\n"
	app := newTestApp(t, input, &stubScanner{err: errors.New("must not be called")})

	require.NoError(t, app.Add(ctx))
	m, err := app.store.Get("#244")
	require.NoError(t, err)
	assert.False(t, m.AIScanned)
	assert.Equal(t, "Globex", m.Sender)
	assert.Contains(t, app.notices.String(), "⚠ File attached.")
}

func TestApp_AddValidationReleasesID(t *testing.T) {
	ctx := context.Background()
	// skip file, blank sender, a recipient, blank subject, no notes
	input := "\n\nBob\n\n\n"
	app := newTestApp(t, input, nil)

	err := app.Add(ctx)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, app.notices.String(), "✗ Sender and recipient are required.")
	assert.Equal(t, 0, app.store.Counts().Total)

	// the next form reserves a fresh id
	assert.Equal(t, "#245", app.intake.PendingID(ctx))
}

func TestApp_DownloadTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	rows := sampleRows()
	rows[0].Attachment = &models.Attachment{Name: "inv.pdf", MimeType: "application/pdf", Location: srv.URL + "/inv.pdf"}
	app := newTestApp(t, "", nil, rows...)
	app.opts.RequestTimeout = 50 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- app.Download(context.Background(), []string{"#246", t.TempDir()}) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, app.notices.String(), "✗ Download failed:")
	case <-time.After(5 * time.Second):
		t.Fatal("download did not honour the request timeout")
	}
}
