package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/logging"
	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/scanner"
	"github.com/dmitrijs2005/mailtrack/internal/storage"
	"github.com/go-playground/validator/v10"
)

// ErrScanInProgress rejects a second scan while one is running.
var ErrScanInProgress = errors.New("scan in progress")

var validate = validator.New()

// Draft is the intake form.
type Draft struct {
	Sender    string `validate:"required"`
	Recipient string `validate:"required"`
	Subject   string
	Notes     string
	Upload    *models.Upload
	// ScanOutcome is the result of ProcessFile for Upload, if it was scanned.
	ScanOutcome scanner.Outcome
}

// ScanReport is what ProcessFile learned about an upload.
type ScanReport struct {
	Outcome scanner.Outcome
	Fields  *scanner.Fields
}

// Intake runs the create-mail flow.
type Intake struct {
	store    *Store
	alloc    *Allocator
	scanner  scanner.Scanner
	uploader storage.Uploader
	notify   Notifier
	log      logging.Logger

	mu       sync.Mutex
	pending  string
	scanning atomic.Bool
}

// NewIntake wires the flow. scanner and uploader may be nil: without a
// scanner every scannable upload reports a failed scan, without an uploader
// attachments are saved as metadata only.
func NewIntake(store *Store, alloc *Allocator, sc scanner.Scanner, up storage.Uploader, n Notifier, log logging.Logger) *Intake {
	if n == nil {
		n = nopNotifier{}
	}
	return &Intake{store: store, alloc: alloc, scanner: sc, uploader: up, notify: n, log: log}
}

// ProcessFile classifies u and, when scannable, extracts fields from it.
// Scan failures are outcomes, not errors; the only error is a concurrent scan.
func (in *Intake) ProcessFile(ctx context.Context, u *models.Upload) (ScanReport, error) {
	if !u.Scannable() {
		in.notify.Notify(LevelWarn, "File attached. This format isn't scannable, fill fields manually.")
		return ScanReport{Outcome: scanner.OutcomeUnsupported}, nil
	}
	if !in.scanning.CompareAndSwap(false, true) {
		return ScanReport{}, ErrScanInProgress
	}
	defer in.scanning.Store(false)

	if in.scanner == nil {
		in.notify.Notify(LevelError, "AI scan is not configured. Please fill fields manually.")
		return ScanReport{Outcome: scanner.OutcomeFailed}, nil
	}

	in.notify.Notify(LevelInfo, "Scanning document with AI...")
	fields, err := in.scanner.Scan(ctx, u)
	switch {
	case err == nil:
		in.notify.Notify(LevelSuccess, "AI scan complete, fields autofilled! Review before submitting.")
		return ScanReport{Outcome: scanner.OutcomeSuccess, Fields: fields}, nil
	case errors.Is(err, scanner.ErrNoExtraction):
		in.notify.Notify(LevelError, "Scan returned no data. Please fill manually.")
	default:
		in.notify.Notify(LevelError, "Scan failed. Please fill fields manually.")
	}
	in.log.Warn(ctx, "document scan failed", "file", u.Name, "error", err)
	return ScanReport{Outcome: scanner.OutcomeFailed}, nil
}

// Scanning reports whether a scan is running.
func (in *Intake) Scanning() bool {
	return in.scanning.Load()
}

// ApplyScan copies the report into d. Extracted fields win over typed ones
// only when non-empty.
func ApplyScan(d *Draft, r ScanReport) {
	d.ScanOutcome = r.Outcome
	if r.Fields == nil {
		return
	}
	if r.Fields.Sender != "" {
		d.Sender = r.Fields.Sender
	}
	if r.Fields.Recipient != "" {
		d.Recipient = r.Fields.Recipient
	}
	if r.Fields.Subject != "" {
		d.Subject = r.Fields.Subject
	}
}

// PendingID reserves the id shown while the form is open; Create uses it.
func (in *Intake) PendingID(ctx context.Context) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.pending == "" {
		a := in.alloc.Allocate(ctx)
		in.pending = a.ID
		in.log.Debug(ctx, "tracking id reserved", "id", a.ID, "tier", a.Tier)
	}
	return in.pending
}

// Discard drops the reserved id, e.g. when the form is cancelled.
func (in *Intake) Discard() {
	in.mu.Lock()
	in.pending = ""
	in.mu.Unlock()
}

func (in *Intake) takePending(ctx context.Context) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.pending != "" {
		return in.pending
	}
	a := in.alloc.Allocate(ctx)
	in.log.Debug(ctx, "tracking id allocated", "id", a.ID, "tier", a.Tier)
	return a.ID
}

// Create validates d, stores its attachment and inserts the new record.
// A failed upload downgrades to a record with attachment metadata only.
func (in *Intake) Create(ctx context.Context, d Draft) (*models.MailRecord, error) {
	d.Sender = strings.TrimSpace(d.Sender)
	d.Recipient = strings.TrimSpace(d.Recipient)
	if err := ValidateDraft(&d); err != nil {
		in.notify.Notify(LevelError, "Sender and recipient are required.")
		return nil, err
	}

	id := in.takePending(ctx)

	var att *models.Attachment
	if d.Upload != nil {
		att = d.Upload.Attachment("")
		if in.uploader != nil {
			in.notify.Notify(LevelInfo, "Uploading file...")
			loc, err := in.uploader.Upload(ctx, d.Upload)
			if err != nil {
				in.log.Warn(ctx, "attachment upload failed", "id", id, "file", d.Upload.Name, "error", err)
				in.notify.Notify(LevelWarn, "File upload failed. Mail will be saved without attachment.")
			} else {
				att.Location = loc
			}
		}
	}

	now := nowFn()
	rec := &models.MailRecord{
		ID:         id,
		Sender:     d.Sender,
		Recipient:  d.Recipient,
		Subject:    strings.TrimSpace(d.Subject),
		Notes:      strings.TrimSpace(d.Notes),
		Status:     models.StatusReceived,
		AIScanned:  d.ScanOutcome == scanner.OutcomeSuccess,
		Attachment: att,
		History: []models.HistoryEntry{
			{Status: models.StatusReceived, Time: now, Note: models.ReceivedNote},
		},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := in.store.Insert(ctx, rec)
	if err != nil {
		if errors.Is(err, common.ErrIDInUse) {
			in.Discard()
		}
		in.notify.Notify(LevelError, "Failed to save: "+err.Error())
		return nil, err
	}

	in.Discard()
	in.notify.Notify(LevelSuccess, "Mail logged! Tracking: "+saved.ID)
	return saved, nil
}

// ValidateDraft checks required fields and wraps failures in ErrValidation.
func ValidateDraft(d *Draft) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(msgs, ", "))
}
