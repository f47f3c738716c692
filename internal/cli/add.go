package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mailtrack/internal/filex"
	"github.com/dmitrijs2005/mailtrack/internal/tracker"
)

// readUpload is a test seam for filex.ReadUpload.
var readUpload = filex.ReadUpload

// Add walks through the intake form:
//  1. reserves the tracking id and shows it,
//  2. optionally reads a document and runs the AI scan on it,
//  3. prompts for sender, recipient, subject and notes, prefilled from
//     the scan,
//  4. creates the record through the intake flow.
//
// The reserved id is released on any early exit.
func (a *App) Add(ctx context.Context) (err error) {
	id := a.intake.PendingID(ctx)
	defer func() {
		if err != nil {
			a.intake.Discard()
		}
	}()
	fmt.Fprintf(a.out, "Logging new mail %s\n", id)

	var d tracker.Draft

	path, err := GetSimpleText(a.reader, "Attach document (file path, empty to skip)", a.out)
	if err != nil {
		return err
	}
	if path != "" {
		u, err := readUpload(path)
		if err != nil {
			a.notify.Notify(tracker.LevelError, "Cannot read file: "+err.Error())
			return err
		}
		d.Upload = u

		report, err := a.intake.ProcessFile(ctx, u)
		if errors.Is(err, tracker.ErrScanInProgress) {
			a.notify.Notify(tracker.LevelWarn, "A scan is already running. Fill fields manually.")
		} else if err != nil {
			return err
		}
		tracker.ApplyScan(&d, report)
	}

	if d.Sender, err = GetWithDefault(a.reader, "Sender", d.Sender, a.out); err != nil {
		return err
	}
	if d.Recipient, err = GetWithDefault(a.reader, "Recipient", d.Recipient, a.out); err != nil {
		return err
	}
	if d.Subject, err = GetWithDefault(a.reader, "Subject", d.Subject, a.out); err != nil {
		return err
	}
	if d.Notes, err = GetMultiline(a.reader, "Notes", a.out); err != nil {
		return err
	}

	_, err = a.intake.Create(ctx, d)
	return err
}
