package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/filex"
	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/tracker"
)

// SetStatus moves a record to another pipeline status.
func (a *App) SetStatus(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("status <id> <received|processing|closed>")
	}
	target, err := models.ParseStatus(args[1])
	if err != nil {
		return usage("status <id> <received|processing|closed>")
	}

	_, err = a.store.Advance(ctx, args[0], target)
	switch {
	case err == nil:
		a.notify.Notify(tracker.LevelSuccess, fmt.Sprintf("Status set to %s.", target))
	case errors.Is(err, common.ErrStatusUnchanged):
		a.notify.Notify(tracker.LevelInfo, fmt.Sprintf("Already %s.", target))
	default:
		a.notify.Notify(tracker.LevelError, "Failed to update status: "+err.Error())
	}
	return err
}

// Rename changes a record's tracking id.
func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("rename <id> <new-id>")
	}

	_, err := a.store.Rename(ctx, args[0], args[1])
	switch {
	case err == nil:
		a.notify.Notify(tracker.LevelSuccess, "Tracking ID updated.")
	case errors.Is(err, common.ErrInvalidID):
		a.notify.Notify(tracker.LevelInfo, "Tracking ID unchanged.")
	case errors.Is(err, common.ErrIDInUse):
		a.notify.Notify(tracker.LevelError, "That tracking ID is already in use.")
	default:
		a.notify.Notify(tracker.LevelError, "Failed to update ID: "+err.Error())
	}
	return err
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, 0, "Enter tracking id to delete")
	if err != nil {
		return err
	}
	if err := a.store.Remove(ctx, id); err != nil {
		a.notify.Notify(tracker.LevelError, "Failed to delete: "+err.Error())
		return err
	}
	a.notify.Notify(tracker.LevelError, "Mail removed.")
	return nil
}

// Download saves a record's attachment for viewing outside the console.
// The optional second argument overrides the download directory.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("download <id> [dir]")
	}
	m, err := a.store.Get(args[0])
	if err != nil {
		a.notify.Notify(tracker.LevelError, "No mail with tracking id "+args[0]+".")
		return err
	}
	if m.Attachment == nil || m.Attachment.Location == "" {
		a.notify.Notify(tracker.LevelWarn, "File preview not available.")
		return common.ErrorNotFound
	}

	dirName := a.opts.DownloadDir
	if len(args) > 1 {
		dirName = args[1]
	}

	if a.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.RequestTimeout)
		defer cancel()
	}
	_, data, err := fetchFn(ctx, m.Attachment.Location)
	if err != nil {
		a.notify.Notify(tracker.LevelError, "Download failed: "+err.Error())
		return err
	}
	dir, err := filex.EnsureSubdDir(dirName)
	if err != nil {
		a.notify.Notify(tracker.LevelError, "Download failed: "+err.Error())
		return err
	}
	path, err := filex.WriteDownload(dir, m.Attachment.Name, data)
	if err != nil {
		a.notify.Notify(tracker.LevelError, "Download failed: "+err.Error())
		return err
	}
	a.notify.Notify(tracker.LevelSuccess, "Saved to "+path)
	return nil
}
