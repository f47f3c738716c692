package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/tracker"
)

// Comment posts the remaining arguments as a comment under the session
// author.
func (a *App) Comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("comment <id> <text>")
	}
	_, c, err := a.store.AddComment(ctx, args[0], a.author, strings.Join(args[1:], " "))
	if err != nil {
		a.notify.Notify(tracker.LevelError, "Failed to post comment: "+err.Error())
		return err
	}
	a.notify.Notify(tracker.LevelSuccess, "Comment posted as "+c.Author+".")
	return nil
}

// Uncomment deletes a comment given by its 1-based position in "show" or
// by its id.
func (a *App) Uncomment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("uncomment <id> <n|comment-id>")
	}
	m, err := a.store.Get(args[0])
	if err != nil {
		a.notify.Notify(tracker.LevelError, "No mail with tracking id "+args[0]+".")
		return err
	}

	cid := models.CommentID(args[1])
	if n, convErr := strconv.Atoi(args[1]); convErr == nil && n >= 1 && n <= len(m.Comments) {
		cid = m.Comments[n-1].ID
	}

	if _, err := a.store.DeleteComment(ctx, m.ID, cid); err != nil {
		a.notify.Notify(tracker.LevelError, "Failed to delete comment: "+err.Error())
		return err
	}
	a.notify.Notify(tracker.LevelSuccess, "Comment deleted.")
	return nil
}

// SetAuthor sets the name comments are posted under; no argument resets it
// to the default author.
func (a *App) SetAuthor(ctx context.Context, args []string) error {
	a.author = strings.TrimSpace(strings.Join(args, " "))
	if a.author == "" {
		printlnFn("Posting comments under the default author.")
		return nil
	}
	printlnFn("Posting comments as " + a.author + ".")
	return nil
}
