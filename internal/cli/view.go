package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/tracker"
)

const dateLayout = "Jan 02, 2006, 03:04 PM"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

// List prints the records matching the current filter as a table.
func (a *App) List(ctx context.Context) error {
	recs := a.store.List(a.filter)
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No mail found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSENDER\tRECIPIENT\tSUBJECT\tDATE ADDED\t")
	for _, m := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Status, m.Sender, m.Recipient, orDash(m.Subject), formatDate(m.CreatedAt), badges(m))
	}
	return tw.Flush()
}

func badges(m *models.MailRecord) string {
	var b []string
	if m.Attachment != nil {
		b = append(b, "📎")
	}
	if m.AIScanned {
		b = append(b, "AI")
	}
	if n := len(m.Comments); n > 0 {
		b = append(b, fmt.Sprintf("💬%d", n))
	}
	return strings.Join(b, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// SetFilter narrows the list to one status, or "all".
func (a *App) SetFilter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("filter <all|received|processing|closed>")
	}
	st, err := tracker.ParseFilterStatus(args[0])
	if err != nil {
		return usage("filter <all|received|processing|closed>")
	}
	a.filter.Status = st
	return a.List(ctx)
}

// Search sets the free-text query; no arguments clears it.
func (a *App) Search(ctx context.Context, args []string) error {
	a.filter.Search = strings.Join(args, " ")
	return a.List(ctx)
}

func (a *App) ToggleSort(ctx context.Context) error {
	a.filter.Order = a.filter.Order.Toggle()
	return a.List(ctx)
}

// Stats prints the dashboard totals.
func (a *App) Stats(ctx context.Context) error {
	c := a.store.Counts()
	parts := []string{fmt.Sprintf("Total %d", c.Total)}
	for _, s := range models.StatusFlow {
		parts = append(parts, fmt.Sprintf("%s %d", s, c.ByStatus[s]))
	}
	fmt.Fprintln(a.out, strings.Join(parts, " | "))
	return nil
}

func (a *App) Reload(ctx context.Context) error {
	if err := a.store.Load(ctx); err != nil {
		a.notify.Notify(tracker.LevelError, "Failed to load mail: "+err.Error())
		return err
	}
	a.notify.Notify(tracker.LevelInfo, fmt.Sprintf("Loaded %d mail items.", a.store.Counts().Total))
	return nil
}

// Show prints one record with its history (newest first) and discussion.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, 0, "Enter tracking id to show")
	if err != nil {
		return err
	}
	m, err := a.store.Get(id)
	if err != nil {
		a.notify.Notify(tracker.LevelError, "No mail with tracking id "+id+".")
		return err
	}
	a.printRecord(m)
	return nil
}

func (a *App) printRecord(m *models.MailRecord) {
	w := a.out
	fmt.Fprintf(w, "%s  [%s]\n", m.ID, m.Status)
	fmt.Fprintf(w, "  From:      %s\n", m.Sender)
	fmt.Fprintf(w, "  To:        %s\n", m.Recipient)
	fmt.Fprintf(w, "  Subject:   %s\n", orDash(m.Subject))
	if m.Notes != "" {
		fmt.Fprintf(w, "  Notes:     %s\n", m.Notes)
	}
	if m.AIScanned {
		fmt.Fprintln(w, "  Fields extracted by AI scan")
	}
	fmt.Fprintf(w, "  Added:     %s\n", formatDate(m.CreatedAt))
	fmt.Fprintf(w, "  Updated:   %s\n", formatDate(m.UpdatedAt))

	if att := m.Attachment; att != nil {
		fmt.Fprintf(w, "  Attached:  %s (%s, %s)\n", att.Name, att.Size, att.MimeType)
		if att.Location == "" {
			fmt.Fprintln(w, "             File preview not available")
		}
	}

	fmt.Fprintln(w, "\nTracking history")
	for i := len(m.History) - 1; i >= 0; i-- {
		h := m.History[i]
		fmt.Fprintf(w, "  %-10s %s  %s\n", strings.ToUpper(string(h.Status)), formatDate(h.Time), h.Note)
	}

	fmt.Fprintln(w, "\nDiscussion")
	if len(m.Comments) == 0 {
		fmt.Fprintln(w, "  No comments yet. Start the discussion.")
		return
	}
	for i, c := range m.Comments {
		fmt.Fprintf(w, "  %d. %s · %s\n     %s\n", i+1, c.Author, formatDate(c.Time), c.Text)
	}
}
