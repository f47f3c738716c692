// Package models defines the mail record and its wire representation.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// MailRecord is one logged item of physical mail.
type MailRecord struct {
	// ID is the tracking id, e.g. "#244".
	ID        string
	Sender    string
	Recipient string
	Subject   string
	Notes     string
	Status    Status
	// AIScanned is true iff the attachment was auto-extracted at creation.
	AIScanned bool
	// Attachment is nil when no document was attached.
	Attachment *Attachment
	History    []HistoryEntry
	Comments   []Comment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Attachment describes the scanned document of a record.
type Attachment struct {
	Name string
	// Size is a display string such as "12.3 KB".
	Size     string
	MimeType string
	// Location is a data URL or a durable URL; empty if the upload failed.
	Location string
}

// HistoryEntry is an immutable audit record of one status transition.
type HistoryEntry struct {
	Status Status    `json:"status"`
	Time   time.Time `json:"time"`
	Note   string    `json:"note"`
}

// Comment is one message in a record's thread.
type Comment struct {
	ID     CommentID `json:"id"`
	Author string    `json:"author"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
}

// CommentID is a string id. Rows written by the browser client carry numeric
// ids (epoch millis), so decoding accepts JSON numbers too.
type CommentID string

func (c *CommentID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = CommentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("comment id: %w", err)
	}
	*c = CommentID(n.String())
	return nil
}

// FormatSize renders a byte count the way the intake form displays it.
func FormatSize(n int64) string {
	return strconv.FormatFloat(float64(n)/1024, 'f', 1, 64) + " KB"
}

// LastHistory returns the most recent history entry.
func (m *MailRecord) LastHistory() (HistoryEntry, bool) {
	if len(m.History) == 0 {
		return HistoryEntry{}, false
	}
	return m.History[len(m.History)-1], true
}

// Clone returns a deep copy so callers cannot alias store state.
func (m *MailRecord) Clone() *MailRecord {
	if m == nil {
		return nil
	}
	c := *m
	if m.Attachment != nil {
		a := *m.Attachment
		c.Attachment = &a
	}
	if m.History != nil {
		c.History = append([]HistoryEntry(nil), m.History...)
	}
	if m.Comments != nil {
		c.Comments = append([]Comment(nil), m.Comments...)
	}
	return &c
}
