package models

import (
	"time"
)

// Row is the flat, snake_case shape of a record in the mails table.
type Row struct {
	ID          string         `json:"id"`
	Sender      string         `json:"sender"`
	Recipient   string         `json:"recipient"`
	Subject     string         `json:"subject"`
	Notes       string         `json:"notes"`
	Status      Status         `json:"status"`
	AIScanned   bool           `json:"ai_scanned"`
	FileInfo    *FileInfo      `json:"file_info"`
	FileDataURL *string        `json:"file_data_url"`
	History     []HistoryEntry `json:"history"`
	Comments    []Comment      `json:"comments"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FileInfo is the attachment metadata column.
type FileInfo struct {
	Name string `json:"name"`
	Size string `json:"size"`
	Type string `json:"type"`
}

// Columns lists the mails table columns in storage order.
var Columns = []string{
	"id", "sender", "recipient", "subject", "notes", "status", "ai_scanned",
	"file_info", "file_data_url", "history", "comments", "created_at", "updated_at",
}

// ToRow maps a record to its table row.
func ToRow(m *MailRecord) Row {
	r := Row{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Subject:   m.Subject,
		Notes:     m.Notes,
		Status:    m.Status,
		AIScanned: m.AIScanned,
		History:   m.History,
		Comments:  m.Comments,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if r.History == nil {
		r.History = []HistoryEntry{}
	}
	if r.Comments == nil {
		r.Comments = []Comment{}
	}
	if a := m.Attachment; a != nil {
		r.FileInfo = &FileInfo{Name: a.Name, Size: a.Size, Type: a.MimeType}
		if a.Location != "" {
			loc := a.Location
			r.FileDataURL = &loc
		}
	}
	return r
}

// FromRow maps a table row to a record. Missing history/comments become
// empty slices.
func FromRow(r Row) *MailRecord {
	m := &MailRecord{
		ID:        r.ID,
		Sender:    r.Sender,
		Recipient: r.Recipient,
		Subject:   r.Subject,
		Notes:     r.Notes,
		Status:    r.Status,
		AIScanned: r.AIScanned,
		History:   r.History,
		Comments:  r.Comments,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if m.History == nil {
		m.History = []HistoryEntry{}
	}
	if m.Comments == nil {
		m.Comments = []Comment{}
	}
	if r.FileInfo != nil {
		m.Attachment = &Attachment{Name: r.FileInfo.Name, Size: r.FileInfo.Size, MimeType: r.FileInfo.Type}
		if r.FileDataURL != nil {
			m.Attachment.Location = *r.FileDataURL
		}
	}
	return m
}

// MailPatch is a partial update. Nil fields are left untouched; to clear
// comments pass an empty, non-nil slice.
type MailPatch struct {
	ID        *string
	Status    *Status
	History   []HistoryEntry
	Comments  []Comment
	UpdatedAt *time.Time
}

// Field is one column assignment of a patch.
type Field struct {
	Column string
	Value  any
}

// Fields returns the set columns in a fixed order, using row names.
func (p MailPatch) Fields() []Field {
	var out []Field
	if p.ID != nil {
		out = append(out, Field{"id", *p.ID})
	}
	if p.Status != nil {
		out = append(out, Field{"status", *p.Status})
	}
	if p.History != nil {
		out = append(out, Field{"history", p.History})
	}
	if p.Comments != nil {
		out = append(out, Field{"comments", p.Comments})
	}
	if p.UpdatedAt != nil {
		out = append(out, Field{"updated_at", *p.UpdatedAt})
	}
	return out
}

// Map renders the patch as a JSON-ready body keyed by row names.
func (p MailPatch) Map() map[string]any {
	fields := p.Fields()
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Column] = f.Value
	}
	return out
}

// Empty reports whether the patch sets nothing.
func (p MailPatch) Empty() bool {
	return len(p.Fields()) == 0
}

// Apply merges the patch into m.
func (p MailPatch) Apply(m *MailRecord) {
	if p.ID != nil {
		m.ID = *p.ID
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.History != nil {
		m.History = append([]HistoryEntry(nil), p.History...)
	}
	if p.Comments != nil {
		m.Comments = append(make([]Comment, 0, len(p.Comments)), p.Comments...)
	}
	if p.UpdatedAt != nil {
		m.UpdatedAt = *p.UpdatedAt
	}
}

// Counter is a named row of the counters table. Value is nil when the row
// exists but holds NULL.
type Counter struct {
	Key   string `json:"key"`
	Value *int64 `json:"value"`
}
