package tracker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/mailtrack/internal/models"
)

// FilterAll matches every status.
const FilterAll = "All"

type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

func (o Order) String() string {
	if o == OldestFirst {
		return "oldest"
	}
	return "newest"
}

// Toggle flips the sort direction.
func (o Order) Toggle() Order {
	if o == OldestFirst {
		return NewestFirst
	}
	return OldestFirst
}

// Filter selects and orders records for display.
type Filter struct {
	// Status is FilterAll, empty (same as FilterAll) or a status name.
	Status string
	Search string
	Order  Order
}

// ParseFilterStatus accepts "all" or any status name, in any letter case.
func ParseFilterStatus(s string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(s), FilterAll) {
		return FilterAll, nil
	}
	st, err := models.ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("filter: %w", err)
	}
	return string(st), nil
}

// Match reports whether m passes the status and search criteria.
func (f Filter) Match(m *models.MailRecord) bool {
	if f.Status != "" && f.Status != FilterAll && string(m.Status) != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	for _, field := range []string{m.ID, m.Sender, m.Recipient, m.Subject} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply returns copies of the matching records sorted by creation time.
func Apply(records []*models.MailRecord, f Filter) []*models.MailRecord {
	out := make([]*models.MailRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Order == OldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Counts are dashboard totals.
type Counts struct {
	Total    int
	ByStatus map[models.Status]int
}

func CountByStatus(records []*models.MailRecord) Counts {
	c := Counts{ByStatus: make(map[models.Status]int, len(models.StatusFlow))}
	for _, s := range models.StatusFlow {
		c.ByStatus[s] = 0
	}
	for _, r := range records {
		c.Total++
		c.ByStatus[r.Status]++
	}
	return c
}
