package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/logging"
	"github.com/dmitrijs2005/mailtrack/internal/models"
	"github.com/dmitrijs2005/mailtrack/internal/repositories/mails"
)

// Store is the session's view of the mails table.
//
// Mutations hold the write lock across the backend round trip, so callers in
// this process observe them one at a time. Records handed out are copies.
type Store struct {
	mu      sync.RWMutex
	repo    mails.Repository
	log     logging.Logger
	author  string
	records []*models.MailRecord
	loaded  bool
}

// NewStore creates an empty store. defaultAuthor names comments posted
// without an author.
func NewStore(repo mails.Repository, log logging.Logger, defaultAuthor string) *Store {
	if defaultAuthor == "" {
		defaultAuthor = common.DefaultAuthor
	}
	return &Store{repo: repo, log: log, author: defaultAuthor}
}

// Load replaces local state with the backend's full set. On error the
// previous state is kept.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.repo.SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	s.records = recs
	s.loaded = true
	s.log.Debug(ctx, "records loaded", "count", len(recs))
	return nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Get(id string) (*models.MailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("mail %s: %w", id, common.ErrorNotFound)
	}
	return s.records[i].Clone(), nil
}

// List returns the records matching f in f's order.
func (s *Store) List(f Filter) []*models.MailRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Apply(s.records, f)
}

func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CountByStatus(s.records)
}

// Insert writes m to the backend and adds it locally once confirmed.
func (s *Store) Insert(ctx context.Context, m *models.MailRecord) (*models.MailRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, common.ErrNotLoaded
	}
	if strings.TrimSpace(m.ID) == "" {
		return nil, common.ErrInvalidID
	}
	if err := checkRecord(m); err != nil {
		return nil, err
	}
	if s.indexOf(m.ID) >= 0 {
		return nil, fmt.Errorf("insert %s: %w", m.ID, common.ErrIDInUse)
	}

	saved, err := s.repo.Insert(ctx, m)
	if err != nil {
		return nil, err
	}
	s.records = append([]*models.MailRecord{saved}, s.records...)
	s.log.Info(ctx, "mail logged", "id", saved.ID)
	return saved.Clone(), nil
}

// Patch writes p to the backend and merges it locally once confirmed.
func (s *Store) Patch(ctx context.Context, id string, p models.MailPatch) (*models.MailRecord, error) {
	return s.update(ctx, id, func(*models.MailRecord) (models.MailPatch, error) {
		return p, nil
	})
}

// update computes a patch from the current record and applies it, all under
// the write lock.
func (s *Store) update(ctx context.Context, id string, fn func(cur *models.MailRecord) (models.MailPatch, error)) (*models.MailRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, common.ErrNotLoaded
	}
	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("mail %s: %w", id, common.ErrorNotFound)
	}

	p, err := fn(s.records[i].Clone())
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return s.records[i].Clone(), nil
	}
	if p.ID != nil && *p.ID != id && s.indexOf(*p.ID) >= 0 {
		return nil, fmt.Errorf("rename %s: %w", id, common.ErrIDInUse)
	}

	next := s.records[i].Clone()
	p.Apply(next)
	if p.Status != nil || p.History != nil {
		if err := checkRecord(next); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Patch(ctx, id, p); err != nil {
		return nil, err
	}
	s.records[i] = next
	return next.Clone(), nil
}

// Remove deletes the record remotely, then locally. A row already missing
// on the backend is dropped locally as well.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return common.ErrNotLoaded
	}
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("mail %s: %w", id, common.ErrorNotFound)
	}

	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	s.log.Info(ctx, "mail deleted", "id", id)
	return nil
}

// Rename changes a record's tracking id. The new id must be non-blank,
// differ from the old one and not belong to another live record.
func (s *Store) Rename(ctx context.Context, oldID, newID string) (*models.MailRecord, error) {
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return nil, fmt.Errorf("%w: blank", common.ErrInvalidID)
	}
	if newID == oldID {
		return nil, fmt.Errorf("%w: unchanged", common.ErrInvalidID)
	}
	now := nowFn()
	return s.update(ctx, oldID, func(*models.MailRecord) (models.MailPatch, error) {
		return models.MailPatch{ID: &newID, UpdatedAt: &now}, nil
	})
}

func (s *Store) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// checkRecord enforces the history invariant: non-empty, last entry equal
// to the current status.
func checkRecord(m *models.MailRecord) error {
	if !m.Status.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidStatus, m.Status)
	}
	last, ok := m.LastHistory()
	if !ok {
		return fmt.Errorf("%w: mail %s has no history", common.ErrValidation, m.ID)
	}
	if last.Status != m.Status {
		return fmt.Errorf("%w: mail %s history ends in %s, status is %s", common.ErrValidation, m.ID, last.Status, m.Status)
	}
	return nil
}
