package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/models"
)

// Transition builds the patch that moves m to target at now. Moving to the
// current status is rejected with ErrStatusUnchanged. Any other move is
// allowed, including out of Closed.
func Transition(m *models.MailRecord, target models.Status, now time.Time) (models.MailPatch, error) {
	if !target.Valid() {
		return models.MailPatch{}, fmt.Errorf("%w: %q", common.ErrInvalidStatus, target)
	}
	if m.Status == target {
		return models.MailPatch{}, fmt.Errorf("mail %s is already %s: %w", m.ID, target, common.ErrStatusUnchanged)
	}
	history := make([]models.HistoryEntry, 0, len(m.History)+1)
	history = append(history, m.History...)
	history = append(history, models.HistoryEntry{
		Status: target,
		Time:   now,
		Note:   models.TransitionNote(target),
	})
	return models.MailPatch{
		Status:    &target,
		History:   history,
		UpdatedAt: &now,
	}, nil
}

// Advance moves the record to target and persists the change. A same-status
// request returns ErrStatusUnchanged without touching the backend.
func (s *Store) Advance(ctx context.Context, id string, target models.Status) (*models.MailRecord, error) {
	rec, err := s.update(ctx, id, func(cur *models.MailRecord) (models.MailPatch, error) {
		return Transition(cur, target, nowFn())
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "status changed", "id", id, "status", target)
	return rec, nil
}
