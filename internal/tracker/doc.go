// Package tracker holds the client-side core of MailTrack: tracking-id
// allocation, the session record store with its reconciliation policy, the
// status lifecycle, comment threads, filtering and the intake flow.
//
// Every mutation goes to the backend first. Local state changes only after
// the backend confirms, so a failed call leaves the store as it was.
package tracker

import (
	"time"

	"github.com/google/uuid"
)

// seams for tests
var (
	nowFn = func() time.Time { return time.Now().UTC() }

	newCommentID = func() (string, error) {
		id, err := uuid.NewV7()
		if err != nil {
			return "", err
		}
		return id.String(), nil
	}
)
