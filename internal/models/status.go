package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mailtrack/internal/common"
)

// Status is the position of a mail item in the intake pipeline.
type Status string

const (
	StatusReceived   Status = "Received"
	StatusProcessing Status = "Processing"
	StatusClosed     Status = "Closed"
)

// StatusFlow lists the pipeline in display order.
var StatusFlow = []Status{StatusReceived, StatusProcessing, StatusClosed}

func (s Status) Valid() bool {
	for _, v := range StatusFlow {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts any letter case, e.g. "closed".
func ParseStatus(s string) (Status, error) {
	for _, v := range StatusFlow {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidStatus, s)
}

// TransitionNote is the history note written when a record moves to s.
func TransitionNote(s Status) string {
	return fmt.Sprintf("Status changed to %s.", s)
}

// ReceivedNote is the note of the first history entry of every record.
const ReceivedNote = "Mail received and logged."
