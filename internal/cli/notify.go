package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/mailtrack/internal/tracker"
)

// Notifier prints tracker notices as one-line toasts.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

func (n *Notifier) Notify(level tracker.Level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", symbol(level), msg)
}

func symbol(level tracker.Level) string {
	switch level {
	case tracker.LevelError:
		return "✗"
	case tracker.LevelInfo:
		return "◈"
	case tracker.LevelWarn:
		return "⚠"
	default:
		return "✓"
	}
}
