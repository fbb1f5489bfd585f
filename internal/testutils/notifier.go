package testutils

import (
	"context"
	"sync"

	"github.com/ahrav/go-scoresheet/internal/domain"
	"github.com/ahrav/go-scoresheet/internal/ports"
)

// RecordingNotifier keeps every notice it is given. When Err is set, notices
// are still recorded and Err is returned.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
	Err     error
}

// Notify implements ports.Notifier.
func (n *RecordingNotifier) Notify(_ context.Context, notice domain.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.Err
}

// Notices returns a copy of the recorded notices.
func (n *RecordingNotifier) Notices() []domain.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Notice, len(n.notices))
	copy(out, n.notices)
	return out
}

var _ ports.Notifier = (*RecordingNotifier)(nil)
