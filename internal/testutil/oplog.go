package testutil

import (
	"sync"
	"time"

	"sfm/internal/sfm"
)

// MemoryOperationLog keeps operation log entries in memory. Err, when set,
// is returned by Record instead of storing the entry.
type MemoryOperationLog struct {
	mu      sync.Mutex
	clock   sfm.Clock
	entries []sfm.LogEntry
	Err     error
}

var _ sfm.OperationLog = (*MemoryOperationLog)(nil)

// NewMemoryOperationLog creates an empty log stamped by clock.
func NewMemoryOperationLog(clock sfm.Clock) *MemoryOperationLog {
	return &MemoryOperationLog{clock: clock}
}

func (l *MemoryOperationLog) Record(subject, operation string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.entries = append(l.entries, sfm.LogEntry{
		File:      subject,
		Operation: operation,
		Timestamp: l.clock.Now().Format(time.RFC3339Nano),
	})
	return nil
}

func (l *MemoryOperationLog) Entries() ([]sfm.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sfm.LogEntry(nil), l.entries...), nil
}

// Operations returns just the operation field of every entry, in order.
func (l *MemoryOperationLog) Operations() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ops := make([]string, len(l.entries))
	for i, e := range l.entries {
		ops[i] = e.Operation
	}
	return ops
}
