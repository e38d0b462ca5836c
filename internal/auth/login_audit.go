package auth

import (
	"sync"
	"time"
)

// LoginAttempt is one entry in the login audit trail
type LoginAttempt struct {
	Username string    `json:"username"`
	RemoteIP string    `json:"remote_ip"`
	Success  bool      `json:"success"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

// LoginAudit keeps the most recent login attempts in a fixed-capacity ring.
// Old entries are overwritten; memory use never grows with traffic.
type LoginAudit struct {
	mu      sync.Mutex
	entries []LoginAttempt
	next    int
	filled  bool
}

// NewLoginAudit creates a ring holding up to capacity attempts.
func NewLoginAudit(capacity int) *LoginAudit {
	if capacity <= 0 {
		capacity = 512
	}
	return &LoginAudit{entries: make([]LoginAttempt, capacity)}
}

// Record appends an attempt, overwriting the oldest when full.
func (a *LoginAudit) Record(attempt LoginAttempt) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries[a.next] = attempt
	a.next++
	if a.next == len(a.entries) {
		a.next = 0
		a.filled = true
	}
}

// Recent returns recorded attempts, newest first.
func (a *LoginAudit) Recent() []LoginAttempt {
	a.mu.Lock()
	defer a.mu.Unlock()

	size := a.next
	if a.filled {
		size = len(a.entries)
	}

	out := make([]LoginAttempt, 0, size)
	for i := 1; i <= size; i++ {
		idx := a.next - i
		if idx < 0 {
			idx += len(a.entries)
		}
		out = append(out, a.entries[idx])
	}
	return out
}
