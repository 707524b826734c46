package service

import "sync"

// LoanLocks serializes mutating operations per loan. Schedule regeneration
// must not interleave with a payment application against the same loan, so
// both take the loan's lock for the duration of the critical section.
type LoanLocks struct {
	mu    sync.Mutex
	locks map[int32]*sync.Mutex
}

// NewLoanLocks creates a new LoanLocks
func NewLoanLocks() *LoanLocks {
	return &LoanLocks{locks: make(map[int32]*sync.Mutex)}
}

// Lock acquires the lock for the given loan and returns it so callers can
// defer the unlock:
//
//	defer locks.Lock(loanID).Unlock()
func (l *LoanLocks) Lock(loanID int32) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[loanID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[loanID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m
}
