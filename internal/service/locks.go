package service

import "sync"

// AccountLocks serializes mutating work per account. Lot consumption and
// running-balance computation are read-then-write sequences, so two writers
// on the same account could double-spend shares or fork the balance chain.
// Different accounts proceed in parallel.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAccountLocks creates an empty lock registry shared by all services that
// mutate ledger state.
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[string]*sync.Mutex)}
}

// Get returns the mutex for an account, creating it on first use.
func (l *AccountLocks) Get(accountID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.locks[accountID]; !exists {
		l.locks[accountID] = &sync.Mutex{}
	}
	return l.locks[accountID]
}
