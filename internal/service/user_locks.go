package service

import (
	"sync"

	"github.com/google/uuid"
)

// userLocks serializes capacity-relevant operations per user. The capacity
// check is read-then-decide-then-write; without serialization two concurrent
// requests for the same user could both observe a free active slot and both
// write StatusNow. The deployment is single-process, so an in-process
// per-user mutex is sufficient to make the check-and-write atomic alongside
// the surrounding database transaction.
//
// Entries are refcounted and reaped once the last holder releases, so the
// map stays bounded by concurrent users rather than all users ever seen.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]*userLock)}
}

// acquire locks the mutex for the given user and returns the release
// function. Release must be called exactly once.
func (l *userLocks) acquire(userID uuid.UUID) func() {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &userLock{}
		l.locks[userID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
