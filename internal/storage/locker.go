package storage

import (
	"sync"

	"github.com/moby/locker"
)

// KeyedMutex hands out one mutex per key. Entries are reference counted by
// the underlying locker and dropped when nobody holds or waits for them, so
// the table does not grow with every tenant ever seen.
type KeyedMutex struct {
	locks *locker.Locker
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: locker.New()}
}

// Lock blocks until key is free and returns the matching unlock func.
// Calling unlock more than once is a no-op.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.locks.Lock(key)
	var once sync.Once
	return func() {
		once.Do(func() { _ = k.locks.Unlock(key) })
	}
}
