// Package gamelock tracks which games have a mutating call in flight so a
// second mutation for the same game fails fast instead of interleaving.
package gamelock

import (
	"errors"
	"fmt"
	"sync"
)

var ErrGameBusy = errors.New("game has a mutation in flight")

// Registry is keyed by game id. The zero value is not usable; use New.
type Registry struct {
	mu       sync.Mutex
	inFlight map[string]string
}

func New() *Registry {
	return &Registry{inFlight: make(map[string]string)}
}

// Acquire marks gameID busy on behalf of op. The returned release function
// must be called exactly once; extra calls are ignored.
func (r *Registry) Acquire(gameID, op string) (release func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if holder, busy := r.inFlight[gameID]; busy {
		return nil, fmt.Errorf("%w: game %s is running %s", ErrGameBusy, gameID, holder)
	}
	r.inFlight[gameID] = op

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.inFlight, gameID)
			r.mu.Unlock()
		})
	}, nil
}

// Do runs fn while holding gameID.
func (r *Registry) Do(gameID, op string, fn func() error) error {
	release, err := r.Acquire(gameID, op)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func (r *Registry) Busy(gameID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, busy := r.inFlight[gameID]
	return busy
}
