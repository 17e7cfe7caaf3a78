package gamelock

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRejectsSecondMutationForSameGame(t *testing.T) {
	reg := New()

	release, err := reg.Acquire("g1", "approve_evolution")
	require.NoError(t, err)
	assert.True(t, reg.Busy("g1"))

	_, err = reg.Acquire("g1", "start_scene")
	require.ErrorIs(t, err, ErrGameBusy)
	assert.Contains(t, err.Error(), "approve_evolution")

	other, err := reg.Acquire("g2", "start_scene")
	require.NoError(t, err)
	other()

	release()
	release()
	assert.False(t, reg.Busy("g1"))

	again, err := reg.Acquire("g1", "start_scene")
	require.NoError(t, err)
	again()
}

func TestDoReleasesOnError(t *testing.T) {
	reg := New()
	boom := errors.New("boom")

	err := reg.Do("g1", "commit_event", func() error { return boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, reg.Busy("g1"))
}

func TestConcurrentAcquireAdmitsOne(t *testing.T) {
	reg := New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var releases []func()
	busy := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := reg.Acquire("g1", "detect_evolutions")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				busy++
				return
			}
			releases = append(releases, release)
		}()
	}
	wg.Wait()

	assert.Len(t, releases, 1)
	assert.Equal(t, 15, busy)
	releases[0]()
}
