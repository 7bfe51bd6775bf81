package keylock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"villa/shared/keylock"
)

func TestLockSerializesSameKey(t *testing.T) {
	locks := keylock.New()

	const workers = 50

	counter := 0

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			locks.Lock("room-1")
			defer locks.Unlock("room-1")

			counter++
		}()
	}

	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	locks := keylock.New()

	locks.Lock("room-1")
	defer locks.Unlock("room-1")

	done := make(chan struct{})

	go func() {
		locks.Lock("room-2")
		locks.Unlock("room-2")
		close(done)
	}()

	<-done
}

func TestUnlockUnheldPanics(t *testing.T) {
	locks := keylock.New()

	assert.Panics(t, func() {
		locks.Unlock("never-locked")
	})
}
