package locks_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/questbound/quest-api/internal/pkg/locks"
)

func TestSameKeySerializes(t *testing.T) {
	k := locks.NewKeyed()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("char_1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestDistinctKeysAreIndependent(t *testing.T) {
	k := locks.NewKeyed()

	unlockA := k.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		unlockB()
		close(done)
	}()

	<-done
}
