// internal/core/services/guard_test.go
package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListGuard_SecondWriterRejected(t *testing.T) {
	guard := newListGuard()

	assert.True(t, guard.tryAcquire("list-a"))
	assert.False(t, guard.tryAcquire("list-a"), "second acquire of a busy list must be rejected, not queued")
	assert.True(t, guard.tryAcquire("list-b"), "an unrelated list stays acquirable")

	guard.release("list-a")
	assert.True(t, guard.tryAcquire("list-a"))
}

func TestListGuard_ConcurrentAcquireGrantsExactlyOne(t *testing.T) {
	guard := newListGuard()

	const writers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.tryAcquire("list-hot") {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, granted)
}
