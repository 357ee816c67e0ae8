package filecache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	path   string
	closed bool
}

func (f *fakeHandle) Close() error {
	f.closed = true
	return nil
}

func TestAcquireCachesByPath(t *testing.T) {
	opens := 0
	handles := make(map[string]*fakeHandle)
	c := New(4, func(path string) (Handle, error) {
		opens++
		h := &fakeHandle{path: path}
		handles[path] = h
		return h, nil
	})

	h1, _, err := c.Acquire("a")
	require.NoError(t, err)
	h2, _, err := c.Acquire("a")
	require.NoError(t, err)
	require.Same(t, h1, h2)
	require.Equal(t, 1, opens)
}

func TestEvictionClosesLeastFrequentlyUsed(t *testing.T) {
	handles := make(map[string]*fakeHandle)
	c := New(2, func(path string) (Handle, error) {
		h := &fakeHandle{path: path}
		handles[path] = h
		return h, nil
	})

	_, _, err := c.Acquire("a")
	require.NoError(t, err)
	_, _, err = c.Acquire("b")
	require.NoError(t, err)
	// touch "a" again so its frequency exceeds "b"'s.
	_, _, err = c.Acquire("a")
	require.NoError(t, err)
	// "c" forces an eviction; "b" has the lowest frequency, so it is closed.
	_, _, err = c.Acquire("c")
	require.NoError(t, err)

	require.True(t, handles["b"].closed, "expected b to be evicted and closed")
	require.False(t, handles["a"].closed, "a should not have been evicted")
	require.Equal(t, 2, c.Len())
}

func TestAcquireConcurrentMissesOpenOnce(t *testing.T) {
	var mu sync.Mutex
	opens := 0
	c := New(8, func(path string) (Handle, error) {
		mu.Lock()
		opens++
		mu.Unlock()
		return &fakeHandle{path: path}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Acquire("shared")
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, opens)
}

func TestCapacityNeverExceeded(t *testing.T) {
	c := New(3, func(path string) (Handle, error) {
		return &fakeHandle{path: path}, nil
	})
	for i := 0; i < 50; i++ {
		_, _, err := c.Acquire(fmt.Sprintf("path-%d", i))
		require.NoError(t, err)
		require.LessOrEqual(t, c.Len(), 3)
	}
}

func TestCloseAllClosesEveryHandle(t *testing.T) {
	handles := make(map[string]*fakeHandle)
	c := New(4, func(path string) (Handle, error) {
		h := &fakeHandle{path: path}
		handles[path] = h
		return h, nil
	})
	for _, p := range []string{"a", "b", "c"} {
		_, _, err := c.Acquire(p)
		require.NoError(t, err)
	}
	c.CloseAll()
	for p, h := range handles {
		require.Truef(t, h.closed, "handle %s not closed after CloseAll", p)
	}
	require.Equal(t, 0, c.Len())
}

func TestAcquireLockSerializesSeekReadPairs(t *testing.T) {
	c := New(2, func(path string) (Handle, error) {
		return &fakeHandle{path: path}, nil
	})
	_, withLock, err := c.Acquire("a")
	require.NoError(t, err)

	var mu sync.Mutex
	var order []int
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			withLock(func() error {
				n := atomic.AddInt32(&inside, 1)
				mu.Lock()
				if n > maxInside {
					maxInside = n
				}
				order = append(order, i)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	require.Len(t, order, 5)
	require.Equal(t, int32(1), maxInside, "withLock let callers overlap")
}
