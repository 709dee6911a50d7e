package testutil

import (
	"net"
	"sync"
	"testing"
	"time"
)

// RunConcurrent runs fn on n goroutines and waits for all of them.
// A panic in any worker fails the test instead of crashing the binary.
func RunConcurrent(t *testing.T, n int, fn func(workerID int)) {
	t.Helper()

	var wg sync.WaitGroup
	wg.Add(n)

	for i := range n {
		go func(workerID int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("worker %d panicked: %v", workerID, r)
				}
			}()
			fn(workerID)
		}(i)
	}

	wg.Wait()
}

// FreeAddr returns a loopback address with a port that was free a moment ago
func FreeAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// Eventually polls cond until it returns true or timeout elapses
func Eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %s", timeout)
}
