package leaktest

import (
	"testing"
	"time"
)

func TestCheckNoGoroutineLeak_WaitsForExitingGoroutines(t *testing.T) {
	CheckNoGoroutineLeak(t, func() {
		go func() {
			time.Sleep(50 * time.Millisecond)
		}()
	})
}

func TestGoroutineChecker_Tolerance(t *testing.T) {
	checker := NewGoroutineChecker(t)

	done := make(chan struct{})
	go func() { <-done }()

	checker.Check(1)
	close(done)
}
