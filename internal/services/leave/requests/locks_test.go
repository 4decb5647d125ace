package requests

import (
	"testing"
	"time"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	var locks keyedMutex

	unlock := locks.Lock("E1")
	acquired := make(chan struct{})
	go func() {
		release := locks.Lock("E1")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	var locks keyedMutex

	unlockA := locks.Lock("E1")
	unlockB := locks.Lock("E2")
	if got := locks.size(); got != 2 {
		t.Fatalf("entries = %d, want 2", got)
	}
	unlockA()
	unlockB()
	if got := locks.size(); got != 0 {
		t.Fatalf("entries = %d, want 0", got)
	}
}
