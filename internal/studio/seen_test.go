package studio

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSeenSet_MarkSeenOnce(t *testing.T) {
	s := NewSeenSet()
	if !s.MarkSeen("agt-support") {
		t.Error("first MarkSeen: got false, want true")
	}
	if s.MarkSeen("agt-support") {
		t.Error("second MarkSeen: got true, want false")
	}
	if !s.Seen("agt-support") {
		t.Error("Seen: got false, want true")
	}
	if s.Seen("agt-other") {
		t.Error("Seen(unknown): got true, want false")
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len: got %d, want 1", got)
	}
}

func TestSeenSet_ConcurrentFirstWins(t *testing.T) {
	s := NewSeenSet()
	var firsts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.MarkSeen("kb-billing") {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := firsts.Load(); got != 1 {
		t.Errorf("first marks: got %d, want 1", got)
	}
}
