package engine

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestClockFires(t *testing.T) {
	c := NewClock()
	fired := make(chan uint64, 1)

	gen := c.Schedule("s_1", 10*time.Millisecond, func(g uint64) { fired <- g })

	select {
	case g := <-fired:
		if g != gen {
			t.Fatalf("fired with gen %d, scheduled %d", g, gen)
		}
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	if c.Pending("s_1") {
		t.Fatal("fired timer still pending")
	}
}

func TestClockCancelBeatsFire(t *testing.T) {
	c := NewClock()
	var count int32

	c.Schedule("s_1", 20*time.Millisecond, func(uint64) { atomic.AddInt32(&count, 1) })
	c.Cancel("s_1")

	time.Sleep(60 * time.Millisecond)
	if n := atomic.LoadInt32(&count); n != 0 {
		t.Fatalf("cancelled timer fired %d times", n)
	}
	if c.Pending("s_1") {
		t.Fatal("cancelled timer still pending")
	}
}

func TestClockRescheduleReplaces(t *testing.T) {
	c := NewClock()
	fired := make(chan uint64, 2)

	first := c.Schedule("s_1", 15*time.Millisecond, func(g uint64) { fired <- g })
	second := c.Schedule("s_1", 30*time.Millisecond, func(g uint64) { fired <- g })
	if second <= first {
		t.Fatalf("generations must increase: %d then %d", first, second)
	}

	select {
	case g := <-fired:
		if g != second {
			t.Fatalf("replaced timer fired with gen %d, want %d", g, second)
		}
	case <-time.After(time.Second):
		t.Fatal("replacement timer never fired")
	}

	// The first timer was stopped; nothing else should arrive.
	select {
	case g := <-fired:
		t.Fatalf("stopped timer fired with gen %d", g)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClockTracksSessionsIndependently(t *testing.T) {
	c := NewClock()
	fired := make(chan string, 2)

	c.Schedule("s_1", 10*time.Millisecond, func(uint64) { fired <- "s_1" })
	c.Schedule("s_2", 10*time.Millisecond, func(uint64) { fired <- "s_2" })
	c.Cancel("s_1")

	select {
	case id := <-fired:
		if id != "s_2" {
			t.Fatalf("want s_2 to fire, got %s", id)
		}
	case <-time.After(time.Second):
		t.Fatal("s_2 never fired")
	}
}
