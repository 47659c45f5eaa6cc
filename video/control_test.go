package video

import (
	"testing"
	"time"
)

func TestProducerControl_PauseResume(t *testing.T) {
	c := NewProducerControl()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for c.CheckPause() {
			time.Sleep(time.Millisecond)
		}
	}()

	c.RequestPause()
	if !c.IsPaused() {
		t.Fatal("expected paused after RequestPause")
	}

	c.RequestResume()
	waitFor(t, "resume", func() bool { return !c.IsPaused() })

	c.Stop()
	<-done
}

func TestProducerControl_Stop(t *testing.T) {
	c := NewProducerControl()

	if !c.ShouldRun() {
		t.Fatal("expected ShouldRun before Stop")
	}
	c.Stop()
	if c.ShouldRun() {
		t.Fatal("expected !ShouldRun after Stop")
	}
	if c.CheckPause() {
		t.Fatal("CheckPause should return false after Stop")
	}

	// Pausing a stopped producer must not block.
	c.RequestPause()
}

func TestProducerControl_StopWhilePaused(t *testing.T) {
	c := NewProducerControl()

	done := make(chan bool)
	go func() {
		for c.CheckPause() {
			time.Sleep(time.Millisecond)
		}
		done <- true
	}()

	c.RequestPause()
	c.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not exit after Stop while paused")
	}
}

func TestProducerControl_DoublePause(t *testing.T) {
	c := NewProducerControl()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for c.CheckPause() {
			time.Sleep(time.Millisecond)
		}
	}()

	c.RequestPause()
	c.RequestPause()
	if !c.IsPaused() {
		t.Fatal("expected paused")
	}

	c.Stop()
	<-done
}
