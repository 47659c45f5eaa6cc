package video

import "sync"

// ProducerControl coordinates pause, resume and stop between the host and
// the goroutine producing frames.
type ProducerControl struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pauseReq bool
	paused   bool
	stopped  bool
}

// NewProducerControl creates a control in the running state.
func NewProducerControl() *ProducerControl {
	c := &ProducerControl{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// RequestPause asks the producer to pause and blocks until it has
// acknowledged, so no frame is produced after RequestPause returns. It
// returns immediately if the producer is already paused or stopped.
func (c *ProducerControl) RequestPause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.pauseReq = true
	for !c.paused && !c.stopped {
		c.cond.Wait()
	}
}

// RequestResume lets a paused producer continue.
func (c *ProducerControl) RequestResume() {
	c.mu.Lock()
	c.pauseReq = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

// CheckPause is called by the producer between frames. It blocks while a
// pause is requested and returns false once the producer should exit.
func (c *ProducerControl) CheckPause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pauseReq && !c.stopped {
		if !c.paused {
			c.paused = true
			c.cond.Broadcast()
		}
		c.cond.Wait()
	}
	c.paused = false
	return !c.stopped
}

// Stop tells the producer to exit and releases any waiters.
func (c *ProducerControl) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.pauseReq = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

// ShouldRun reports whether the producer should keep going.
func (c *ProducerControl) ShouldRun() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.stopped
}

// IsPaused reports whether the producer is parked in CheckPause.
func (c *ProducerControl) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}
