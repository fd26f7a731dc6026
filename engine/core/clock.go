package core

import "time"

// Clock measures frame time for the frame loop.
type Clock struct {
	now     func() time.Time
	start   time.Time
	elapsed time.Duration
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Update refreshes the elapsed time. Has no effect on a stopped clock.
func (c *Clock) Update() {
	if !c.start.IsZero() {
		c.elapsed = c.now().Sub(c.start)
	}
}

// Start resets the elapsed time and starts counting from now.
func (c *Clock) Start() {
	c.start = c.now()
	c.elapsed = 0
}

// Stop halts the clock without resetting the elapsed time.
func (c *Clock) Stop() {
	c.start = time.Time{}
}

func (c *Clock) Running() bool {
	return !c.start.IsZero()
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}
