package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameMetricsAverageAfterFullWindow(t *testing.T) {
	var m FrameMetrics
	for i := 0; i < FrameSampleCount-1; i++ {
		m.Update(10 * time.Millisecond)
	}
	assert.Zero(t, m.FrameTime(), "average is only published after a full window")

	m.Update(10 * time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, m.FrameTime())
}

func TestFrameMetricsFPS(t *testing.T) {
	var m FrameMetrics
	for i := 0; i < 60; i++ {
		m.Update(time.Second / 60)
	}
	// 60 frames of 1/60s do not quite reach a second due to integer division
	m.Update(time.Second / 60)
	assert.Equal(t, 61, m.FPS())
}

func TestClockLifecycle(t *testing.T) {
	now := time.Unix(100, 0)
	c := &Clock{now: func() time.Time { return now }}

	c.Update()
	assert.Zero(t, c.Elapsed(), "stopped clock does not advance")

	c.Start()
	assert.True(t, c.Running())
	now = now.Add(2 * time.Second)
	c.Update()
	assert.Equal(t, 2*time.Second, c.Elapsed())

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	assert.Equal(t, 2*time.Second, c.Elapsed())
	assert.False(t, c.Running())
}
