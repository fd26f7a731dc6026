package core

import "time"

// FrameSampleCount is the window used to average frame times.
const FrameSampleCount = 30

// FrameMetrics tracks frames per second and a rolling average frame time. It is
// owned by the frame loop and feeds the window title.
type FrameMetrics struct {
	samples     [FrameSampleCount]time.Duration
	next        int
	avg         time.Duration
	frames      int
	accumulated time.Duration
	fps         int
}

// Update records the duration of one frame.
func (m *FrameMetrics) Update(frame time.Duration) {
	m.samples[m.next] = frame
	if m.next == FrameSampleCount-1 {
		var sum time.Duration
		for _, s := range m.samples {
			sum += s
		}
		m.avg = sum / FrameSampleCount
	}
	m.next = (m.next + 1) % FrameSampleCount

	m.frames++
	m.accumulated += frame
	if m.accumulated >= time.Second {
		m.fps = m.frames
		m.frames = 0
		m.accumulated -= time.Second
	}
}

// FPS is the number of frames counted in the last full second.
func (m *FrameMetrics) FPS() int {
	return m.fps
}

// FrameTime is the average frame time over the last full sample window.
func (m *FrameMetrics) FrameTime() time.Duration {
	return m.avg
}
