package main

import (
	"sync"
	"sync/atomic"
	"time"
)

type durationRing struct {
	buf   []time.Duration
	idx   int
	count int
}

func newDurationRing(n int) *durationRing {
	if n < 1 {
		n = 1
	}
	return &durationRing{buf: make([]time.Duration, n)}
}

func (r *durationRing) add(d time.Duration) {
	r.buf[r.idx] = d
	r.idx++
	if r.idx >= len(r.buf) {
		r.idx = 0
	}
	if r.count < len(r.buf) {
		r.count++
	}
}

type durationStats struct {
	avg time.Duration
	max time.Duration
	n   int
}

func (r *durationRing) snapshot() durationStats {
	if r.count == 0 {
		return durationStats{}
	}
	var sum, maxDur time.Duration
	for i := 0; i < r.count; i++ {
		d := r.buf[i]
		sum += d
		if d > maxDur {
			maxDur = d
		}
	}
	return durationStats{avg: sum / time.Duration(r.count), max: maxDur, n: r.count}
}

// frameMetrics tracks playback pacing: how many frames have been shown and
// the wall-clock interval between them. Written by the renderer goroutine,
// read by the view.
type frameMetrics struct {
	enabled atomic.Bool

	mu        sync.Mutex
	frames    uint64
	lastFrame time.Time
	interval  *durationRing
}

func newFrameMetrics(window int) *frameMetrics {
	return &frameMetrics{interval: newDurationRing(window)}
}

func (m *frameMetrics) setEnabled(v bool) { m.enabled.Store(v) }

func (m *frameMetrics) observeFrame(now time.Time) {
	if !m.enabled.Load() {
		return
	}
	m.mu.Lock()
	m.frames++
	if !m.lastFrame.IsZero() {
		m.interval.add(now.Sub(m.lastFrame))
	}
	m.lastFrame = now
	m.mu.Unlock()
}

type pacingSnapshot struct {
	frames   uint64
	interval durationStats
	fps      float64
}

func (m *frameMetrics) snapshot() pacingSnapshot {
	if !m.enabled.Load() {
		return pacingSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.interval.snapshot()
	fps := 0.0
	if stats.avg > 0 {
		fps = float64(time.Second) / float64(stats.avg)
	}
	return pacingSnapshot{frames: m.frames, interval: stats, fps: fps}
}
