package core

import (
	"sync"

	"github.com/hq2318768188/FFEngine/engine/containers"
)

const AVG_COUNT int = 30

// FrameMetrics keeps a rolling average of frame times and the frames
// rendered during the last full second.
type FrameMetrics struct {
	mutex              sync.RWMutex
	frameTimes         *containers.RingQueue[float64]
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
	totalFrames        uint64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Update records one frame that took frameElapsedTime seconds.
func (m *FrameMetrics) Update(frameElapsedTime float64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	frameMS := frameElapsedTime * 1000.0
	m.frameTimes.Push(frameMS)

	var sum float64
	m.frameTimes.Each(func(v float64) {
		sum += v
	})
	m.msAvg = sum / float64(m.frameTimes.Len())

	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}

	m.frames++
	m.totalFrames++
}

func (m *FrameMetrics) FPS() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.fps
}

func (m *FrameMetrics) FrameTime() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.msAvg
}

func (m *FrameMetrics) Frame() (float64, float64) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.fps, m.msAvg
}

func (m *FrameMetrics) TotalFrames() uint64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.totalFrames
}
