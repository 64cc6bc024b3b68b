package frontend

import "time"

// statsWindow is the number of frame samples kept for fps averaging.
const statsWindow = 60

// Stats tracks frame timing. FPS, MinFPS and SampleMinFPS are recomputed on
// every Record so they always agree with the sample window.
type Stats struct {
	NFrame           uint64
	StartTime        time.Time
	LastMeasuredTime time.Time
	LastDiffTime     time.Duration
	CumulFrame       uint32
	CumulTimeMs      float64

	// FPS is 1000 divided by the average sample duration of the window.
	FPS float64
	// MinFPS is the lowest instantaneous fps observed since start.
	MinFPS float64
	// SampleMinFPS is the lowest instantaneous fps among the samples
	// currently in the window.
	SampleMinFPS float64

	samples [statsWindow]float64
	head    int // next slot to write
	count   int // filled slots
}

func newStats(now time.Time) Stats {
	return Stats{StartTime: now, LastMeasuredTime: now}
}

// Record pushes one frame duration in milliseconds, evicting the oldest
// sample once the window is full.
func (s *Stats) Record(ms float64) {
	s.samples[s.head] = ms
	s.head = (s.head + 1) % statsWindow
	if s.count < statsWindow {
		s.count++
	}
	s.NFrame++
	s.CumulFrame++
	s.CumulTimeMs += ms

	if ms > 0 {
		inst := 1000 / ms
		if s.MinFPS == 0 || inst < s.MinFPS {
			s.MinFPS = inst
		}
	}

	var sum, sampleMin float64
	for i := 0; i < s.count; i++ {
		v := s.samples[i]
		sum += v
		if v > 0 {
			if inst := 1000 / v; sampleMin == 0 || inst < sampleMin {
				sampleMin = inst
			}
		}
	}
	s.SampleMinFPS = sampleMin
	s.FPS = 0
	if avg := sum / float64(s.count); avg > 0 {
		s.FPS = 1000 / avg
	}
}

// Samples returns the window contents, oldest first.
func (s *Stats) Samples() []float64 {
	out := make([]float64, 0, s.count)
	start := 0
	if s.count == statsWindow {
		start = s.head
	}
	for i := 0; i < s.count; i++ {
		out = append(out, s.samples[(start+i)%statsWindow])
	}
	return out
}

// Len returns the number of samples in the window.
func (s *Stats) Len() int {
	return s.count
}
