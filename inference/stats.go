package inference

// statsAlpha is the EWMA smoothing factor for per-frame inference time.
// avg_fps on the wire is 1000 / ewma_ms under this constant.
const statsAlpha = 0.1

// rollingStats tracks inference timing without unbounded history: an
// exponentially weighted moving average plus lifetime extrema. Reset on mode
// change so the numbers describe the active model.
type rollingStats struct {
	ewmaMS float64
	minMS  float64
	maxMS  float64
	count  int64
}

func (s *rollingStats) update(ms float64) {
	if s.count == 0 {
		s.ewmaMS = ms
		s.minMS = ms
		s.maxMS = ms
	} else {
		s.ewmaMS = statsAlpha*ms + (1-statsAlpha)*s.ewmaMS
		if ms < s.minMS {
			s.minMS = ms
		}
		if ms > s.maxMS {
			s.maxMS = ms
		}
	}
	s.count++
}

func (s *rollingStats) reset() {
	*s = rollingStats{}
}

func (s *rollingStats) avgFPS() float64 {
	if s.count == 0 || s.ewmaMS <= 0 {
		return 0
	}
	return 1000 / s.ewmaMS
}

// Stats is a point-in-time snapshot of an engine's rolling statistics.
type Stats struct {
	AvgInferenceMS  float64
	MinInferenceMS  float64
	MaxInferenceMS  float64
	AvgFPS          float64
	FramesProcessed int64
}
