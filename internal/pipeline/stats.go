package pipeline

// Stats is a point-in-time snapshot of pipeline counters. All reads are
// atomic; the snapshot may be slightly stale, which is fine for
// monitoring.
type Stats struct {
	State   string `json:"state"`
	IsReady bool   `json:"is_ready"`

	FramesAdmitted        uint64 `json:"frames_admitted"`
	FramesDroppedBusy     uint64 `json:"frames_dropped_busy"`
	FramesDroppedNotReady uint64 `json:"frames_dropped_not_ready"`
	FramesProcessed       uint64 `json:"frames_processed"`
	FramesFailed          uint64 `json:"frames_failed"`
	ResultsDropped        uint64 `json:"results_dropped"`

	LastLatencyMS float64 `json:"last_latency_ms"`
	AvgLatencyMS  float64 `json:"avg_latency_ms"`
}

// Stats returns current operational counters (non-blocking snapshot).
func (p *Pipeline) Stats() Stats {
	processed := p.processed.Load()

	var avg float64
	if processed > 0 {
		avg = float64(p.totalLatencyUS.Load()) / float64(processed) / 1000
	}

	return Stats{
		State:                 p.sched.current().String(),
		IsReady:               p.readyOK.Load(),
		FramesAdmitted:        p.admitted.Load(),
		FramesDroppedBusy:     p.droppedBusy.Load(),
		FramesDroppedNotReady: p.droppedNotReady.Load(),
		FramesProcessed:       processed,
		FramesFailed:          p.failed.Load(),
		ResultsDropped:        p.resultsDropped.Load(),
		LastLatencyMS:         float64(p.lastLatencyUS.Load()) / 1000,
		AvgLatencyMS:          avg,
	}
}
