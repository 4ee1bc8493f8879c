package cache

// Metrics receives cache events. Implementations must be safe for concurrent
// use; the prometheus implementation lives in pkg/metrics.
type Metrics interface {
	LocalHit(collection string)
	SharedHit(collection string)
	Miss(collection string)
	ComputeError(collection string)
	Invalidated(collection string, removed int)
	Merged(stored, skipped int)
	SessionOpened()
	SessionEnded(persisted bool)
}

type NopMetrics struct{}

func (NopMetrics) LocalHit(string)         {}
func (NopMetrics) SharedHit(string)        {}
func (NopMetrics) Miss(string)             {}
func (NopMetrics) ComputeError(string)     {}
func (NopMetrics) Invalidated(string, int) {}
func (NopMetrics) Merged(int, int)         {}
func (NopMetrics) SessionOpened()          {}
func (NopMetrics) SessionEnded(bool)       {}
