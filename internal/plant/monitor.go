package plant

import (
	"sync"
	"time"
)

// Monitor owns the history buffer, the active plant profile and the
// classifier's hysteresis state. It is the single shared structure between
// the sampling tick and the analysis tick, so every method takes the lock.
type Monitor struct {
	mu      sync.Mutex
	history *History
	profile PlantProfile
	prev    Condition
	counts  ClassifyCounts
}

// NewMonitor creates a Monitor with an empty history. The previous
// condition starts as SoilWet — an assumed safe default, not derived.
func NewMonitor(profile PlantProfile) *Monitor {
	return &Monitor{
		history: NewHistory(),
		profile: profile,
		prev:    SoilWet,
	}
}

// Ingest appends a sample to the history. A bad timestamp is reported and
// skipped; it never corrupts the buffer.
func (m *Monitor) Ingest(s Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.Add(s)
}

// Classify runs one classification pass and returns the condition together
// with the growth phase. The result always becomes the new previous
// condition, including ConditionError.
func (m *Monitor) Classify() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	latest, ok := m.history.Latest()
	summaries := m.history.RecentDailySummaries(m.profile.SoilDryDaysForWatering)
	cond := classify(m.prev, m.profile, latest, ok, summaries)
	m.prev = cond
	m.count(cond)

	phase := analyzePhase(m.profile, m.history.RecentDailySummaries(7))
	return Status{Condition: cond, Phase: phase}
}

func (m *Monitor) count(c Condition) {
	switch c {
	case SoilDry:
		m.counts.Dry++
	case SoilWet:
		m.counts.Wet++
	case NeedsWatering:
		m.counts.NeedsWatering++
	case WateringCompleted:
		m.counts.WateringCompleted++
	case TempTooHigh:
		m.counts.TempHigh++
	case TempTooLow:
		m.counts.TempLow++
	case ConditionError:
		m.counts.Errors++
	}
}

// Condition returns the last classification result without re-evaluating.
func (m *Monitor) Condition() Condition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prev
}

// Counts returns the per-condition classification counters since startup.
func (m *Monitor) Counts() ClassifyCounts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts
}

// Latest returns the most recent sample, if any.
func (m *Monitor) Latest() (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.Latest()
}

// RecentDailySummaries returns up to the last n daily summaries,
// oldest to newest.
func (m *Monitor) RecentDailySummaries(n int) []DailySummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.RecentDailySummaries(n)
}

// RecentSamples returns up to the last n minute samples, oldest to newest.
func (m *Monitor) RecentSamples(n int) []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.RecentSamples(n)
}

// SampleAt returns the sample recorded for the minute containing t.
func (m *Monitor) SampleAt(t time.Time) (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.SampleAt(t)
}

// Profile returns the active plant profile.
func (m *Monitor) Profile() PlantProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// SetProfile replaces the active profile wholesale after validating it.
// The history and hysteresis state are kept.
func (m *Monitor) SetProfile(p PlantProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.profile = p
	m.mu.Unlock()
	return nil
}

// EvictOld trims samples and summaries beyond the retention horizon.
func (m *Monitor) EvictOld(now time.Time) (minutes, days int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.EvictOld(now)
}

// HistoryLen returns the number of buffered minute samples.
func (m *Monitor) HistoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.Len()
}
