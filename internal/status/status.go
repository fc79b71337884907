// Package status provides a thread-safe status tracker for the plant-monitor
// daemon. It is read by HTTP handlers and embedded in MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/plant-monitor/internal/plant"
)

// NetworkInfo contains network state, read from the pi-helper env file.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	ClassifyMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	ProfileDir  string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Condition     plant.Condition
	Phase         plant.GrowthPhase
	Latest        plant.Sample
	HasSample     bool
	Counts        plant.ClassifyCounts
	Profile       plant.PlantProfile
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time, profile and config.
func NewTracker(startTime time.Time, profile plant.PlantProfile, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Profile:   profile,
			Config:    cfg,
		},
	}
}

// Update sets the classification result and counters.
// Called from the analysis tick.
func (t *Tracker) Update(status plant.Status, counts plant.ClassifyCounts) {
	t.mu.Lock()
	t.snap.Condition = status.Condition
	t.snap.Phase = status.Phase
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetLatest records the most recent sample.
// Called from the sampling tick.
func (t *Tracker) SetLatest(s plant.Sample) {
	t.mu.Lock()
	t.snap.Latest = s
	t.snap.HasSample = true
	t.mu.Unlock()
}

// SetProfile records the active plant profile after a runtime replace.
func (t *Tracker) SetProfile(p plant.PlantProfile) {
	t.mu.Lock()
	t.snap.Profile = p
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
