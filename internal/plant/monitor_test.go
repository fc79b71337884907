package plant

import (
	"sync"
	"testing"
	"time"
)

func TestMonitorInitialCondition(t *testing.T) {
	m := NewMonitor(testProfile())
	if got := m.Condition(); got != SoilWet {
		t.Errorf("initial condition: got %s, want %s", got, SoilWet)
	}
}

func TestMonitorClassifyEmptyHistory(t *testing.T) {
	m := NewMonitor(testProfile())
	status := m.Classify()
	if status.Condition != ConditionError {
		t.Errorf("condition: got %s, want %s", status.Condition, ConditionError)
	}
	if status.Phase != PhaseUnknown {
		t.Errorf("phase: got %s, want %s", status.Phase, PhaseUnknown)
	}
	if got := m.Counts().Errors; got != 1 {
		t.Errorf("error count: got %d, want 1", got)
	}
}

// An error verdict overwrites the remembered condition like any other
// result: one bad tick erases the hysteresis memory. This test pins that
// behavior.
func TestMonitorErrorOverwritesHysteresis(t *testing.T) {
	m := NewMonitor(testProfile())
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if err := m.Ingest(minuteSample(start, 20, 2600)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := m.Classify().Condition; got != SoilDry {
		t.Fatalf("got %s, want %s", got, SoilDry)
	}

	// A fully-errored sample arrives; classification fails.
	if err := m.Ingest(Sample{Timestamp: start.Add(time.Minute)}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := m.Classify().Condition; got != ConditionError {
		t.Fatalf("got %s, want %s", got, ConditionError)
	}

	// Soil back in the hysteresis band: the retained state is now the
	// error verdict, not the earlier SoilDry.
	if err := m.Ingest(minuteSample(start.Add(2*time.Minute), 20, 1800)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := m.Classify().Condition; got != ConditionError {
		t.Errorf("got %s, want %s (previous verdict retained)", got, ConditionError)
	}
}

// The scenario from the care pamphlet: three dry days on record and the
// soil still dry → tell the owner to water.
func TestMonitorNeedsWateringScenario(t *testing.T) {
	m := NewMonitor(testProfile())
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	// Three full dry days (avg 2600 mV each), then one sample on day 4 to
	// freeze day 3.
	for d := 0; d < 3; d++ {
		day := start.AddDate(0, 0, d)
		for i := 0; i < 3; i++ {
			if err := m.Ingest(minuteSample(day.Add(time.Duration(i)*time.Minute), 20, 2600)); err != nil {
				t.Fatalf("ingest: %v", err)
			}
		}
	}
	if err := m.Ingest(minuteSample(start.AddDate(0, 0, 3), 20, 2600)); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	status := m.Classify()
	if status.Condition != NeedsWatering {
		t.Errorf("condition: got %s, want %s", status.Condition, NeedsWatering)
	}

	// Watering resolves it on the next sample.
	if err := m.Ingest(minuteSample(start.AddDate(0, 0, 3).Add(time.Minute), 20, 600)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := m.Classify().Condition; got != WateringCompleted {
		t.Errorf("after watering: got %s, want %s", got, WateringCompleted)
	}
}

func TestMonitorSetProfile(t *testing.T) {
	m := NewMonitor(testProfile())

	bad := testProfile()
	bad.SoilWetThreshold = 3000 // above dry threshold
	if err := m.SetProfile(bad); err == nil {
		t.Fatal("expected validation error")
	}
	if m.Profile().SoilWetThreshold == 3000 {
		t.Error("invalid profile must not be applied")
	}

	good := testProfile()
	good.PlantName = "Cactus"
	good.SoilDryDaysForWatering = 5
	if err := m.SetProfile(good); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if got := m.Profile().PlantName; got != "Cactus" {
		t.Errorf("plant name: got %q, want %q", got, "Cactus")
	}
}

func TestMonitorConcurrentIngestAndClassify(t *testing.T) {
	m := NewMonitor(testProfile())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			// Errors are expected here: both goroutines race on the
			// monotonic clock. The buffer just has to stay consistent.
			_ = m.Ingest(minuteSample(start.Add(time.Duration(i)*time.Minute), 20, 1500))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			m.Classify()
			m.Latest()
			m.RecentDailySummaries(7)
		}
	}()
	wg.Wait()

	if m.HistoryLen() > MinuteCapacity {
		t.Errorf("history exceeded capacity: %d", m.HistoryLen())
	}
}
