package plant

import (
	"errors"
	"testing"
	"time"
)

func minuteSample(ts time.Time, temp, soil float64) Sample {
	return Sample{
		Timestamp:    ts,
		Temperature:  Measurement{Value: temp, Valid: true},
		Humidity:     Measurement{Value: 50, Valid: true},
		Lux:          Measurement{Value: 400, Valid: true},
		SoilMoisture: Measurement{Value: soil, Valid: true},
	}
}

func TestAddAndLatest(t *testing.T) {
	h := NewHistory()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, ok := h.Latest(); ok {
		t.Fatal("empty history should have no latest sample")
	}

	for i := 0; i < 5; i++ {
		s := minuteSample(start.Add(time.Duration(i)*time.Minute), 21.0, 1500)
		if err := h.Add(s); err != nil {
			t.Fatalf("add sample %d: %v", i, err)
		}
	}

	latest, ok := h.Latest()
	if !ok {
		t.Fatal("expected a latest sample")
	}
	want := start.Add(4 * time.Minute)
	if !latest.Timestamp.Equal(want) {
		t.Errorf("latest timestamp: got %v, want %v", latest.Timestamp, want)
	}
	if h.Len() != 5 {
		t.Errorf("len: got %d, want 5", h.Len())
	}
}

func TestAddRejectsNonMonotonicTimestamp(t *testing.T) {
	h := NewHistory()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := h.Add(minuteSample(start, 21.0, 1500)); err != nil {
		t.Fatalf("add: %v", err)
	}

	err := h.Add(minuteSample(start.Add(-time.Minute), 21.0, 1500))
	if !errors.Is(err, ErrNonMonotonic) {
		t.Fatalf("expected ErrNonMonotonic, got %v", err)
	}

	// Buffer must be intact: one sample, the original latest.
	if h.Len() != 1 {
		t.Errorf("len after rejected add: got %d, want 1", h.Len())
	}
	latest, _ := h.Latest()
	if !latest.Timestamp.Equal(start) {
		t.Errorf("latest after rejected add: got %v, want %v", latest.Timestamp, start)
	}

	// Equal timestamps are allowed (non-decreasing, not strictly increasing).
	if err := h.Add(minuteSample(start, 21.0, 1500)); err != nil {
		t.Errorf("equal timestamp should be accepted: %v", err)
	}
}

func TestAddRejectsZeroTimestamp(t *testing.T) {
	h := NewHistory()
	if err := h.Add(Sample{}); err == nil {
		t.Fatal("expected error for zero timestamp")
	}
}

func TestMinuteRingNeverExceedsCapacity(t *testing.T) {
	h := NewHistoryWithCapacity(10, 3)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		s := minuteSample(start.Add(time.Duration(i)*time.Minute), 20, 1500)
		if err := h.Add(s); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		if h.Len() > 10 {
			t.Fatalf("minute count %d exceeds capacity 10", h.Len())
		}
	}

	if h.Len() != 10 {
		t.Errorf("len: got %d, want 10", h.Len())
	}
	// Oldest surviving sample is #90.
	samples := h.RecentSamples(10)
	if !samples[0].Timestamp.Equal(start.Add(90 * time.Minute)) {
		t.Errorf("oldest sample: got %v, want %v", samples[0].Timestamp, start.Add(90*time.Minute))
	}
}

func TestDaySummaryRingNeverExceedsCapacity(t *testing.T) {
	h := NewHistoryWithCapacity(10, 3)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// One sample per day for 10 days → 9 frozen days, capacity 3.
	for i := 0; i < 10; i++ {
		s := minuteSample(start.AddDate(0, 0, i), 20, 1500)
		if err := h.Add(s); err != nil {
			t.Fatalf("add day %d: %v", i, err)
		}
		if h.DayCount() > 3 {
			t.Fatalf("day count %d exceeds capacity 3", h.DayCount())
		}
	}

	sums := h.RecentDailySummaries(10)
	// 3 frozen + the in-progress day.
	if len(sums) != 4 {
		t.Fatalf("summaries: got %d, want 4", len(sums))
	}
	wantOldest := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	if !sums[0].Date.Equal(wantOldest) {
		t.Errorf("oldest summary date: got %v, want %v", sums[0].Date, wantOldest)
	}
}

func TestDailyAggregation(t *testing.T) {
	h := NewHistory()
	start := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

	temps := []float64{18.5, 25.0, 12.0, 21.0}
	soils := []float64{1500, 1700, 1600, 1800}
	for i := range temps {
		s := minuteSample(start.Add(time.Duration(i)*time.Minute), temps[i], soils[i])
		if err := h.Add(s); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	// An errored sample must not contribute to any aggregate.
	bad := Sample{Timestamp: start.Add(10 * time.Minute)}
	if err := h.Add(bad); err != nil {
		t.Fatalf("add errored sample: %v", err)
	}

	sums := h.RecentDailySummaries(1)
	if len(sums) != 1 {
		t.Fatalf("summaries: got %d, want 1", len(sums))
	}
	day := sums[0]
	if day.MinTemperature != 12.0 {
		t.Errorf("min temp: got %.1f, want 12.0", day.MinTemperature)
	}
	if day.MaxTemperature != 25.0 {
		t.Errorf("max temp: got %.1f, want 25.0", day.MaxTemperature)
	}
	if day.AvgSoilMoisture != 1650 {
		t.Errorf("avg soil: got %.1f, want 1650", day.AvgSoilMoisture)
	}
	if day.ValidSamples != 4 {
		t.Errorf("valid samples: got %d, want 4", day.ValidSamples)
	}
}

func TestDayRolloverFreezesSummary(t *testing.T) {
	h := NewHistory()
	day1 := time.Date(2026, 3, 1, 23, 58, 0, 0, time.UTC)

	if err := h.Add(minuteSample(day1, 20, 2000)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := h.Add(minuteSample(day1.Add(time.Minute), 22, 2200)); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Crosses midnight.
	if err := h.Add(minuteSample(day1.Add(2*time.Minute), 10, 500)); err != nil {
		t.Fatalf("add: %v", err)
	}

	sums := h.RecentDailySummaries(7)
	if len(sums) != 2 {
		t.Fatalf("summaries: got %d, want 2", len(sums))
	}

	frozen := sums[0]
	if !frozen.Date.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("frozen date: got %v", frozen.Date)
	}
	if frozen.AvgSoilMoisture != 2100 {
		t.Errorf("frozen avg soil: got %.1f, want 2100", frozen.AvgSoilMoisture)
	}

	today := sums[1]
	if !today.Date.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("today date: got %v", today.Date)
	}
	if today.AvgSoilMoisture != 500 {
		t.Errorf("today avg soil: got %.1f, want 500", today.AvgSoilMoisture)
	}

	// New samples keep updating today but not the frozen day.
	if err := h.Add(minuteSample(day1.Add(3*time.Minute), 12, 700)); err != nil {
		t.Fatalf("add: %v", err)
	}
	sums = h.RecentDailySummaries(7)
	if sums[0].AvgSoilMoisture != 2100 {
		t.Errorf("frozen day changed after rollover: got %.1f", sums[0].AvgSoilMoisture)
	}
	if sums[1].AvgSoilMoisture != 600 {
		t.Errorf("today avg soil: got %.1f, want 600", sums[1].AvgSoilMoisture)
	}
}

func TestRecentDailySummariesShortHistory(t *testing.T) {
	h := NewHistory()
	if got := h.RecentDailySummaries(7); got != nil {
		t.Errorf("empty history: got %d summaries, want none", len(got))
	}

	if err := h.Add(minuteSample(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), 20, 1500)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := h.RecentDailySummaries(7); len(got) != 1 {
		t.Errorf("one day of history: got %d summaries, want 1", len(got))
	}
}

func TestSampleAt(t *testing.T) {
	h := NewHistory()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if err := h.Add(minuteSample(start.Add(time.Duration(i)*time.Minute), 20, float64(1000+i))); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	s, ok := h.SampleAt(start.Add(3*time.Minute + 30*time.Second))
	if !ok {
		t.Fatal("expected sample at minute 3")
	}
	if s.SoilMoisture.Value != 1003 {
		t.Errorf("soil: got %.0f, want 1003", s.SoilMoisture.Value)
	}

	if _, ok := h.SampleAt(start.Add(time.Hour)); ok {
		t.Error("expected no sample one hour ahead")
	}
}

func TestEvictOld(t *testing.T) {
	h := NewHistoryWithCapacity(MinuteCapacity, 5)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Two samples per day across 8 days.
	for d := 0; d < 8; d++ {
		day := start.AddDate(0, 0, d)
		if err := h.Add(minuteSample(day.Add(9*time.Hour), 20, 1500)); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := h.Add(minuteSample(day.Add(10*time.Hour), 21, 1600)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	now := start.AddDate(0, 0, 8)
	minutes, days := h.EvictOld(now)

	// Everything before now-24h is gone: only day 7's samples remain.
	if h.Len() != 2 {
		t.Errorf("minute samples after evict: got %d, want 2", h.Len())
	}
	if minutes != 14 {
		t.Errorf("evicted minutes: got %d, want 14", minutes)
	}
	// The ring held days 2–6; only day 2 is beyond the 5-day horizon.
	if days != 1 {
		t.Errorf("evicted days: got %d, want 1", days)
	}

	// Push now far into the future: everything goes.
	minutes, days = h.EvictOld(now.AddDate(0, 1, 0))
	if h.Len() != 0 {
		t.Errorf("minute samples after second evict: got %d, want 0", h.Len())
	}
	if h.DayCount() != 0 {
		t.Errorf("day summaries after second evict: got %d, want 0", h.DayCount())
	}
	if minutes != 2 || days != 4 {
		t.Errorf("second evict: got (%d, %d), want (2, 4)", minutes, days)
	}
}
