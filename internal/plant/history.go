package plant

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Buffer capacities. The minute ring covers one full day at one sample per
// minute; daily summaries are retained for a month.
const (
	MinuteCapacity = 24 * 60
	DayCapacity    = 30
)

// ErrNonMonotonic is returned by Add for a sample whose timestamp precedes
// the last accepted one. The sample is skipped; the buffer stays intact.
var ErrNonMonotonic = errors.New("non-monotonic sample timestamp")

// dayAccum holds the running aggregate for the in-progress day.
type dayAccum struct {
	date      time.Time // midnight
	minTemp   float64
	maxTemp   float64
	tempCount int
	soilSum   float64
	soilCount int
	valid     int
	active    bool
}

func (a *dayAccum) reset(date time.Time) {
	*a = dayAccum{
		date:    date,
		minTemp: math.Inf(1),
		maxTemp: math.Inf(-1),
		active:  true,
	}
}

func (a *dayAccum) add(s Sample) {
	if s.Temperature.Valid {
		if s.Temperature.Value < a.minTemp {
			a.minTemp = s.Temperature.Value
		}
		if s.Temperature.Value > a.maxTemp {
			a.maxTemp = s.Temperature.Value
		}
		a.tempCount++
	}
	if s.SoilMoisture.Valid {
		a.soilSum += s.SoilMoisture.Value
		a.soilCount++
	}
	if s.Temperature.Valid && s.Humidity.Valid && s.Lux.Valid && s.SoilMoisture.Valid {
		a.valid++
	}
}

func (a *dayAccum) summary() DailySummary {
	sum := DailySummary{
		Date:         a.date,
		ValidSamples: a.valid,
	}
	if a.tempCount > 0 {
		sum.MinTemperature = a.minTemp
		sum.MaxTemperature = a.maxTemp
	}
	if a.soilCount > 0 {
		sum.AvgSoilMoisture = a.soilSum / float64(a.soilCount)
	}
	return sum
}

// History is a fixed-capacity rolling store of minute samples plus derived
// daily summaries. Not safe for concurrent use — Monitor synchronizes.
type History struct {
	minutes     []Sample
	minuteHead  int // next write position
	minuteCount int

	days     []DailySummary // frozen (completed) days only
	dayHead  int
	dayCount int

	cur    dayAccum // in-progress day
	lastTS time.Time
}

// NewHistory creates an empty History with the default capacities.
func NewHistory() *History {
	return NewHistoryWithCapacity(MinuteCapacity, DayCapacity)
}

// NewHistoryWithCapacity creates an empty History with explicit ring sizes.
// Small capacities keep eviction tests cheap.
func NewHistoryWithCapacity(minuteCap, dayCap int) *History {
	return &History{
		minutes: make([]Sample, minuteCap),
		days:    make([]DailySummary, dayCap),
	}
}

// Add appends a sample to the minute ring and folds it into the day's
// running aggregate, freezing yesterday's summary if the timestamp crossed
// a day boundary. A non-monotonic or zero timestamp is rejected with an
// error and everything else is left untouched.
func (h *History) Add(s Sample) error {
	if s.Timestamp.IsZero() {
		return fmt.Errorf("add sample: zero timestamp")
	}
	if s.Timestamp.Before(h.lastTS) {
		return fmt.Errorf("add sample at %s before %s: %w",
			s.Timestamp.Format(time.RFC3339), h.lastTS.Format(time.RFC3339), ErrNonMonotonic)
	}

	day := midnight(s.Timestamp)
	if !h.cur.active {
		h.cur.reset(day)
	} else if !day.Equal(h.cur.date) {
		h.freezeDay()
		h.cur.reset(day)
	}
	h.cur.add(s)

	h.minutes[h.minuteHead] = s
	h.minuteHead = (h.minuteHead + 1) % len(h.minutes)
	if h.minuteCount < len(h.minutes) {
		h.minuteCount++
	}
	h.lastTS = s.Timestamp
	return nil
}

// freezeDay pushes the in-progress day onto the completed-day ring,
// overwriting the oldest entry when full.
func (h *History) freezeDay() {
	h.days[h.dayHead] = h.cur.summary()
	h.dayHead = (h.dayHead + 1) % len(h.days)
	if h.dayCount < len(h.days) {
		h.dayCount++
	}
}

// Latest returns the most recent non-evicted sample.
func (h *History) Latest() (Sample, bool) {
	if h.minuteCount == 0 {
		return Sample{}, false
	}
	idx := (h.minuteHead - 1 + len(h.minutes)) % len(h.minutes)
	return h.minutes[idx], true
}

// RecentDailySummaries returns up to the last n days, oldest to newest,
// including the in-progress day. Fewer than n days of history is not an
// error — the caller gets whatever exists.
func (h *History) RecentDailySummaries(n int) []DailySummary {
	if n <= 0 {
		return nil
	}

	var all []DailySummary
	start := (h.dayHead - h.dayCount + len(h.days)) % len(h.days)
	for i := 0; i < h.dayCount; i++ {
		all = append(all, h.days[(start+i)%len(h.days)])
	}
	if h.cur.active {
		all = append(all, h.cur.summary())
	}

	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

// RecentSamples returns up to the last n minute samples, oldest to newest.
func (h *History) RecentSamples(n int) []Sample {
	if n <= 0 || h.minuteCount == 0 {
		return nil
	}
	if n > h.minuteCount {
		n = h.minuteCount
	}
	out := make([]Sample, n)
	start := (h.minuteHead - n + len(h.minutes)) % len(h.minutes)
	for i := 0; i < n; i++ {
		out[i] = h.minutes[(start+i)%len(h.minutes)]
	}
	return out
}

// SampleAt returns the sample recorded for the minute containing t.
func (h *History) SampleAt(t time.Time) (Sample, bool) {
	want := t.Truncate(time.Minute)
	start := (h.minuteHead - h.minuteCount + len(h.minutes)) % len(h.minutes)
	// Scan newest-first: point queries are usually for recent data.
	for i := h.minuteCount - 1; i >= 0; i-- {
		s := h.minutes[(start+i)%len(h.minutes)]
		if s.Timestamp.Truncate(time.Minute).Equal(want) {
			return s, true
		}
	}
	return Sample{}, false
}

// EvictOld drops minute samples older than 24 hours and frozen day
// summaries older than the retention horizon, both relative to now.
// Ring capacity already bounds growth; this trims stale entries after
// sampling gaps. Invoked periodically by the daemon, never self-scheduled.
func (h *History) EvictOld(now time.Time) (minutes, days int) {
	minuteCutoff := now.Add(-24 * time.Hour)
	for h.minuteCount > 0 {
		start := (h.minuteHead - h.minuteCount + len(h.minutes)) % len(h.minutes)
		if !h.minutes[start].Timestamp.Before(minuteCutoff) {
			break
		}
		h.minutes[start] = Sample{}
		h.minuteCount--
		minutes++
	}

	dayCutoff := midnight(now).AddDate(0, 0, -len(h.days))
	for h.dayCount > 0 {
		start := (h.dayHead - h.dayCount + len(h.days)) % len(h.days)
		if !h.days[start].Date.Before(dayCutoff) {
			break
		}
		h.days[start] = DailySummary{}
		h.dayCount--
		days++
	}
	return minutes, days
}

// Len returns the number of stored minute samples.
func (h *History) Len() int {
	return h.minuteCount
}

// DayCount returns the number of frozen daily summaries.
func (h *History) DayCount() int {
	return h.dayCount
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
