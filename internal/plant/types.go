// Package plant contains pure business logic for plant condition tracking.
// This package has NO external dependencies (no sensors, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Time parameters.
package plant

import (
	"fmt"
	"time"
)

// Measurement is a single sensor reading. A failed read is carried inline
// (Valid=false) rather than aborting the sample — one glitchy sensor must
// not stall the monitoring cadence.
type Measurement struct {
	Value float64
	Valid bool
}

// Sample is one timestamped multi-sensor reading, produced once per
// sampling tick and never mutated afterwards.
type Sample struct {
	Timestamp    time.Time
	Temperature  Measurement // °C
	Humidity     Measurement // %
	Lux          Measurement // illuminance
	SoilMoisture Measurement // raw mV from the probe; higher mV = drier soil
}

// Usable reports whether the sample carries at least one valid reading.
// A fully-errored sample is unusable for classification.
func (s Sample) Usable() bool {
	return s.Temperature.Valid || s.Humidity.Valid || s.Lux.Valid || s.SoilMoisture.Valid
}

// DailySummary is the per-calendar-day aggregate. The summary for "today"
// updates as samples arrive; a past day is frozen once the day rolls over.
type DailySummary struct {
	Date            time.Time // midnight, local to the sample timestamps
	MinTemperature  float64
	MaxTemperature  float64
	AvgSoilMoisture float64
	ValidSamples    int // samples with all fields valid
}

// PlantProfile is the threshold/parameter set governing classification.
// Loaded from the profile store at startup; replaceable at runtime.
type PlantProfile struct {
	PlantName string

	// Soil moisture thresholds (mV). Wet must be below dry; the band in
	// between is the hysteresis band.
	SoilDryThreshold       float64
	SoilWetThreshold       float64
	SoilDryDaysForWatering int

	// Hard environmental limits (°C).
	TempHighLimit float64
	TempLowLimit  float64

	// Growth phase parameters.
	HighTempDormancyMaxTemp     float64 // any day reaching this max → dormant
	HighTempDormancyMinTemp     float64 // nights above this count towards dormancy
	HighTempDormancyMinTempDays int
	LowTempDormancyMinTemp      float64 // any day dipping to this min → dormant
	ActivePeriodMinTemp         float64
	ActivePeriodMaxTemp         float64
	ActivePeriodConsecutiveDays int
}

// Validate checks the internal consistency of the profile.
func (p PlantProfile) Validate() error {
	if p.PlantName == "" {
		return fmt.Errorf("plant name is empty")
	}
	if p.SoilWetThreshold >= p.SoilDryThreshold {
		return fmt.Errorf("soil wet threshold %.0f must be below dry threshold %.0f",
			p.SoilWetThreshold, p.SoilDryThreshold)
	}
	if p.SoilDryDaysForWatering < 1 {
		return fmt.Errorf("dry days for watering must be at least 1, got %d",
			p.SoilDryDaysForWatering)
	}
	if p.TempLowLimit >= p.TempHighLimit {
		return fmt.Errorf("temp low limit %.1f must be below high limit %.1f",
			p.TempLowLimit, p.TempHighLimit)
	}
	return nil
}

// Condition is the classifier's categorical verdict about the plant.
type Condition string

const (
	SoilDry           Condition = "SOIL_DRY"
	SoilWet           Condition = "SOIL_WET"
	NeedsWatering     Condition = "NEEDS_WATERING"
	WateringCompleted Condition = "WATERING_COMPLETED"
	TempTooHigh       Condition = "TEMP_TOO_HIGH"
	TempTooLow        Condition = "TEMP_TOO_LOW"
	ConditionError    Condition = "ERROR"
)

// GrowthPhase is the multi-day trend verdict derived from daily summaries.
type GrowthPhase string

const (
	PhaseUnknown          GrowthPhase = "UNKNOWN"
	PhaseHighTempDormancy GrowthPhase = "HIGH_TEMP_DORMANCY"
	PhaseLowTempDormancy  GrowthPhase = "LOW_TEMP_DORMANCY"
	PhaseActivePeriod     GrowthPhase = "ACTIVE_PERIOD"
)

// Status is the combined result of one classification pass.
type Status struct {
	Condition Condition
	Phase     GrowthPhase
}

// ClassifyCounts tracks how often each condition was produced since startup.
type ClassifyCounts struct {
	Dry               int
	Wet               int
	NeedsWatering     int
	WateringCompleted int
	TempHigh          int
	TempLow           int
	Errors            int
}
