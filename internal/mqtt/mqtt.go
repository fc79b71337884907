// Package mqtt provides MQTT publishing with abstraction for testing.
// It is the plant monitor's radio surface: readings, condition events and
// system lifecycle events go out; history and profile commands come in.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/plant-monitor/internal/plant"
)

// Topics for the plant monitor.
const (
	// TopicReadings carries one payload per sensor sample.
	TopicReadings = "garden/plant/sensor/readings"

	// TopicEvents carries condition-change events.
	TopicEvents = "garden/plant/sensor/events"

	// TopicSystem carries system lifecycle events.
	TopicSystem = "garden/plant/sensor/system"

	// TopicCommand is the inbound request topic (history, profile).
	TopicCommand = "garden/plant/sensor/cmd"

	// TopicData carries responses to commands.
	TopicData = "garden/plant/sensor/data"
)

// Publisher publishes monitor output to MQTT.
type Publisher interface {
	// PublishReading sends one sensor sample to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishReading(s plant.Sample) error

	// PublishCondition sends a condition-change event to the broker.
	PublishCondition(e ConditionEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(e SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ConditionEvent is emitted when the classifier's verdict changes.
type ConditionEvent struct {
	Timestamp time.Time
	Condition plant.Condition
	Previous  plant.Condition
	Phase     plant.GrowthPhase
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// ReadingPayload is the MQTT envelope for a sensor sample.
type ReadingPayload struct {
	Plant ReadingInner `json:"plant"`
}

// ReadingInner contains the sample details. Errored fields are omitted
// from the values and listed by name instead.
type ReadingInner struct {
	Timestamp      string   `json:"timestamp"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Humidity       *float64 `json:"humidity,omitempty"`
	Lux            *float64 `json:"lux,omitempty"`
	SoilMoistureMV *float64 `json:"soil_moisture_mv,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

func readingInner(s plant.Sample) ReadingInner {
	inner := ReadingInner{
		Timestamp: s.Timestamp.UTC().Format(time.RFC3339),
	}
	set := func(m plant.Measurement, dst **float64, name string) {
		if m.Valid {
			v := m.Value
			*dst = &v
		} else {
			inner.Errors = append(inner.Errors, name)
		}
	}
	set(s.Temperature, &inner.Temperature, "temperature")
	set(s.Humidity, &inner.Humidity, "humidity")
	set(s.Lux, &inner.Lux, "lux")
	set(s.SoilMoisture, &inner.SoilMoistureMV, "soil_moisture")
	return inner
}

// FormatReadingPayload creates the JSON payload for a sensor sample.
func FormatReadingPayload(s plant.Sample) ([]byte, error) {
	return json.Marshal(ReadingPayload{Plant: readingInner(s)})
}

// ConditionPayload is the MQTT envelope for a condition-change event.
type ConditionPayload struct {
	Plant ConditionInner `json:"plant"`
}

// ConditionInner contains the condition event details.
type ConditionInner struct {
	Timestamp string `json:"timestamp"`
	Condition string `json:"condition"`
	Previous  string `json:"previous"`
	Phase     string `json:"phase"`
}

// FormatConditionPayload creates the JSON payload for a condition event.
func FormatConditionPayload(e ConditionEvent) ([]byte, error) {
	return json.Marshal(ConditionPayload{
		Plant: ConditionInner{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Condition: string(e.Condition),
			Previous:  string(e.Previous),
			Phase:     string(e.Phase),
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// Command names accepted on TopicCommand.
const (
	CmdHistory    = "history"
	CmdSamples    = "samples"
	CmdGetProfile = "get_profile"
	CmdSetProfile = "set_profile"
)

// Command is an inbound request from a remote client.
type Command struct {
	Cmd     string          `json:"cmd"`
	Days    int             `json:"days,omitempty"`
	Hours   int             `json:"hours,omitempty"`
	Profile *ProfilePayload `json:"profile,omitempty"`
}

// CommandHandler produces the response payload for a command. The response
// is published on TopicData; a returned error becomes an error payload.
type CommandHandler func(Command) ([]byte, error)

// ProfilePayload is the JSON form of the plant profile, used both in
// set_profile commands and get_profile responses.
type ProfilePayload struct {
	PlantName              string  `json:"plant_name"`
	SoilDryThreshold       float64 `json:"soil_dry_threshold_mv"`
	SoilWetThreshold       float64 `json:"soil_wet_threshold_mv"`
	SoilDryDaysForWatering int     `json:"soil_dry_days_for_watering"`
	TempHighLimit          float64 `json:"temp_high_limit"`
	TempLowLimit           float64 `json:"temp_low_limit"`

	HighTempDormancyMaxTemp     float64 `json:"high_temp_dormancy_max_temp"`
	HighTempDormancyMinTemp     float64 `json:"high_temp_dormancy_min_temp"`
	HighTempDormancyMinTempDays int     `json:"high_temp_dormancy_min_temp_days"`
	LowTempDormancyMinTemp      float64 `json:"low_temp_dormancy_min_temp"`
	ActivePeriodMinTemp         float64 `json:"active_period_min_temp"`
	ActivePeriodMaxTemp         float64 `json:"active_period_max_temp"`
	ActivePeriodConsecutiveDays int     `json:"active_period_consecutive_days"`
}

// ToProfile converts the payload to a core profile value.
func (p ProfilePayload) ToProfile() plant.PlantProfile {
	return plant.PlantProfile{
		PlantName:              p.PlantName,
		SoilDryThreshold:       p.SoilDryThreshold,
		SoilWetThreshold:       p.SoilWetThreshold,
		SoilDryDaysForWatering: p.SoilDryDaysForWatering,
		TempHighLimit:          p.TempHighLimit,
		TempLowLimit:           p.TempLowLimit,

		HighTempDormancyMaxTemp:     p.HighTempDormancyMaxTemp,
		HighTempDormancyMinTemp:     p.HighTempDormancyMinTemp,
		HighTempDormancyMinTempDays: p.HighTempDormancyMinTempDays,
		LowTempDormancyMinTemp:      p.LowTempDormancyMinTemp,
		ActivePeriodMinTemp:         p.ActivePeriodMinTemp,
		ActivePeriodMaxTemp:         p.ActivePeriodMaxTemp,
		ActivePeriodConsecutiveDays: p.ActivePeriodConsecutiveDays,
	}
}

// ProfileToPayload converts a core profile value to its JSON form.
func ProfileToPayload(p plant.PlantProfile) ProfilePayload {
	return ProfilePayload{
		PlantName:              p.PlantName,
		SoilDryThreshold:       p.SoilDryThreshold,
		SoilWetThreshold:       p.SoilWetThreshold,
		SoilDryDaysForWatering: p.SoilDryDaysForWatering,
		TempHighLimit:          p.TempHighLimit,
		TempLowLimit:           p.TempLowLimit,

		HighTempDormancyMaxTemp:     p.HighTempDormancyMaxTemp,
		HighTempDormancyMinTemp:     p.HighTempDormancyMinTemp,
		HighTempDormancyMinTempDays: p.HighTempDormancyMinTempDays,
		LowTempDormancyMinTemp:      p.LowTempDormancyMinTemp,
		ActivePeriodMinTemp:         p.ActivePeriodMinTemp,
		ActivePeriodMaxTemp:         p.ActivePeriodMaxTemp,
		ActivePeriodConsecutiveDays: p.ActivePeriodConsecutiveDays,
	}
}

// SummaryJSON is the wire form of a daily summary.
type SummaryJSON struct {
	Date            string  `json:"date"`
	MinTemperature  float64 `json:"min_temperature"`
	MaxTemperature  float64 `json:"max_temperature"`
	AvgSoilMoisture float64 `json:"avg_soil_moisture_mv"`
	ValidSamples    int     `json:"valid_samples"`
}

// HistoryResponse answers a history command.
type HistoryResponse struct {
	History []SummaryJSON `json:"history"`
}

// FormatHistoryResponse creates the response payload for a history command.
func FormatHistoryResponse(summaries []plant.DailySummary) ([]byte, error) {
	resp := HistoryResponse{History: []SummaryJSON{}}
	for _, day := range summaries {
		resp.History = append(resp.History, SummaryJSON{
			Date:            day.Date.Format("2006-01-02"),
			MinTemperature:  day.MinTemperature,
			MaxTemperature:  day.MaxTemperature,
			AvgSoilMoisture: day.AvgSoilMoisture,
			ValidSamples:    day.ValidSamples,
		})
	}
	return json.Marshal(resp)
}

// SamplesResponse answers a samples command.
type SamplesResponse struct {
	Samples []ReadingInner `json:"samples"`
}

// FormatSamplesResponse creates the response payload for a samples command.
func FormatSamplesResponse(samples []plant.Sample) ([]byte, error) {
	resp := SamplesResponse{Samples: []ReadingInner{}}
	for _, s := range samples {
		resp.Samples = append(resp.Samples, readingInner(s))
	}
	return json.Marshal(resp)
}

// FormatProfileResponse creates the response payload for a profile command.
func FormatProfileResponse(p plant.PlantProfile) ([]byte, error) {
	return json.Marshal(struct {
		Profile ProfilePayload `json:"profile"`
	}{Profile: ProfileToPayload(p)})
}

// FormatErrorResponse creates an error payload for a failed command.
func FormatErrorResponse(err error) []byte {
	payload, merr := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: err.Error()})
	if merr != nil {
		return []byte(fmt.Sprintf(`{"error":%q}`, err))
	}
	return payload
}
