package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Plant         string       `json:"plant"`
	Condition     string       `json:"condition"`
	Phase         string       `json:"phase"`
	Latest        *SampleJSON  `json:"latest_sample,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"condition_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// SampleJSON is the JSON representation of the latest sample.
type SampleJSON struct {
	Timestamp      string   `json:"timestamp"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Humidity       *float64 `json:"humidity,omitempty"`
	Lux            *float64 `json:"lux,omitempty"`
	SoilMoistureMV *float64 `json:"soil_moisture_mv,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of classification counts.
type CountsJSON struct {
	Dry               int `json:"soil_dry"`
	Wet               int `json:"soil_wet"`
	NeedsWatering     int `json:"needs_watering"`
	WateringCompleted int `json:"watering_completed"`
	TempHigh          int `json:"temp_too_high"`
	TempLow           int `json:"temp_too_low"`
	Errors            int `json:"errors"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	ClassifyMs  int64  `json:"classify_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	ProfileDir  string `json:"profile_dir"`
}

func buildInner(snap Snapshot) StatusInner {
	condition := string(snap.Condition)
	if condition == "" {
		condition = "UNKNOWN"
	}
	phase := string(snap.Phase)
	if phase == "" {
		phase = "UNKNOWN"
	}

	inner := StatusInner{
		Plant:         snap.Profile.PlantName,
		Condition:     condition,
		Phase:         phase,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Dry:               snap.Counts.Dry,
			Wet:               snap.Counts.Wet,
			NeedsWatering:     snap.Counts.NeedsWatering,
			WateringCompleted: snap.Counts.WateringCompleted,
			TempHigh:          snap.Counts.TempHigh,
			TempLow:           snap.Counts.TempLow,
			Errors:            snap.Counts.Errors,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			ClassifyMs:  snap.Config.ClassifyMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			ProfileDir:  snap.Config.ProfileDir,
		},
	}

	if snap.HasSample {
		sj := &SampleJSON{
			Timestamp: snap.Latest.Timestamp.UTC().Format(time.RFC3339),
		}
		set := func(value float64, valid bool, dst **float64, name string) {
			if valid {
				v := value
				*dst = &v
			} else {
				sj.Errors = append(sj.Errors, name)
			}
		}
		set(snap.Latest.Temperature.Value, snap.Latest.Temperature.Valid, &sj.Temperature, "temperature")
		set(snap.Latest.Humidity.Value, snap.Latest.Humidity.Valid, &sj.Humidity, "humidity")
		set(snap.Latest.Lux.Value, snap.Latest.Lux.Valid, &sj.Lux, "lux")
		set(snap.Latest.SoilMoisture.Value, snap.Latest.SoilMoisture.Valid, &sj.SoilMoistureMV, "soil_moisture")
		inner.Latest = sj
	}

	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
