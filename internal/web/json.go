package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/plant-monitor/internal/plant"
)

// HistoryJSON is the response body of /history.json.
type HistoryJSON struct {
	History []DayJSON `json:"history"`
}

// DayJSON is the JSON representation of one daily summary.
type DayJSON struct {
	Date            string  `json:"date"`
	MinTemperature  float64 `json:"min_temperature"`
	MaxTemperature  float64 `json:"max_temperature"`
	AvgSoilMoisture float64 `json:"avg_soil_moisture_mv"`
	ValidSamples    int     `json:"valid_samples"`
}

// SamplesJSON is the response body of /samples.json.
type SamplesJSON struct {
	Samples []SampleJSON `json:"samples"`
}

// SampleJSON is the JSON representation of one sample. Errored fields
// are omitted from the values and listed by name instead.
type SampleJSON struct {
	Timestamp      string   `json:"timestamp"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Humidity       *float64 `json:"humidity,omitempty"`
	Lux            *float64 `json:"lux,omitempty"`
	SoilMoistureMV *float64 `json:"soil_moisture_mv,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

func formatHistory(summaries []plant.DailySummary) []byte {
	hj := HistoryJSON{History: []DayJSON{}}
	for _, day := range summaries {
		hj.History = append(hj.History, DayJSON{
			Date:            day.Date.Format("2006-01-02"),
			MinTemperature:  day.MinTemperature,
			MaxTemperature:  day.MaxTemperature,
			AvgSoilMoisture: day.AvgSoilMoisture,
			ValidSamples:    day.ValidSamples,
		})
	}
	data, _ := json.MarshalIndent(hj, "", "  ")
	return data
}

func formatSamples(samples []plant.Sample) []byte {
	sj := SamplesJSON{Samples: []SampleJSON{}}
	for _, s := range samples {
		entry := SampleJSON{Timestamp: s.Timestamp.UTC().Format(time.RFC3339)}
		set := func(m plant.Measurement, dst **float64, name string) {
			if m.Valid {
				v := m.Value
				*dst = &v
			} else {
				entry.Errors = append(entry.Errors, name)
			}
		}
		set(s.Temperature, &entry.Temperature, "temperature")
		set(s.Humidity, &entry.Humidity, "humidity")
		set(s.Lux, &entry.Lux, "lux")
		set(s.SoilMoisture, &entry.SoilMoistureMV, "soil_moisture")
		sj.Samples = append(sj.Samples, entry)
	}
	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
