// Package sensors provides sensor input reading with hardware abstraction.
// The real implementation reads Linux IIO/hwmon sysfs nodes.
// The fake implementation allows testing without hardware.
package sensors

// Reading is one raw value from a single sensor. Err is per-field: a failed
// read on one sensor never aborts the others.
type Reading struct {
	Value float64
	Err   error
}

// Readings is one poll across all four sensors.
type Readings struct {
	Temperature  Reading // °C
	Humidity     Reading // %
	Lux          Reading // illuminance
	SoilMoisture Reading // mV
}

// Reader reads all sensor channels. Read never fails as a whole —
// individual failures are carried inside the Readings.
type Reader interface {
	Read() Readings

	// Close releases sensor resources.
	Close() error
}
