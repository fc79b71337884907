package sensors

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default sysfs nodes on the Pi sensor hat: the moisture probe sits on an
// ADC channel exposed through IIO, the SHT30 and TSL2591 appear as IIO
// devices once their kernel drivers are bound.
const (
	DefaultMoisturePath    = "/sys/bus/iio/devices/iio:device0/in_voltage2_raw"
	DefaultTemperaturePath = "/sys/bus/iio/devices/iio:device1/in_temp_input"
	DefaultHumidityPath    = "/sys/bus/iio/devices/iio:device1/in_humidityrelative_input"
	DefaultLuxPath         = "/sys/bus/iio/devices/iio:device2/in_illuminance_input"
)

// Millidegrees/milli-percent to plain units: the _input nodes report
// values scaled by 1000.
const iioInputScale = 1000.0

// RealReader reads the sensor set from Linux sysfs nodes.
type RealReader struct {
	MoisturePath    string
	TemperaturePath string
	HumidityPath    string
	LuxPath         string

	// MoistureScale converts the raw ADC count to millivolts.
	MoistureScale float64
}

// NewRealReader creates a reader for the default sysfs paths.
func NewRealReader() *RealReader {
	return &RealReader{
		MoisturePath:    DefaultMoisturePath,
		TemperaturePath: DefaultTemperaturePath,
		HumidityPath:    DefaultHumidityPath,
		LuxPath:         DefaultLuxPath,
		MoistureScale:   3300.0 / 4095.0, // 12-bit ADC, 3.3V reference
	}
}

// Read polls all four channels. Each channel fails independently.
func (r *RealReader) Read() Readings {
	var out Readings
	out.Temperature = readScaled(r.TemperaturePath, iioInputScale)
	out.Humidity = readScaled(r.HumidityPath, iioInputScale)
	out.Lux = readScaled(r.LuxPath, 1.0)

	raw := readScaled(r.MoisturePath, 1.0)
	if raw.Err != nil {
		out.SoilMoisture = raw
	} else {
		out.SoilMoisture = Reading{Value: raw.Value * r.MoistureScale}
	}
	return out
}

// Close releases sensor resources. Sysfs reads hold nothing open.
func (r *RealReader) Close() error {
	return nil
}

func readScaled(path string, scale float64) Reading {
	data, err := os.ReadFile(path)
	if err != nil {
		return Reading{Err: fmt.Errorf("read %s: %w", path, err)}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return Reading{Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return Reading{Value: v / scale}
}
