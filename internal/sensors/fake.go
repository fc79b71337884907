package sensors

// FakeReader is a test double that returns scripted sensor readings.
type FakeReader struct {
	// Samples contains scripted readings to return.
	// Each call to Read() consumes the next sample; when exhausted the
	// last one is returned repeatedly.
	Samples []Readings

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeReader creates a FakeReader with the given scripted readings.
func NewFakeReader(samples []Readings) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Values builds a fully-valid Readings from plain numbers. Test helper.
func Values(temp, humidity, lux, soil float64) Readings {
	return Readings{
		Temperature:  Reading{Value: temp},
		Humidity:     Reading{Value: humidity},
		Lux:          Reading{Value: lux},
		SoilMoisture: Reading{Value: soil},
	}
}

// Read returns the next scripted reading.
func (f *FakeReader) Read() Readings {
	if len(f.Samples) == 0 {
		return Readings{}
	}
	r := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return r
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
