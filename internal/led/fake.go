package led

// FakeDriver records color changes for test assertions.
type FakeDriver struct {
	// History contains every color set, in order.
	History []Color

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver for testing.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Set records the color.
func (f *FakeDriver) Set(c Color) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.History = append(f.History, c)
	return nil
}

// Current returns the most recently set color, or OFF if none.
func (f *FakeDriver) Current() Color {
	if len(f.History) == 0 {
		return ColorOff
	}
	return f.History[len(f.History)-1]
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}
