//go:build !linux

package led

import "errors"

// RealDriver is not available on non-Linux platforms.
type RealDriver struct{}

// NewRealDriver returns an error on non-Linux platforms.
func NewRealDriver(pinRed, pinGreen, pinBlue int) (*RealDriver, error) {
	return nil, errors.New("led: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (d *RealDriver) Set(c Color) error {
	return errors.New("led: not supported")
}

// Close is not implemented on non-Linux platforms.
func (d *RealDriver) Close() error {
	return nil
}
