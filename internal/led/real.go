//go:build linux

package led

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives the RGB indicator on actual hardware using Linux GPIO
// character device output lines.
type RealDriver struct {
	chip  *gpiocdev.Chip
	red   *gpiocdev.Line
	green *gpiocdev.Line
	blue  *gpiocdev.Line
}

// NewRealDriver requests the three color lines as outputs, initially off.
func NewRealDriver(pinRed, pinGreen, pinBlue int) (*RealDriver, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	red, err := chip.RequestLine(pinRed, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request red pin %d: %w", pinRed, err)
	}
	green, err := chip.RequestLine(pinGreen, gpiocdev.AsOutput(0))
	if err != nil {
		red.Close()
		chip.Close()
		return nil, fmt.Errorf("request green pin %d: %w", pinGreen, err)
	}
	blue, err := chip.RequestLine(pinBlue, gpiocdev.AsOutput(0))
	if err != nil {
		green.Close()
		red.Close()
		chip.Close()
		return nil, fmt.Errorf("request blue pin %d: %w", pinBlue, err)
	}

	return &RealDriver{
		chip:  chip,
		red:   red,
		green: green,
		blue:  blue,
	}, nil
}

// Set switches the three lines to the preset's mix.
func (d *RealDriver) Set(c Color) error {
	r, g, b := rgb(c)
	if err := d.red.SetValue(level(r)); err != nil {
		return fmt.Errorf("set red: %w", err)
	}
	if err := d.green.SetValue(level(g)); err != nil {
		return fmt.Errorf("set green: %w", err)
	}
	if err := d.blue.SetValue(level(b)); err != nil {
		return fmt.Errorf("set blue: %w", err)
	}
	return nil
}

// Close turns the indicator off and releases GPIO resources.
func (d *RealDriver) Close() error {
	var errs []error

	for _, line := range []*gpiocdev.Line{d.red, d.green, d.blue} {
		if line == nil {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear line: %w", err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
