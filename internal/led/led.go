// Package led drives the indicator light with hardware abstraction.
// The real implementation switches an RGB LED via Linux GPIO character
// device lines. The fake implementation allows testing without hardware.
package led

import "github.com/sweeney/plant-monitor/internal/plant"

// Color is a preset indicator color.
type Color string

const (
	ColorOff    Color = "OFF"
	ColorRed    Color = "RED"
	ColorGreen  Color = "GREEN"
	ColorBlue   Color = "BLUE"
	ColorYellow Color = "YELLOW"
	ColorOrange Color = "ORANGE"
	ColorPurple Color = "PURPLE"
	ColorWhite  Color = "WHITE"
)

// Driver sets the indicator color.
type Driver interface {
	Set(c Color) error

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering) for the RGB indicator.
const (
	DefaultPinRed   = 20
	DefaultPinGreen = 21
	DefaultPinBlue  = 8
)

// ColorFor maps a plant condition to its indicator color. The error
// verdict gets the "unknown" color so a stuck sensor is visible at a
// glance.
func ColorFor(c plant.Condition) Color {
	switch c {
	case plant.SoilDry:
		return ColorOrange
	case plant.SoilWet:
		return ColorBlue
	case plant.NeedsWatering:
		return ColorPurple
	case plant.WateringCompleted:
		return ColorGreen
	case plant.TempTooHigh:
		return ColorRed
	case plant.TempTooLow:
		return ColorYellow
	default:
		return ColorWhite
	}
}

// rgb returns the per-channel on/off levels for a preset. With plain GPIO
// lines only the eight binary mixes exist; orange renders as red+green.
func rgb(c Color) (r, g, b bool) {
	switch c {
	case ColorRed:
		return true, false, false
	case ColorGreen:
		return false, true, false
	case ColorBlue:
		return false, false, true
	case ColorYellow, ColorOrange:
		return true, true, false
	case ColorPurple:
		return true, false, true
	case ColorWhite:
		return true, true, true
	default:
		return false, false, false
	}
}
