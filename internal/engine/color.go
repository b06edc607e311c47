package engine

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is the urgency color for a point in the countdown, carried in HSL
// components plus pre-rendered hex and CSS strings so clients never have to
// reimplement the ramp.
type Color struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Lightness  float64 `json:"lightness"`
	Hex        string  `json:"hex"`
	CSS        string  `json:"css"`
}

// Ramp endpoints: green at a full timer, red at expiry, with saturation
// rising and lightness dropping as time runs out.
const (
	hueStart   = 120.0
	hueEnd     = 0.0
	satStart   = 65.0
	satEnd     = 100.0
	lightStart = 60.0
	lightEnd   = 50.0

	// colorCurve skews the ramp so the shift toward red lands earlier than
	// linear, making the closing seconds unmistakable.
	colorCurve = 0.6
)

// ColorAt maps elapsed progress in [0,1] onto the countdown color ramp.
// 0 is a full timer, 1 is expiry. Inputs outside [0,1] are clamped.
func ColorAt(elapsed float64) Color {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > 1 {
		elapsed = 1
	}
	curved := math.Pow(elapsed, colorCurve)

	hue := hueStart + (hueEnd-hueStart)*curved
	sat := satStart + (satEnd-satStart)*curved
	light := lightStart + (lightEnd-lightStart)*curved

	return Color{
		Hue:        hue,
		Saturation: sat,
		Lightness:  light,
		Hex:        colorful.Hsl(hue, sat/100, light/100).Clamped().Hex(),
		CSS:        fmt.Sprintf("hsl(%.1f, %.1f%%, %.1f%%)", hue, sat, light),
	}
}
