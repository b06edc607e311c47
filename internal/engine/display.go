package engine

import "fmt"

// Overlay names the instructional text a client should render over the dial.
// The three post-configuration states carry mutually exclusive overlays.
type Overlay string

const (
	OverlayNone    Overlay = "none"
	OverlayReady   Overlay = "ready"
	OverlayRunning Overlay = "running"
	OverlayExpired Overlay = "expired"
)

// Display is the render-ready projection of a Timer: remaining time already
// formatted to one decimal, the wipe fraction, the background color, and the
// overlay choice. Clients draw it without touching timer internals.
type Display struct {
	State            State   `json:"state"`
	Remaining        string  `json:"remaining"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	DurationSeconds  int     `json:"duration_seconds"`
	Progress         float64 `json:"progress"`
	Color            Color   `json:"color"`
	Overlay          Overlay `json:"overlay"`
	KeepAwake        bool    `json:"keep_awake"`
}

// Display projects the timer for rendering. Progress is the fraction of the
// configured duration still remaining; the color ramp runs on its inverse.
func (t Timer) Display() Display {
	d := Display{
		State:            t.State,
		Remaining:        formatDecis(t.RemainingDecis),
		RemainingSeconds: float64(t.RemainingDecis) / DecisPerSecond,
		DurationSeconds:  t.DurationSeconds,
		Color:            ColorAt(0),
		Overlay:          OverlayNone,
	}

	switch t.State {
	case StateReady:
		d.Overlay = OverlayReady
	case StateRunning:
		d.Progress = float64(t.RemainingDecis) / float64(t.DurationSeconds*DecisPerSecond)
		d.Color = ColorAt(1 - d.Progress)
		d.Overlay = OverlayRunning
		d.KeepAwake = true
	case StateExpired:
		d.Color = ColorAt(1)
		d.Overlay = OverlayExpired
	}
	return d
}

func formatDecis(decis int) string {
	return fmt.Sprintf("%d.%d", decis/DecisPerSecond, decis%DecisPerSecond)
}
