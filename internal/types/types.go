// Package types defines the websocket wire protocol.
//
// Client -> Server
//
//	Tap:
//	  x, y: viewport coordinates of the tap
//	  width, height: viewport size, for aiming the feedback sprite
//
//	Configure:
//	  duration_seconds: countdown length, clamped server-side
//	  sounds: { tick, reset, timeout } cue toggles
//
//	Start: {}
//
// Server -> Client
//
//	StateSnapshot:
//	  version: number
//	  display: render-ready projection (state, remaining, progress, color,
//	           overlay, keep_awake)
//
//	Cue:
//	  cue: "tick" | "reset" | "timeout", play the matching /cues WAV
//
//	Flash:
//	  angle: radians toward screen center, orient the tap feedback
//
//	Error:
//	  error: string
package types

import "github.com/citrusvanilla/speed-jong/internal/engine"

type ClientMessage struct {
	Type            string             `json:"type"`
	X               float64            `json:"x,omitempty"`
	Y               float64            `json:"y,omitempty"`
	Width           float64            `json:"width,omitempty"`
	Height          float64            `json:"height,omitempty"`
	DurationSeconds int                `json:"duration_seconds,omitempty"`
	Sounds          *engine.SoundPrefs `json:"sounds,omitempty"`
}

type ServerMessage struct {
	Type    string          `json:"type"` // "StateSnapshot" | "Cue" | "Flash" | "Error"
	Version int             `json:"version,omitempty"`
	Display *engine.Display `json:"display,omitempty"`
	Cue     string          `json:"cue,omitempty"`
	Angle   *float64        `json:"angle,omitempty"`
	Error   string          `json:"error,omitempty"`
}
