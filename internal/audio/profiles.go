package audio

import (
	"time"

	"github.com/faiface/beep"

	"github.com/citrusvanilla/speed-jong/internal/engine"
)

// Output format shared by live playback and the WAV endpoint.
const (
	sampleRate  = beep.SampleRate(44100)
	numChannels = 2
	precision   = 2 // bytes per sample, 16-bit output
)

// Format returns the PCM format every cue is rendered in.
func Format() beep.Format {
	return beep.Format{SampleRate: sampleRate, NumChannels: numChannels, Precision: precision}
}

// Tone envelope shared by every cue. The short linear attack and release
// keep the square wave from clicking at its edges.
const (
	toneAttack  = 5 * time.Millisecond
	toneRelease = 30 * time.Millisecond
	toneGain    = 0.2
)

// A Tone is one square-wave note inside a cue, scheduled at Offset from the
// cue's start.
type Tone struct {
	Freq     float64
	Duration time.Duration
	Offset   time.Duration
}

// Cue profiles. Frequencies, durations and offsets are part of the audible
// contract; changing them changes the game's feel.
//
//	tick:    one short high blip per elapsed second
//	reset:   two ascending tones on start/restart
//	timeout: two descending tones on expiry
var profiles = map[engine.Cue][]Tone{
	engine.CueTick: {
		{Freq: 880, Duration: 60 * time.Millisecond},
	},
	engine.CueReset: {
		{Freq: 660, Duration: 90 * time.Millisecond},
		{Freq: 880, Duration: 90 * time.Millisecond, Offset: 110 * time.Millisecond},
	},
	engine.CueTimeout: {
		{Freq: 440, Duration: 160 * time.Millisecond},
		{Freq: 330, Duration: 240 * time.Millisecond, Offset: 180 * time.Millisecond},
	},
}

// Profile returns the tone schedule for a cue.
func Profile(cue engine.Cue) ([]Tone, bool) {
	tones, ok := profiles[cue]
	return tones, ok
}

// Cues lists every cue with a registered profile.
func Cues() []engine.Cue {
	return []engine.Cue{engine.CueTick, engine.CueReset, engine.CueTimeout}
}

// CueDuration is the total playback length of a cue, zero for unknown cues.
func CueDuration(cue engine.Cue) time.Duration {
	var end time.Duration
	for _, t := range profiles[cue] {
		if tail := t.Offset + t.Duration; tail > end {
			end = tail
		}
	}
	return end
}
