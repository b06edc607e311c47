package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"

	"github.com/citrusvanilla/speed-jong/internal/engine"
)

// tone streams one enveloped square-wave note. It is single-use: once
// drained it keeps reporting completion, matching the beep.Streamer contract.
type tone struct {
	freq    float64
	pos     int
	total   int
	attack  int
	release int
}

func newTone(t Tone) *tone {
	return &tone{
		freq:    t.Freq,
		total:   sampleRate.N(t.Duration),
		attack:  sampleRate.N(toneAttack),
		release: sampleRate.N(toneRelease),
	}
}

func (s *tone) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= s.total {
		return 0, false
	}
	n := 0
	for i := range samples {
		if s.pos >= s.total {
			break
		}
		v := s.sample(s.pos)
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
		n++
	}
	return n, true
}

func (s *tone) Err() error { return nil }

// sample computes the enveloped square value for frame i: a positive first
// half-period, negative second, scaled by the linear attack and release.
func (s *tone) sample(i int) float64 {
	period := float64(sampleRate) / s.freq
	v := toneGain
	if math.Mod(float64(i), period) >= period/2 {
		v = -toneGain
	}
	if i < s.attack {
		v *= float64(i) / float64(s.attack)
	}
	if rem := s.total - i; rem < s.release {
		v *= float64(rem) / float64(s.release)
	}
	return v
}

// CueStreamer assembles the playable streamer for one cue: its tones in
// schedule order with silence filling the gaps between offsets. Profiles
// are sequential, so a tone never overlaps its predecessor.
func CueStreamer(cue engine.Cue) (beep.Streamer, bool) {
	tones, ok := Profile(cue)
	if !ok {
		return nil, false
	}

	var parts []beep.Streamer
	var cursor time.Duration
	for _, t := range tones {
		if gap := t.Offset - cursor; gap > 0 {
			parts = append(parts, beep.Silence(sampleRate.N(gap)))
		}
		parts = append(parts, newTone(t))
		cursor = t.Offset + t.Duration
	}
	return beep.Seq(parts...), true
}
