package audio

import (
	"fmt"
	"time"

	"github.com/faiface/beep/speaker"

	"github.com/citrusvanilla/speed-jong/internal/engine"
)

// speakerBuffer trades latency for underrun safety on the shared device.
const speakerBuffer = time.Second / 10

// Player plays cues through the local audio device. Construction fails on
// machines without one; callers treat that as sound-off and carry on.
type Player struct{}

func NewPlayer() (*Player, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(speakerBuffer)); err != nil {
		return nil, fmt.Errorf("audio: init speaker: %w", err)
	}
	return &Player{}, nil
}

// Play queues a cue on the device and returns immediately. Unknown cues are
// ignored.
func (p *Player) Play(cue engine.Cue) {
	s, ok := CueStreamer(cue)
	if !ok {
		return
	}
	speaker.Play(s)
}
