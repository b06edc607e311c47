package audio

import (
	"fmt"
	"io"

	"github.com/faiface/beep/wav"

	"github.com/citrusvanilla/speed-jong/internal/engine"
)

// seekBuffer is an in-memory io.WriteSeeker. The WAV encoder needs one
// because it seeks back to patch the RIFF header once the stream length is
// known.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.buf) {
		b.buf = append(b.buf, make([]byte, end-len(b.buf))...)
	}
	copy(b.buf[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var from int
	switch whence {
	case io.SeekStart:
		from = 0
	case io.SeekCurrent:
		from = b.pos
	case io.SeekEnd:
		from = len(b.buf)
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	pos := from + int(offset)
	if pos < 0 {
		return 0, fmt.Errorf("seek: negative position %d", pos)
	}
	b.pos = pos
	return int64(pos), nil
}

// RenderWAV renders a cue into a complete in-memory WAV file, ready to be
// served to browsers that do their own playback.
func RenderWAV(cue engine.Cue) ([]byte, error) {
	s, ok := CueStreamer(cue)
	if !ok {
		return nil, fmt.Errorf("audio: unknown cue %q", cue)
	}

	var buf seekBuffer
	if err := wav.Encode(&buf, s, Format()); err != nil {
		return nil, fmt.Errorf("audio: encode %s: %w", cue, err)
	}
	return buf.buf, nil
}
