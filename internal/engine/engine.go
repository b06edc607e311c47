package engine

import (
	"errors"
	"math"
	"time"
)

var ErrNotConfigured = errors.New("timer not configured")
var ErrNotRunning = errors.New("timer not running")
var ErrTapDebounced = errors.New("tap inside debounce window")
var ErrUnsupportedCommand = errors.New("unsupported command")

type State string

const (
	StateIdle    State = "idle"
	StateReady   State = "ready"
	StateRunning State = "running"
	StateExpired State = "expired"
)

// Countdown bounds and cadence. Durations outside [Min,Max] are clamped,
// never rejected, so a bad client value still yields a usable timer.
const (
	MinDurationSeconds     = 3
	MaxDurationSeconds     = 15
	DefaultDurationSeconds = 5

	TickInterval   = 100 * time.Millisecond
	DecisPerSecond = 10

	TapDebounce = 250 * time.Millisecond
)

// SoundPrefs holds the three independent audio cue toggles.
type SoundPrefs struct {
	Tick    bool `json:"tick"`
	Reset   bool `json:"reset"`
	Timeout bool `json:"timeout"`
}

// DefaultSounds returns the out-of-the-box cue toggles (everything audible).
func DefaultSounds() SoundPrefs {
	return SoundPrefs{Tick: true, Reset: true, Timeout: true}
}

// Timer is the countdown state for one playing surface. Remaining time is
// tracked in whole deciseconds so repeated ticks land on exactly zero with
// no float drift; LastWholeSecond gates the tick cue to at most one firing
// per whole-second crossing.
type Timer struct {
	State           State
	DurationSeconds int
	RemainingDecis  int
	LastWholeSecond int
	Sounds          SoundPrefs
	LastTapAt       time.Time
	TapAngle        float64
}

type CommandType string

const (
	CmdConfigure CommandType = "Configure"
	CmdStart     CommandType = "Start"
	CmdTick      CommandType = "Tick"
	CmdTap       CommandType = "Tap"
)

type Command struct {
	Type CommandType

	// Configure
	DurationSeconds int
	Sounds          SoundPrefs

	// Tap: viewport coordinates plus a monotonic timestamp supplied by the
	// caller's clock.
	X, Y          float64
	Width, Height float64
	Now           time.Time
}

type Cue string

const (
	CueTick    Cue = "tick"
	CueReset   Cue = "reset"
	CueTimeout Cue = "timeout"
)

type EventType string

const (
	EvtConfigured EventType = "Configured"
	EvtStarted    EventType = "Started"
	EvtExpired    EventType = "Expired"
	EvtCue        EventType = "Cue"
	EvtFlash      EventType = "Flash"
)

type Event struct {
	Type  EventType
	Cue   Cue
	Angle float64
}

/*
	CmdConfigure -> EvtConfigured
	CmdStart     -> EvtStarted (+ reset cue)
	CmdTick      -> tick cue on whole-second crossings while time remains;
	                EvtExpired (+ timeout cue) on reaching exactly zero
	CmdTap       -> debounce gate, then Start; restarts from running/expired
	                additionally emit EvtFlash with the tap origin angle
*/
func Apply(t Timer, cmd Command) ([]Event, Timer, error) {
	next := t

	switch cmd.Type {
	case CmdConfigure:
		next.State = StateReady
		next.DurationSeconds = ClampDuration(cmd.DurationSeconds)
		next.Sounds = cmd.Sounds
		next.RemainingDecis = 0 // "0.0" placeholder until the first start
		next.LastWholeSecond = 0
		return []Event{{Type: EvtConfigured}}, next, nil

	case CmdStart:
		return start(next)

	case CmdTick:
		if t.State != StateRunning {
			return nil, t, ErrNotRunning
		}
		next.RemainingDecis--
		if next.RemainingDecis <= 0 {
			next.RemainingDecis = 0
			next.State = StateExpired
			events := []Event{{Type: EvtExpired}}
			if next.Sounds.Timeout {
				events = append(events, Event{Type: EvtCue, Cue: CueTimeout})
			}
			return events, next, nil
		}
		var events []Event
		if whole := next.RemainingDecis / DecisPerSecond; whole < next.LastWholeSecond {
			// The gate advances on every crossing; the flag only mutes it.
			next.LastWholeSecond = whole
			if next.Sounds.Tick {
				events = append(events, Event{Type: EvtCue, Cue: CueTick})
			}
		}
		return events, next, nil

	case CmdTap:
		if t.State == StateIdle {
			return nil, t, ErrNotConfigured
		}
		if !t.LastTapAt.IsZero() && cmd.Now.Sub(t.LastTapAt) < TapDebounce {
			return nil, t, ErrTapDebounced
		}
		next.LastTapAt = cmd.Now
		next.TapAngle = tapAngle(cmd)
		restart := t.State == StateRunning || t.State == StateExpired

		events, started, err := start(next)
		if err != nil {
			return nil, t, err
		}
		if restart {
			events = append(events, Event{Type: EvtFlash, Angle: started.TapAngle})
		}
		return events, started, nil

	default:
		return nil, t, ErrUnsupportedCommand
	}
}

func start(t Timer) ([]Event, Timer, error) {
	if t.State == StateIdle {
		return nil, t, ErrNotConfigured
	}
	t.RemainingDecis = t.DurationSeconds * DecisPerSecond
	t.LastWholeSecond = t.DurationSeconds
	t.State = StateRunning

	events := []Event{{Type: EvtStarted}}
	if t.Sounds.Reset {
		events = append(events, Event{Type: EvtCue, Cue: CueReset})
	}
	return events, t, nil
}

// tapAngle points from the tap position toward the viewport center, used to
// orient the tap feedback sprite.
func tapAngle(cmd Command) float64 {
	if cmd.Width <= 0 || cmd.Height <= 0 {
		return 0
	}
	return math.Atan2(cmd.Height/2-cmd.Y, cmd.Width/2-cmd.X)
}
