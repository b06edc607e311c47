package engine

// NewTimer returns the idle pre-configuration state for a fresh session.
func NewTimer() Timer {
	return Timer{State: StateIdle}
}

// NewReadyTimer returns a configured timer, as if Configure had been applied.
func NewReadyTimer(durationSeconds int, sounds SoundPrefs) Timer {
	return Timer{
		State:           StateReady,
		DurationSeconds: ClampDuration(durationSeconds),
		Sounds:          sounds,
	}
}

// ClampDuration forces a requested duration into the supported range.
// Out-of-range values are adjusted, never rejected.
func ClampDuration(seconds int) int {
	if seconds < MinDurationSeconds {
		return MinDurationSeconds
	}
	if seconds > MaxDurationSeconds {
		return MaxDurationSeconds
	}
	return seconds
}

// ContainsEvent reports whether events holds an event of the given type.
func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// ContainsCue reports whether events holds the given audio cue.
func ContainsCue(events []Event, cue Cue) bool {
	for _, event := range events {
		if event.Type == EvtCue && event.Cue == cue {
			return true
		}
	}
	return false
}

// CountCues returns how many times the given cue appears in events.
func CountCues(events []Event, cue Cue) int {
	n := 0
	for _, event := range events {
		if event.Type == EvtCue && event.Cue == cue {
			n++
		}
	}
	return n
}
