package engine

import (
	"errors"
	"math"
	"testing"
	"time"
)

func runTicks(t *testing.T, tm Timer, n int) (Timer, []Event) {
	t.Helper()
	var all []Event
	for i := 0; i < n; i++ {
		events, next, err := Apply(tm, Command{Type: CmdTick})
		if err != nil {
			t.Fatalf("tick %d: unexpected err: %v", i+1, err)
		}
		all = append(all, events...)
		tm = next
	}
	return tm, all
}

func TestConfigure_ClampsDuration(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"below range", 1, MinDurationSeconds},
		{"lower bound", 3, 3},
		{"in range", 8, 8},
		{"upper bound", 15, 15},
		{"above range", 40, MaxDurationSeconds},
		{"zero", 0, MinDurationSeconds},
		{"negative", -5, MinDurationSeconds},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events, tm, err := Apply(NewTimer(), Command{Type: CmdConfigure, DurationSeconds: tc.in, Sounds: DefaultSounds()})
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if tm.State != StateReady {
				t.Fatalf("state: got %v, want %v", tm.State, StateReady)
			}
			if tm.DurationSeconds != tc.want {
				t.Fatalf("duration: got %d, want %d", tm.DurationSeconds, tc.want)
			}
			if tm.RemainingDecis != 0 {
				t.Fatalf("remaining: got %d, want 0 placeholder", tm.RemainingDecis)
			}
			if !ContainsEvent(events, EvtConfigured) {
				t.Fatalf("expected EvtConfigured")
			}
		})
	}
}

func TestStart_RequiresConfiguration(t *testing.T) {
	_, _, err := Apply(NewTimer(), Command{Type: CmdStart})
	if err == nil || !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}

func TestFullRun_ExpiresExactlyOnZero(t *testing.T) {
	tm := NewReadyTimer(5, SoundPrefs{Tick: false, Reset: true, Timeout: true})

	events, tm, err := Apply(tm, Command{Type: CmdStart})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if tm.State != StateRunning || tm.RemainingDecis != 50 {
		t.Fatalf("after start: got state=%v remaining=%d, want running/50", tm.State, tm.RemainingDecis)
	}
	if CountCues(events, CueReset) != 1 {
		t.Fatalf("reset cue: got %d, want 1", CountCues(events, CueReset))
	}

	tm, ticked := runTicks(t, tm, 50)
	if tm.State != StateExpired {
		t.Fatalf("after 50 ticks: got %v, want expired", tm.State)
	}
	if tm.RemainingDecis != 0 {
		t.Fatalf("remaining: got %d, want exactly 0", tm.RemainingDecis)
	}
	if got := CountCues(ticked, CueTimeout); got != 1 {
		t.Fatalf("timeout cue: got %d, want 1", got)
	}
	if got := CountCues(ticked, CueTick); got != 0 {
		t.Fatalf("tick cue fired %d times with tick muted", got)
	}
}

func TestTick_MonotonicToZeroForAllDurations(t *testing.T) {
	for d := MinDurationSeconds; d <= MaxDurationSeconds; d++ {
		tm := NewReadyTimer(d, SoundPrefs{})
		_, tm, err := Apply(tm, Command{Type: CmdStart})
		if err != nil {
			t.Fatalf("duration %d: start: %v", d, err)
		}

		prev := tm.RemainingDecis
		for i := 0; i < d*DecisPerSecond; i++ {
			_, next, err := Apply(tm, Command{Type: CmdTick})
			if err != nil {
				t.Fatalf("duration %d tick %d: %v", d, i+1, err)
			}
			if next.RemainingDecis >= prev {
				t.Fatalf("duration %d: remaining did not decrease at tick %d", d, i+1)
			}
			if next.RemainingDecis < 0 {
				t.Fatalf("duration %d: remaining went negative", d)
			}
			prev = next.RemainingDecis
			tm = next
		}
		if tm.RemainingDecis != 0 || tm.State != StateExpired {
			t.Fatalf("duration %d: got remaining=%d state=%v, want 0/expired", d, tm.RemainingDecis, tm.State)
		}
	}
}

func TestTickCue_OncePerBoundaryNeverAtZero(t *testing.T) {
	tm := NewReadyTimer(3, SoundPrefs{Tick: true})
	_, tm, err := Apply(tm, Command{Type: CmdStart})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var cueAt []int
	for i := 0; i < 3*DecisPerSecond; i++ {
		events, next, err := Apply(tm, Command{Type: CmdTick})
		if err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
		if ContainsCue(events, CueTick) {
			cueAt = append(cueAt, next.RemainingDecis)
		}
		tm = next
	}

	want := []int{29, 19, 9}
	if len(cueAt) != len(want) {
		t.Fatalf("tick cues at %v, want %v", cueAt, want)
	}
	for i := range want {
		if cueAt[i] != want[i] {
			t.Fatalf("tick cues at %v, want %v", cueAt, want)
		}
	}
}

func TestTickCueGate_AdvancesWhileMuted(t *testing.T) {
	tm := NewReadyTimer(5, SoundPrefs{})
	_, tm, err := Apply(tm, Command{Type: CmdStart})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	tm, events := runTicks(t, tm, 11)
	if len(events) != 0 {
		t.Fatalf("muted run emitted %d events", len(events))
	}
	if tm.LastWholeSecond != 3 {
		t.Fatalf("cue gate: got %d, want 3", tm.LastWholeSecond)
	}
}

func TestTick_WhenNotRunning(t *testing.T) {
	cases := []struct {
		name string
		tm   Timer
	}{
		{"idle", NewTimer()},
		{"ready", NewReadyTimer(5, DefaultSounds())},
		{"expired", Timer{State: StateExpired, DurationSeconds: 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Apply(tc.tm, Command{Type: CmdTick})
			if err == nil || !errors.Is(err, ErrNotRunning) {
				t.Fatalf("want ErrNotRunning, got %v", err)
			}
		})
	}
}

func TestTap_DebounceRejectsRapidTaps(t *testing.T) {
	base := time.Unix(1000, 0)
	tm := NewReadyTimer(5, SoundPrefs{})

	_, tm, err := Apply(tm, Command{Type: CmdTap, Now: base, X: 10, Y: 10, Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("first tap: %v", err)
	}
	if tm.State != StateRunning {
		t.Fatalf("after first tap: got %v, want running", tm.State)
	}

	tm, _ = runTicks(t, tm, 18) // 3.2s remaining
	before := tm

	_, after, err := Apply(tm, Command{Type: CmdTap, Now: base.Add(100 * time.Millisecond)})
	if err == nil || !errors.Is(err, ErrTapDebounced) {
		t.Fatalf("want ErrTapDebounced, got %v", err)
	}
	if after != before {
		t.Fatalf("debounced tap mutated state: %+v -> %+v", before, after)
	}
}

func TestTap_RestartsFromExpired(t *testing.T) {
	base := time.Unix(1000, 0)
	tm := NewReadyTimer(4, SoundPrefs{Reset: true})

	_, tm, err := Apply(tm, Command{Type: CmdTap, Now: base, Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("first tap: %v", err)
	}
	tm, _ = runTicks(t, tm, 40)
	if tm.State != StateExpired {
		t.Fatalf("after full run: got %v, want expired", tm.State)
	}

	events, tm, err := Apply(tm, Command{Type: CmdTap, Now: base.Add(3 * time.Second), X: 400, Y: 0, Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("restart tap: %v", err)
	}
	if tm.State != StateRunning {
		t.Fatalf("after restart: got %v, want running", tm.State)
	}
	if tm.RemainingDecis != 40 {
		t.Fatalf("remaining: got %d, want full 40", tm.RemainingDecis)
	}
	if !ContainsEvent(events, EvtStarted) {
		t.Fatalf("expected EvtStarted")
	}
	if !ContainsEvent(events, EvtFlash) {
		t.Fatalf("expected EvtFlash on restart")
	}
	if !ContainsCue(events, CueReset) {
		t.Fatalf("expected reset cue")
	}
}

func TestTap_RestartWhileRunningEmitsFlash(t *testing.T) {
	base := time.Unix(1000, 0)
	tm := NewReadyTimer(5, SoundPrefs{})

	_, tm, err := Apply(tm, Command{Type: CmdTap, Now: base, Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("first tap: %v", err)
	}
	tm, _ = runTicks(t, tm, 10)

	events, tm, err := Apply(tm, Command{Type: CmdTap, Now: base.Add(time.Second), X: 0, Y: 300, Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("reset tap: %v", err)
	}
	if tm.RemainingDecis != 50 {
		t.Fatalf("remaining after reset: got %d, want 50", tm.RemainingDecis)
	}
	if !ContainsEvent(events, EvtFlash) {
		t.Fatalf("expected EvtFlash on reset")
	}
}

func TestTap_FirstStartHasNoFlash(t *testing.T) {
	tm := NewReadyTimer(5, SoundPrefs{})
	events, tm, err := Apply(tm, Command{Type: CmdTap, Now: time.Unix(1000, 0), Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("tap: %v", err)
	}
	if tm.State != StateRunning {
		t.Fatalf("got %v, want running", tm.State)
	}
	if ContainsEvent(events, EvtFlash) {
		t.Fatalf("first start should not flash")
	}
}

func TestTap_IdleIsRejected(t *testing.T) {
	_, _, err := Apply(NewTimer(), Command{Type: CmdTap, Now: time.Unix(1000, 0)})
	if err == nil || !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}

func TestTapAngle_PointsTowardCenter(t *testing.T) {
	cases := []struct {
		name string
		x, y float64
		want float64
	}{
		{"tap left of center", 0, 300, 0},
		{"tap above center", 400, 0, math.Pi / 2},
		{"tap at center", 400, 300, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tapAngle(Command{X: tc.x, Y: tc.y, Width: 800, Height: 600})
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestColorRamp_FollowsPowerCurve(t *testing.T) {
	start, end := ColorAt(0), ColorAt(1)
	if start.Hue != 120 || start.Saturation != 65 || start.Lightness != 60 {
		t.Fatalf("start color: got %+v", start)
	}
	if end.Hue != 0 || end.Saturation != 100 || end.Lightness != 50 {
		t.Fatalf("end color: got %+v", end)
	}

	mid := ColorAt(0.5)
	if math.Abs(mid.Hue-40.8) > 0.1 {
		t.Fatalf("hue at half elapsed: got %.2f, want ~40.8", mid.Hue)
	}
}

func TestColorRamp_Monotonic(t *testing.T) {
	prev := ColorAt(0)
	for i := 1; i <= 20; i++ {
		c := ColorAt(float64(i) / 20)
		if c.Hue >= prev.Hue {
			t.Fatalf("hue not strictly decreasing at step %d: %.2f -> %.2f", i, prev.Hue, c.Hue)
		}
		if c.Saturation <= prev.Saturation {
			t.Fatalf("saturation not strictly increasing at step %d", i)
		}
		prev = c
	}
}

func TestDisplay_Projection(t *testing.T) {
	tm := NewReadyTimer(5, DefaultSounds())
	d := tm.Display()
	if d.Remaining != "0.0" || d.Overlay != OverlayReady || d.KeepAwake {
		t.Fatalf("ready display: got %+v", d)
	}

	_, tm, err := Apply(tm, Command{Type: CmdStart})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	tm, _ = runTicks(t, tm, 25)
	d = tm.Display()
	if d.Remaining != "2.5" {
		t.Fatalf("remaining: got %q, want 2.5", d.Remaining)
	}
	if d.Progress != 0.5 {
		t.Fatalf("progress: got %v, want 0.5", d.Progress)
	}
	if d.Overlay != OverlayRunning || !d.KeepAwake {
		t.Fatalf("running display: got %+v", d)
	}

	tm, _ = runTicks(t, tm, 25)
	d = tm.Display()
	if d.Overlay != OverlayExpired || d.Remaining != "0.0" || d.KeepAwake {
		t.Fatalf("expired display: got %+v", d)
	}
	if d.Color.Hue != 0 {
		t.Fatalf("expired hue: got %v, want 0", d.Color.Hue)
	}
}
