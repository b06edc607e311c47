package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"

	"github.com/citrusvanilla/speed-jong/internal/engine"
	"github.com/citrusvanilla/speed-jong/internal/prefs"
)

// CuePlayer plays audio cues. A nil player means the session runs silent.
type CuePlayer interface {
	Play(cue engine.Cue)
}

// Flash feedback persists for a few frames after a restart tap.
const flashFrameCount = 4

var flashArrows = [8]string{"→", "↗", "↑", "↖", "←", "↙", "↓", "↘"}

// tickMsg drives the countdown at the engine's cadence.
type tickMsg struct{}

// Model is the practice timer TUI model.
type Model struct {
	timer  engine.Timer
	prefs  prefs.Practice
	player CuePlayer
	clock  clockwork.Clock

	width  int
	height int
	ready  bool

	// ticking guards against stacking tick chains when taps land while a
	// countdown is already live.
	ticking bool

	flashFrames int
	flashArrow  string
}

// NewModel creates the practice timer model. A nil clock falls back to the
// wall clock.
func NewModel(p prefs.Practice, player CuePlayer, clock clockwork.Clock) Model {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return Model{
		timer:  engine.NewReadyTimer(p.DurationSeconds, p.Sounds),
		prefs:  p,
		player: player,
		clock:  clock,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Tap):
			// Keyboard taps land on the viewport center.
			return m.tap(float64(m.width)/2, float64(m.height)/2)

		case key.Matches(msg, keys.Longer):
			return m.reconfigure(m.prefs.DurationSeconds + 1)

		case key.Matches(msg, keys.Shorter):
			return m.reconfigure(m.prefs.DurationSeconds - 1)

		case key.Matches(msg, keys.ToggleTick):
			m.prefs.Sounds.Tick = !m.prefs.Sounds.Tick
			m.timer.Sounds = m.prefs.Sounds
			return m, nil

		case key.Matches(msg, keys.ToggleReset):
			m.prefs.Sounds.Reset = !m.prefs.Sounds.Reset
			m.timer.Sounds = m.prefs.Sounds
			return m, nil

		case key.Matches(msg, keys.ToggleTimeout):
			m.prefs.Sounds.Timeout = !m.prefs.Sounds.Timeout
			m.timer.Sounds = m.prefs.Sounds
			return m, nil
		}
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m.tap(float64(msg.X), float64(msg.Y))
		}
		return m, nil

	case tickMsg:
		return m.tick()
	}

	return m, nil
}

// tap starts or restarts the countdown from a tap at (x, y). Taps inside
// the debounce window are dropped without feedback.
func (m Model) tap(x, y float64) (tea.Model, tea.Cmd) {
	events, next, err := engine.Apply(m.timer, engine.Command{
		Type:   engine.CmdTap,
		X:      x,
		Y:      y,
		Width:  float64(m.width),
		Height: float64(m.height),
		Now:    m.clock.Now(),
	})
	if err != nil {
		return m, nil
	}
	m.timer = next
	m.playCues(events)

	for _, ev := range events {
		if ev.Type == engine.EvtFlash {
			m.flashFrames = flashFrameCount
			m.flashArrow = arrowFor(ev.Angle)
		}
	}

	if !m.ticking {
		m.ticking = true
		return m, tickCmd()
	}
	return m, nil
}

// reconfigure applies a new duration. Ignored while a countdown is live so
// a stray keypress cannot wipe the clock mid-hand.
func (m Model) reconfigure(seconds int) (tea.Model, tea.Cmd) {
	if m.timer.State == engine.StateRunning {
		return m, nil
	}
	m.prefs.DurationSeconds = engine.ClampDuration(seconds)

	events, next, err := engine.Apply(m.timer, engine.Command{
		Type:            engine.CmdConfigure,
		DurationSeconds: m.prefs.DurationSeconds,
		Sounds:          m.prefs.Sounds,
	})
	if err != nil {
		return m, nil
	}
	m.timer = next
	m.playCues(events)
	return m, nil
}

func (m Model) tick() (tea.Model, tea.Cmd) {
	if m.flashFrames > 0 {
		m.flashFrames--
	}
	if m.timer.State != engine.StateRunning {
		m.ticking = false
		return m, nil
	}

	events, next, err := engine.Apply(m.timer, engine.Command{Type: engine.CmdTick})
	if err != nil {
		m.ticking = false
		return m, nil
	}
	m.timer = next
	m.playCues(events)

	if m.timer.State != engine.StateRunning {
		m.ticking = false
		return m, nil
	}
	return m, tickCmd()
}

func (m Model) playCues(events []engine.Event) {
	if m.player == nil {
		return
	}
	for _, ev := range events {
		if ev.Type == engine.EvtCue {
			m.player.Play(ev.Cue)
		}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	d := m.timer.Display()
	bg := lipgloss.Color(d.Color.Hex)

	face := TimeStyle.Background(bg).Render(d.Remaining)
	if m.flashFrames > 0 {
		face = lipgloss.JoinHorizontal(lipgloss.Center, face, FlashStyle.Background(bg).Render(m.flashArrow))
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		face,
		OverlayStyle.Background(bg).Render(overlayText(d.Overlay)),
	)

	dial := lipgloss.Place(m.width, m.height-1,
		lipgloss.Center, lipgloss.Center,
		content,
		lipgloss.WithWhitespaceBackground(bg),
	)
	return dial + "\n" + m.helpView()
}

func (m Model) helpView() string {
	hints := fmt.Sprintf(
		"tap: space/click · duration: %ds (↑/↓) · sounds: t%s r%s o%s · q: quit",
		m.prefs.DurationSeconds,
		onOff(m.prefs.Sounds.Tick),
		onOff(m.prefs.Sounds.Reset),
		onOff(m.prefs.Sounds.Timeout),
	)
	return HelpStyle.Width(m.width).Render(hints)
}

func overlayText(o engine.Overlay) string {
	switch o {
	case engine.OverlayReady:
		return "tap to start"
	case engine.OverlayRunning:
		return "tap resets the clock"
	case engine.OverlayExpired:
		return "time! tap to go again"
	}
	return ""
}

func onOff(on bool) string {
	if on {
		return "✓"
	}
	return "✗"
}

// arrowFor picks the glyph for a flash angle, eight sectors around the
// compass.
func arrowFor(angle float64) string {
	sector := int(math.Round(angle / (math.Pi / 4)))
	return flashArrows[((sector%8)+8)%8]
}

func tickCmd() tea.Cmd {
	return tea.Tick(engine.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Key bindings
var keys = struct {
	Quit          key.Binding
	Tap           key.Binding
	Longer        key.Binding
	Shorter       key.Binding
	ToggleTick    key.Binding
	ToggleReset   key.Binding
	ToggleTimeout key.Binding
}{
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
	Tap:           key.NewBinding(key.WithKeys(" ", "enter")),
	Longer:        key.NewBinding(key.WithKeys("up", "+")),
	Shorter:       key.NewBinding(key.WithKeys("down", "-")),
	ToggleTick:    key.NewBinding(key.WithKeys("t")),
	ToggleReset:   key.NewBinding(key.WithKeys("r")),
	ToggleTimeout: key.NewBinding(key.WithKeys("o")),
}
