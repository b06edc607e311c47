package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/citrusvanilla/speed-jong/internal/audio"
	"github.com/citrusvanilla/speed-jong/internal/prefs"
)

// Run loads the saved preferences, attaches the audio device when one
// exists, and blocks until the user quits. Preferences are written back on
// exit so duration and sound tweaks stick.
func Run() error {
	p, err := prefs.Load()
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	// Machines without an audio device still get a working timer.
	var player CuePlayer
	if dev, derr := audio.NewPlayer(); derr == nil {
		player = dev
	}

	program := tea.NewProgram(
		NewModel(p, player, nil),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run practice timer: %w", err)
	}

	if m, ok := final.(Model); ok {
		if err := prefs.Save(m.prefs); err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}
	}
	return nil
}
