// Package settings persists shared timer defaults in a small key/value
// table. Rooms read them when a client configures a timer without explicit
// values; the operator surface writes them.
package settings

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/citrusvanilla/speed-jong/internal/engine"
)

const (
	KeyDuration     = "timer.duration_seconds"
	KeySoundTick    = "timer.sound.tick"
	KeySoundReset   = "timer.sound.reset"
	KeySoundTimeout = "timer.sound.timeout"
)

// Setting is one key/value row.
type Setting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `json:"value"`
}

// TimerSettings is the typed view of the stored keys.
type TimerSettings struct {
	DurationSeconds int               `json:"duration_seconds"`
	Sounds          engine.SoundPrefs `json:"sounds"`
}

// DefaultTimerSettings mirrors a freshly configured timer.
func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		DurationSeconds: engine.DefaultDurationSeconds,
		Sounds:          engine.DefaultSounds(),
	}
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Setting{})
}

// Timer returns the stored timer defaults. Missing or malformed values
// fall back to the countdown defaults and the duration is clamped, so the
// result is always usable.
func (s *Store) Timer(ctx context.Context) (TimerSettings, error) {
	var rows []Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return DefaultTimerSettings(), fmt.Errorf("failed to load settings: %w", err)
	}
	return decodeTimer(rows), nil
}

// SaveTimer persists the timer defaults and returns what was actually
// stored after clamping.
func (s *Store) SaveTimer(ctx context.Context, ts TimerSettings) (TimerSettings, error) {
	ts.DurationSeconds = engine.ClampDuration(ts.DurationSeconds)
	for _, row := range encodeTimer(ts) {
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&row).Error
		if err != nil {
			return ts, fmt.Errorf("failed to save setting %s: %w", row.Key, err)
		}
	}
	return ts, nil
}

func decodeTimer(rows []Setting) TimerSettings {
	out := DefaultTimerSettings()
	for _, row := range rows {
		switch row.Key {
		case KeyDuration:
			if n, err := strconv.Atoi(row.Value); err == nil {
				out.DurationSeconds = engine.ClampDuration(n)
			}
		case KeySoundTick:
			if b, err := strconv.ParseBool(row.Value); err == nil {
				out.Sounds.Tick = b
			}
		case KeySoundReset:
			if b, err := strconv.ParseBool(row.Value); err == nil {
				out.Sounds.Reset = b
			}
		case KeySoundTimeout:
			if b, err := strconv.ParseBool(row.Value); err == nil {
				out.Sounds.Timeout = b
			}
		}
	}
	return out
}

func encodeTimer(ts TimerSettings) []Setting {
	return []Setting{
		{Key: KeyDuration, Value: strconv.Itoa(ts.DurationSeconds)},
		{Key: KeySoundTick, Value: strconv.FormatBool(ts.Sounds.Tick)},
		{Key: KeySoundReset, Value: strconv.FormatBool(ts.Sounds.Reset)},
		{Key: KeySoundTimeout, Value: strconv.FormatBool(ts.Sounds.Timeout)},
	}
}
