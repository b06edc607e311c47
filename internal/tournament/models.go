// Package tournament persists Speed Jong tournament state and implements
// the operator workflows around it: player registration, table seating,
// round lifecycle, scorekeeping and the ranked leaderboard.
package tournament

import (
	"time"

	"github.com/google/uuid"
)

// Type selects the tournament format. Cutline tournaments carry a fixed
// round count; eliminating players is an operator action either way.
type Type string

const (
	TypeStandard Type = "standard"
	TypeCutline  Type = "cutline"
)

type Status string

const (
	StatusStaging   Status = "staging"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type RoundStatus string

const (
	RoundInProgress RoundStatus = "in_progress"
	RoundCompleted  RoundStatus = "completed"
)

// Winds in seating order around a table.
var Winds = [4]string{"East", "South", "West", "North"}

// Tournament is the root record. CurrentRound and RoundInProgress gate the
// round lifecycle; RoomCode names the shared timer room for the event.
// MaxPlayers zero means registration is uncapped.
type Tournament struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `json:"name"`
	Type            Type      `json:"type"`
	Status          Status    `json:"status"`
	TimerDuration   int       `json:"timerDuration"`
	MaxPlayers      int       `json:"maxPlayers"`
	TotalRounds     int       `json:"totalRounds"`
	CurrentRound    int       `json:"currentRound"`
	RoundInProgress bool      `json:"roundInProgress"`
	RoomCode        string    `json:"roomCode"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Player is the live registration record. A nil TableID means unseated;
// Wins is the floored display counter while ScoreEvents carry the actual
// scoring ledger.
type Player struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TournamentID      uuid.UUID  `gorm:"type:uuid;index" json:"-"`
	Name              string     `json:"name"`
	Wins              int        `json:"wins"`
	Points            int        `json:"points"`
	TableID           *uuid.UUID `gorm:"type:uuid" json:"tableId"`
	Position          string     `json:"position,omitempty"`
	LastWinAt         *time.Time `json:"lastWinAt"`
	Eliminated        bool       `json:"eliminated"`
	EliminatedInRound *int       `json:"eliminatedInRound,omitempty"`
	RegisteredAt      time.Time  `json:"registeredAt"`

	// Filled for exports; rows live in their own table.
	ScoreEvents []ScoreEvent `gorm:"-" json:"scoreEvents,omitempty"`
}

// ScoreEvent is one entry in a player's scoring ledger. Deltas are weighted
// by the round's multiplier when scores are computed, never at write time.
type ScoreEvent struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	TournamentID uuid.UUID `gorm:"type:uuid;index" json:"-"`
	PlayerID     uuid.UUID `gorm:"type:uuid;index" json:"-"`
	Delta        int       `json:"delta"`
	RoundNumber  int       `json:"roundNumber"`
	At           time.Time `json:"timestamp"`
}

type Table struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TournamentID uuid.UUID `gorm:"type:uuid;index" json:"-"`
	TableNumber  int       `json:"tableNumber"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Round struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	TournamentID    uuid.UUID   `gorm:"type:uuid;index" json:"-"`
	RoundNumber     int         `json:"roundNumber"`
	Status          RoundStatus `json:"status"`
	ScoreMultiplier int         `json:"scoreMultiplier"`
	StartedAt       time.Time   `json:"startedAt"`
	EndedAt         *time.Time  `json:"endedAt"`
}

// Participant is an immutable snapshot of a player taken when a round
// starts. Round scoring reads seating and baseline wins from here, not
// from the live player row.
type Participant struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"-"`
	TournamentID uuid.UUID  `gorm:"type:uuid;index" json:"-"`
	RoundNumber  int        `gorm:"index" json:"-"`
	PlayerID     uuid.UUID  `gorm:"type:uuid" json:"playerId"`
	Name         string     `json:"name"`
	Wins         int        `json:"wins"`
	Points       int        `json:"points"`
	TableID      *uuid.UUID `gorm:"type:uuid" json:"tableId"`
	Position     string     `json:"position,omitempty"`
	LastWinAt    *time.Time `json:"lastWinAt"`
	SnapshotAt   time.Time  `json:"snapshotAt"`
}
