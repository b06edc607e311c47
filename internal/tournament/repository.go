package tournament

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository implements tournament data access over gorm.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the tournament tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&Tournament{},
		&Player{},
		&Table{},
		&Round{},
		&Participant{},
		&ScoreEvent{},
	)
}

func (r *Repository) CreateTournament(ctx context.Context, t *Tournament) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *Repository) GetTournament(ctx context.Context, id uuid.UUID) (*Tournament, error) {
	var t Tournament
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return &t, nil
}

func (r *Repository) ListTournaments(ctx context.Context) ([]Tournament, error) {
	var ts []Tournament
	if err := r.db.WithContext(ctx).Order("created_at").Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return ts, nil
}

func (r *Repository) SaveTournament(ctx context.Context, t *Tournament) error {
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("failed to save tournament: %w", err)
	}
	return nil
}

// DeleteTournament removes the tournament and everything hanging off it.
func (r *Repository) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&ScoreEvent{}, &Participant{}, &Round{}, &Table{}, &Player{},
		} {
			if err := tx.Where("tournament_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&Tournament{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	return nil
}

func (r *Repository) CreatePlayers(ctx context.Context, players []Player) error {
	if err := r.db.WithContext(ctx).Create(&players).Error; err != nil {
		return fmt.Errorf("failed to create players: %w", err)
	}
	return nil
}

func (r *Repository) ListPlayers(ctx context.Context, tournamentID uuid.UUID) ([]Player, error) {
	var players []Player
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("registered_at, name").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (r *Repository) GetPlayer(ctx context.Context, tournamentID, playerID uuid.UUID) (*Player, error) {
	var p Player
	err := r.db.WithContext(ctx).
		First(&p, "tournament_id = ? AND id = ?", tournamentID, playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

func (r *Repository) SavePlayer(ctx context.Context, p *Player) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

func (r *Repository) CreateTable(ctx context.Context, tb *Table) error {
	if err := r.db.WithContext(ctx).Create(tb).Error; err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (r *Repository) ListTables(ctx context.Context, tournamentID uuid.UUID) ([]Table, error) {
	var tables []Table
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("table_number").
		Find(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (r *Repository) CreateRound(ctx context.Context, rd *Round) error {
	if err := r.db.WithContext(ctx).Create(rd).Error; err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

func (r *Repository) ListRounds(ctx context.Context, tournamentID uuid.UUID) ([]Round, error) {
	var rounds []Round
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("round_number").
		Find(&rounds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

func (r *Repository) SaveRound(ctx context.Context, rd *Round) error {
	if err := r.db.WithContext(ctx).Save(rd).Error; err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

func (r *Repository) CreateParticipants(ctx context.Context, ps []Participant) error {
	if err := r.db.WithContext(ctx).Create(&ps).Error; err != nil {
		return fmt.Errorf("failed to create participants: %w", err)
	}
	return nil
}

func (r *Repository) ListParticipants(ctx context.Context, tournamentID uuid.UUID, roundNumber int) ([]Participant, error) {
	var ps []Participant
	err := r.db.WithContext(ctx).
		Where("tournament_id = ? AND round_number = ?", tournamentID, roundNumber).
		Order("snapshot_at, name").
		Find(&ps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return ps, nil
}

func (r *Repository) CreateScoreEvent(ctx context.Context, ev *ScoreEvent) error {
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("failed to create score event: %w", err)
	}
	return nil
}

func (r *Repository) ListScoreEvents(ctx context.Context, tournamentID uuid.UUID) ([]ScoreEvent, error) {
	var evs []ScoreEvent
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("at").
		Find(&evs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list score events: %w", err)
	}
	return evs, nil
}

func (r *Repository) ListPlayerScoreEvents(ctx context.Context, playerID uuid.UUID) ([]ScoreEvent, error) {
	var evs []ScoreEvent
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("at").
		Find(&evs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list score events: %w", err)
	}
	return evs, nil
}
