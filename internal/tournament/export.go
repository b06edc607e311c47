package tournament

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const exportVersion = "1.0"

// Export is the full backup document for one tournament. Players carry
// their score ledgers inline and rounds carry their participant snapshots,
// so the document restores without joins.
type Export struct {
	ExportVersion string        `json:"export_version"`
	ExportedAt    time.Time     `json:"exported_at"`
	TournamentID  uuid.UUID     `json:"tournament_id"`
	Tournament    Tournament    `json:"tournament"`
	Players       []Player      `json:"players"`
	Tables        []TableExport `json:"tables"`
	Rounds        []RoundExport `json:"rounds"`
}

// TableExport adds the seating arrays the wire format wants alongside the
// table row. Positions maps player ID to wind.
type TableExport struct {
	Table
	Players   []uuid.UUID       `json:"players"`
	Positions map[string]string `json:"positions"`
}

type RoundExport struct {
	Round
	Participants []Participant `json:"participants"`
}

func (s *Service) ExportTournament(ctx context.Context, tournamentID uuid.UUID) (*Export, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	players, err := s.store.ListPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	tables, err := s.store.ListTables(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.store.ListRounds(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListScoreEvents(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[uuid.UUID][]ScoreEvent)
	for _, ev := range events {
		byPlayer[ev.PlayerID] = append(byPlayer[ev.PlayerID], ev)
	}
	for i := range players {
		players[i].ScoreEvents = byPlayer[players[i].ID]
	}

	tablesOut := make([]TableExport, 0, len(tables))
	for _, tb := range tables {
		te := TableExport{Table: tb, Positions: make(map[string]string)}
		for _, p := range players {
			if p.TableID != nil && *p.TableID == tb.ID {
				te.Players = append(te.Players, p.ID)
				te.Positions[p.ID.String()] = p.Position
			}
		}
		tablesOut = append(tablesOut, te)
	}

	roundsOut := make([]RoundExport, 0, len(rounds))
	for _, rd := range rounds {
		parts, err := s.store.ListParticipants(ctx, tournamentID, rd.RoundNumber)
		if err != nil {
			return nil, err
		}
		roundsOut = append(roundsOut, RoundExport{Round: rd, Participants: parts})
	}

	return &Export{
		ExportVersion: exportVersion,
		ExportedAt:    s.clock.Now(),
		TournamentID:  t.ID,
		Tournament:    *t,
		Players:       players,
		Tables:        tablesOut,
		Rounds:        roundsOut,
	}, nil
}

// TournamentStats counts one tournament's records.
type TournamentStats struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Status       Status    `json:"status"`
	Players      int       `json:"players"`
	Tables       int       `json:"tables"`
	Rounds       int       `json:"rounds"`
	Participants int       `json:"participants"`
}

type Stats struct {
	Tournaments       []TournamentStats `json:"tournaments"`
	TotalTournaments  int               `json:"totalTournaments"`
	TotalPlayers      int               `json:"totalPlayers"`
	TotalTables       int               `json:"totalTables"`
	TotalRounds       int               `json:"totalRounds"`
	TotalParticipants int               `json:"totalParticipants"`
}

// CollectStats tallies record counts across every tournament.
func (s *Service) CollectStats(ctx context.Context) (*Stats, error) {
	ts, err := s.store.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}

	out := &Stats{TotalTournaments: len(ts)}
	for _, t := range ts {
		players, err := s.store.ListPlayers(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		tables, err := s.store.ListTables(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		rounds, err := s.store.ListRounds(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		row := TournamentStats{
			ID:      t.ID,
			Name:    t.Name,
			Status:  t.Status,
			Players: len(players),
			Tables:  len(tables),
			Rounds:  len(rounds),
		}
		for _, rd := range rounds {
			parts, err := s.store.ListParticipants(ctx, t.ID, rd.RoundNumber)
			if err != nil {
				return nil, err
			}
			row.Participants += len(parts)
		}
		out.Tournaments = append(out.Tournaments, row)
		out.TotalPlayers += row.Players
		out.TotalTables += row.Tables
		out.TotalRounds += row.Rounds
		out.TotalParticipants += row.Participants
	}
	return out, nil
}
