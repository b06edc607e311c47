package tournament

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Standing is one leaderboard row. RoundWins is the player's win count
// since the reference round's snapshot was taken.
type Standing struct {
	Rank            int        `json:"rank"`
	PlayerID        uuid.UUID  `json:"playerId"`
	Name            string     `json:"name"`
	Wins            int        `json:"wins"`
	RoundWins       int        `json:"roundWins"`
	TournamentScore int        `json:"tournamentScore"`
	RoundScore      int        `json:"roundScore"`
	TableRoundScore int        `json:"tableRoundScore"`
	LastWinAt       *time.Time `json:"lastWinAt"`
}

// Leaderboard ranks active players. Every score event is weighted by its
// round's multiplier; per-round figures reference the round in progress,
// or the last completed one between rounds. Ties break by round score,
// then most recent win, then the combined round score of the player's
// table, then name.
func (s *Service) Leaderboard(ctx context.Context, tournamentID uuid.UUID) ([]Standing, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	players, err := s.store.ListPlayers(ctx, tournamentID)
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

	mult := multipliers(rounds)
	ref := referenceRound(t, rounds)

	byPlayer := make(map[uuid.UUID][]ScoreEvent)
	for _, ev := range events {
		byPlayer[ev.PlayerID] = append(byPlayer[ev.PlayerID], ev)
	}
	roundScore := func(playerID uuid.UUID) int {
		total := 0
		for _, ev := range byPlayer[playerID] {
			if ev.RoundNumber == ref {
				total += ev.Delta * mult.at(ref)
			}
		}
		return total
	}

	// Seating and baseline wins come from the reference round's snapshots,
	// so table scores survive players being reseated or eliminated later.
	var parts []Participant
	if ref > 0 {
		parts, err = s.store.ListParticipants(ctx, tournamentID, ref)
		if err != nil {
			return nil, err
		}
	}
	tableOf := make(map[uuid.UUID]uuid.UUID)
	snapshotWins := make(map[uuid.UUID]int, len(parts))
	tableScore := make(map[uuid.UUID]int)
	for _, part := range parts {
		snapshotWins[part.PlayerID] = part.Wins
		if part.TableID != nil {
			tableOf[part.PlayerID] = *part.TableID
			tableScore[*part.TableID] += roundScore(part.PlayerID)
		}
	}

	standings := make([]Standing, 0, len(players))
	for _, p := range players {
		if p.Eliminated {
			continue
		}
		row := Standing{
			PlayerID:  p.ID,
			Name:      p.Name,
			Wins:      p.Wins,
			LastWinAt: p.LastWinAt,
		}
		for _, ev := range byPlayer[p.ID] {
			row.TournamentScore += ev.Delta * mult.at(ev.RoundNumber)
		}
		row.RoundScore = roundScore(p.ID)
		if tableID, ok := tableOf[p.ID]; ok {
			row.TableRoundScore = tableScore[tableID]
		}
		if base, ok := snapshotWins[p.ID]; ok {
			row.RoundWins = p.Wins - base
		}
		standings = append(standings, row)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TournamentScore != b.TournamentScore {
			return a.TournamentScore > b.TournamentScore
		}
		if a.RoundScore != b.RoundScore {
			return a.RoundScore > b.RoundScore
		}
		if aw, bw := winStamp(a.LastWinAt), winStamp(b.LastWinAt); aw != bw {
			return aw > bw
		}
		if a.TableRoundScore != b.TableRoundScore {
			return a.TableRoundScore > b.TableRoundScore
		}
		return a.Name < b.Name
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

// referenceRound picks which round the per-round figures describe.
func referenceRound(t *Tournament, rounds []Round) int {
	if t.RoundInProgress {
		return t.CurrentRound
	}
	last := 0
	for _, rd := range rounds {
		if rd.Status == RoundCompleted && rd.RoundNumber > last {
			last = rd.RoundNumber
		}
	}
	return last
}

type multiplierTable map[int]int

func multipliers(rounds []Round) multiplierTable {
	m := make(multiplierTable, len(rounds))
	for _, rd := range rounds {
		m[rd.RoundNumber] = rd.ScoreMultiplier
	}
	return m
}

// at treats unknown rounds and an unset multiplier as weight 1.
func (m multiplierTable) at(round int) int {
	mult, ok := m[round]
	if !ok || mult == 0 {
		return 1
	}
	return mult
}

func winStamp(at *time.Time) int64 {
	if at == nil {
		return 0
	}
	return at.UnixNano()
}
