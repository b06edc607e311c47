package tournament

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLeaderboard_RanksByWeightedScores(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()
	tour := mustCreate(t, svc, CreateRequest{Name: "League"})
	players := importNames(t, svc, tour.ID, "Amy", "Ben", "Cho", "Dee", "Eli", "Fay", "Gus", "Hal")
	seat(t, store, tour, players)

	_, err := svc.StartRound(ctx, tour.ID)
	require.NoError(t, err)

	// Amy takes two wins, then Ben and Eli one each, Eli's later.
	_, err = svc.RecordWin(ctx, tour.ID, players[0].ID, 2)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.RecordWin(ctx, tour.ID, players[1].ID, 1)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.RecordWin(ctx, tour.ID, players[4].ID, 1)
	require.NoError(t, err)

	_, err = svc.EndRound(ctx, tour.ID)
	require.NoError(t, err)

	// Double the weight of round 1 after the fact.
	rounds, err := store.ListRounds(ctx, tour.ID)
	require.NoError(t, err)
	rounds[0].ScoreMultiplier = 2
	require.NoError(t, store.SaveRound(ctx, &rounds[0]))

	standings, err := svc.Leaderboard(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, standings, 8)

	names := make([]string, len(standings))
	for i, row := range standings {
		names[i] = row.Name
		require.Equal(t, i+1, row.Rank)
	}
	// Amy leads on tournament score. Ben and Eli tie on both scores, so
	// Eli's more recent win decides. The scoreless players order by their
	// table's round total (Amy's table earned 6, Eli's 2), then by name.
	require.Equal(t, []string{"Amy", "Eli", "Ben", "Cho", "Dee", "Fay", "Gus", "Hal"}, names)

	amy := standings[0]
	require.Equal(t, 4, amy.TournamentScore)
	require.Equal(t, 4, amy.RoundScore)
	require.Equal(t, 6, amy.TableRoundScore)
	require.Equal(t, 2, amy.Wins)
	require.Equal(t, 2, amy.RoundWins)

	eli := standings[1]
	require.Equal(t, 2, eli.TournamentScore)
	require.Equal(t, 2, eli.TableRoundScore)

	cho := standings[3]
	require.Zero(t, cho.TournamentScore)
	require.Equal(t, 6, cho.TableRoundScore)
}

func TestLeaderboard_ReferencesRoundInProgress(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()
	tour := mustCreate(t, svc, CreateRequest{Name: "League"})
	players := importNames(t, svc, tour.ID, "Amy", "Ben", "Cho", "Dee")
	seat(t, store, tour, players)

	_, err := svc.StartRound(ctx, tour.ID)
	require.NoError(t, err)
	_, err = svc.RecordWin(ctx, tour.ID, players[0].ID, 2)
	require.NoError(t, err)
	_, err = svc.EndRound(ctx, tour.ID)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = svc.StartRound(ctx, tour.ID)
	require.NoError(t, err)
	_, err = svc.RecordWin(ctx, tour.ID, players[2].ID, 1)
	require.NoError(t, err)

	standings, err := svc.Leaderboard(ctx, tour.ID)
	require.NoError(t, err)
	require.Equal(t, "Amy", standings[0].Name)
	require.Equal(t, 2, standings[0].TournamentScore)
	// Round figures describe round 2, where Amy has done nothing yet.
	require.Zero(t, standings[0].RoundScore)
	require.Zero(t, standings[0].RoundWins)

	require.Equal(t, "Cho", standings[1].Name)
	require.Equal(t, 1, standings[1].RoundScore)
	require.Equal(t, 1, standings[1].RoundWins)
}

func TestLeaderboard_ExcludesEliminated(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	tour := mustCreate(t, svc, CreateRequest{Name: "League"})
	players := importNames(t, svc, tour.ID, "Amy", "Ben", "Cho", "Dee")

	_, err := svc.Eliminate(ctx, tour.ID, players[3].ID)
	require.NoError(t, err)

	standings, err := svc.Leaderboard(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	for _, row := range standings {
		require.NotEqual(t, "Dee", row.Name)
	}
}

func TestExportTournament_EmbedsLedgersAndParticipants(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()
	tour := mustCreate(t, svc, CreateRequest{Name: "League"})
	players := importNames(t, svc, tour.ID, "Amy", "Ben", "Cho", "Dee")
	seat(t, store, tour, players)

	_, err := svc.StartRound(ctx, tour.ID)
	require.NoError(t, err)
	_, err = svc.RecordWin(ctx, tour.ID, players[0].ID, 1)
	require.NoError(t, err)
	_, err = svc.EndRound(ctx, tour.ID)
	require.NoError(t, err)

	export, err := svc.ExportTournament(ctx, tour.ID)
	require.NoError(t, err)
	require.Equal(t, "1.0", export.ExportVersion)
	require.Equal(t, tour.ID, export.TournamentID)
	require.Equal(t, clock.Now(), export.ExportedAt)
	require.Len(t, export.Players, 4)
	require.Len(t, export.Tables, 1)
	require.Len(t, export.Rounds, 1)
	require.Len(t, export.Rounds[0].Participants, 4)
	require.Len(t, export.Tables[0].Players, 4)
	require.Len(t, export.Tables[0].Positions, 4)

	withLedger := 0
	for _, p := range export.Players {
		if len(p.ScoreEvents) > 0 {
			withLedger++
			require.Equal(t, 1, p.ScoreEvents[0].Delta)
		}
	}
	require.Equal(t, 1, withLedger)
}

func TestCollectStats_TalliesAcrossTournaments(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	busy := mustCreate(t, svc, CreateRequest{Name: "Busy"})
	players := importNames(t, svc, busy.ID, "A", "B", "C", "D")
	seat(t, store, busy, players)
	_, err := svc.StartRound(ctx, busy.ID)
	require.NoError(t, err)

	idle := mustCreate(t, svc, CreateRequest{Name: "Idle"})

	stats, err := svc.CollectStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalTournaments)
	require.Equal(t, 4, stats.TotalPlayers)
	require.Equal(t, 1, stats.TotalTables)
	require.Equal(t, 1, stats.TotalRounds)
	require.Equal(t, 4, stats.TotalParticipants)

	byName := make(map[string]TournamentStats)
	for _, row := range stats.Tournaments {
		byName[row.Name] = row
	}
	require.Equal(t, 4, byName["Busy"].Players)
	require.Equal(t, StatusActive, byName["Busy"].Status)
	require.Zero(t, byName["Idle"].Players)
	require.Equal(t, idle.Status, byName["Idle"].Status)
}
