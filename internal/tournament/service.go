package tournament

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/citrusvanilla/speed-jong/internal/engine"
)

var (
	ErrInvalid             = errors.New("invalid request")
	ErrNotFound            = errors.New("tournament not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrRoundInProgress     = errors.New("round already in progress")
	ErrNoRoundInProgress   = errors.New("no round in progress")
	ErrPlayerCount         = errors.New("active players must be a positive multiple of 4")
	ErrRegistrationFull    = errors.New("registration is full")
	ErrNotEnoughUnassigned = errors.New("need at least four unassigned players")
)

// Store defines what the service needs from storage. Repository is the
// gorm implementation; tests substitute an in-memory fake.
type Store interface {
	CreateTournament(ctx context.Context, t *Tournament) error
	GetTournament(ctx context.Context, id uuid.UUID) (*Tournament, error)
	ListTournaments(ctx context.Context) ([]Tournament, error)
	SaveTournament(ctx context.Context, t *Tournament) error
	DeleteTournament(ctx context.Context, id uuid.UUID) error

	CreatePlayers(ctx context.Context, players []Player) error
	ListPlayers(ctx context.Context, tournamentID uuid.UUID) ([]Player, error)
	GetPlayer(ctx context.Context, tournamentID, playerID uuid.UUID) (*Player, error)
	SavePlayer(ctx context.Context, p *Player) error

	CreateTable(ctx context.Context, tb *Table) error
	ListTables(ctx context.Context, tournamentID uuid.UUID) ([]Table, error)

	CreateRound(ctx context.Context, rd *Round) error
	ListRounds(ctx context.Context, tournamentID uuid.UUID) ([]Round, error)
	SaveRound(ctx context.Context, rd *Round) error

	CreateParticipants(ctx context.Context, ps []Participant) error
	ListParticipants(ctx context.Context, tournamentID uuid.UUID, roundNumber int) ([]Participant, error)

	CreateScoreEvent(ctx context.Context, ev *ScoreEvent) error
	ListScoreEvents(ctx context.Context, tournamentID uuid.UUID) ([]ScoreEvent, error)
	ListPlayerScoreEvents(ctx context.Context, playerID uuid.UUID) ([]ScoreEvent, error)
}

type Options struct {
	Clock clockwork.Clock
	Rand  *rand.Rand
	Log   *zap.Logger
}

// Service implements the operator workflows on top of a Store. The clock
// and rand source are injectable so seating and simulations are
// reproducible in tests.
type Service struct {
	store Store
	clock clockwork.Clock
	rand  *rand.Rand
	log   *zap.Logger
}

func NewService(store Store, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Service{store: store, clock: opts.Clock, rand: opts.Rand, log: opts.Log}
}

type CreateRequest struct {
	Name          string `json:"name"`
	Type          Type   `json:"type"`
	TimerDuration int    `json:"timerDuration"`
	MaxPlayers    int    `json:"maxPlayers"`
	TotalRounds   int    `json:"totalRounds"`
}

// Create registers a new tournament in staging. The timer duration runs
// through the countdown clamp so rooms created for the tournament always
// get a legal value.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Tournament, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrInvalid)
	}
	typ := req.Type
	if typ == "" {
		typ = TypeStandard
	}
	if typ != TypeStandard && typ != TypeCutline {
		return nil, fmt.Errorf("%w: unknown tournament type %q", ErrInvalid, req.Type)
	}
	if typ == TypeCutline && req.TotalRounds <= 0 {
		return nil, fmt.Errorf("%w: cutline tournaments need totalRounds > 0", ErrInvalid)
	}
	if req.MaxPlayers < 0 {
		return nil, fmt.Errorf("%w: maxPlayers cannot be negative", ErrInvalid)
	}
	duration := req.TimerDuration
	if duration == 0 {
		duration = engine.DefaultDurationSeconds
	}

	t := &Tournament{
		ID:            uuid.New(),
		Name:          name,
		Type:          typ,
		Status:        StatusStaging,
		TimerDuration: engine.ClampDuration(duration),
		MaxPlayers:    req.MaxPlayers,
		TotalRounds:   req.TotalRounds,
		RoomCode:      s.roomCode(),
		CreatedAt:     s.clock.Now(),
	}
	if err := s.store.CreateTournament(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("tournament created",
		zap.String("id", t.ID.String()),
		zap.String("name", t.Name),
		zap.String("room", t.RoomCode))
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Tournament, error) {
	return s.store.GetTournament(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Tournament, error) {
	return s.store.ListTournaments(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteTournament(ctx, id); err != nil {
		return err
	}
	s.log.Info("tournament deleted", zap.String("id", id.String()))
	return nil
}

func (s *Service) Players(ctx context.Context, tournamentID uuid.UUID) ([]Player, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.store.ListPlayers(ctx, tournamentID)
}

// ImportReport says what a bulk import did. Overflow names were valid but
// rejected by the tournament's player cap.
type ImportReport struct {
	Created    []Player `json:"created"`
	Duplicates []string `json:"duplicates"`
	Overflow   []string `json:"overflow"`
}

// ImportPlayers registers one player per non-blank line of text. Names are
// deduplicated case-insensitively, both within the submission and against
// players already registered; the first spelling wins.
func (s *Service) ImportPlayers(ctx context.Context, tournamentID uuid.UUID, text string) (*ImportReport, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[strings.ToLower(p.Name)] = true
	}

	report := &ImportReport{}
	var fresh []string
	for _, line := range strings.Split(text, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if taken[key] {
			report.Duplicates = append(report.Duplicates, name)
			continue
		}
		taken[key] = true
		fresh = append(fresh, name)
	}

	if t.MaxPlayers > 0 {
		available := t.MaxPlayers - len(existing)
		if available <= 0 {
			return nil, ErrRegistrationFull
		}
		if len(fresh) > available {
			report.Overflow = fresh[available:]
			fresh = fresh[:available]
		}
	}

	now := s.clock.Now()
	players := make([]Player, 0, len(fresh))
	for _, name := range fresh {
		players = append(players, Player{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         name,
			RegisteredAt: now,
		})
	}
	if len(players) > 0 {
		if err := s.store.CreatePlayers(ctx, players); err != nil {
			return nil, err
		}
	}
	report.Created = players
	return report, nil
}

// AssignReport lists the tables created by auto-assignment and the players
// left over when the unassigned pool is not a multiple of four.
type AssignReport struct {
	Tables   []Table  `json:"tables"`
	Seated   int      `json:"seated"`
	LeftOver []string `json:"leftOver"`
}

// AutoAssignTables seats unassigned active players four to a table in
// random order. Winds are dealt East, South, West, North; table numbers
// continue from the highest existing table. A remainder smaller than a
// full table stays unassigned.
func (s *Service) AutoAssignTables(ctx context.Context, tournamentID uuid.UUID) (*AssignReport, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	players, err := s.store.ListPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	var pool []Player
	for _, p := range players {
		if p.TableID == nil && !p.Eliminated {
			pool = append(pool, p)
		}
	}
	if len(pool) < 4 {
		return nil, ErrNotEnoughUnassigned
	}
	s.rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	tables, err := s.store.ListTables(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	next := 1
	for _, tb := range tables {
		if tb.TableNumber >= next {
			next = tb.TableNumber + 1
		}
	}

	report := &AssignReport{}
	now := s.clock.Now()
	for len(pool) >= 4 {
		group := pool[:4]
		pool = pool[4:]

		tb := Table{ID: uuid.New(), TournamentID: tournamentID, TableNumber: next, CreatedAt: now}
		next++
		if err := s.store.CreateTable(ctx, &tb); err != nil {
			return nil, err
		}
		for i := range group {
			group[i].TableID = &tb.ID
			group[i].Position = Winds[i]
			if err := s.store.SavePlayer(ctx, &group[i]); err != nil {
				return nil, err
			}
		}
		report.Tables = append(report.Tables, tb)
		report.Seated += 4
	}
	for _, p := range pool {
		report.LeftOver = append(report.LeftOver, p.Name)
	}
	return report, nil
}

// StartRound opens the next round: it snapshots every active player as a
// participant and bumps the tournament's round counter. Active players
// must fill tables exactly.
func (s *Service) StartRound(ctx context.Context, tournamentID uuid.UUID) (*Round, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.RoundInProgress {
		return nil, ErrRoundInProgress
	}
	players, err := s.store.ListPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	var active []Player
	for _, p := range players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	if len(active) == 0 || len(active)%4 != 0 {
		return nil, ErrPlayerCount
	}

	now := s.clock.Now()
	rd := &Round{
		ID:              uuid.New(),
		TournamentID:    tournamentID,
		RoundNumber:     t.CurrentRound + 1,
		Status:          RoundInProgress,
		ScoreMultiplier: 1,
		StartedAt:       now,
	}
	if err := s.store.CreateRound(ctx, rd); err != nil {
		return nil, err
	}

	parts := make([]Participant, 0, len(active))
	for _, p := range active {
		parts = append(parts, Participant{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			RoundNumber:  rd.RoundNumber,
			PlayerID:     p.ID,
			Name:         p.Name,
			Wins:         p.Wins,
			Points:       p.Points,
			TableID:      p.TableID,
			Position:     p.Position,
			LastWinAt:    p.LastWinAt,
			SnapshotAt:   now,
		})
	}
	if err := s.store.CreateParticipants(ctx, parts); err != nil {
		return nil, err
	}

	t.CurrentRound = rd.RoundNumber
	t.RoundInProgress = true
	if t.Status == StatusStaging {
		t.Status = StatusActive
	}
	if err := s.store.SaveTournament(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("round started",
		zap.String("tournament", t.ID.String()),
		zap.Int("round", rd.RoundNumber),
		zap.Int("participants", len(parts)))
	return rd, nil
}

// EndRound completes the round in progress. A tournament with a fixed
// round count closes for good when its final round ends.
func (s *Service) EndRound(ctx context.Context, tournamentID uuid.UUID) (*Round, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !t.RoundInProgress {
		return nil, ErrNoRoundInProgress
	}
	rounds, err := s.store.ListRounds(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	var current *Round
	for i := range rounds {
		if rounds[i].RoundNumber == t.CurrentRound {
			current = &rounds[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("round %d has no record", t.CurrentRound)
	}

	now := s.clock.Now()
	current.Status = RoundCompleted
	current.EndedAt = &now
	if err := s.store.SaveRound(ctx, current); err != nil {
		return nil, err
	}

	t.RoundInProgress = false
	if t.TotalRounds > 0 && t.CurrentRound >= t.TotalRounds {
		t.Status = StatusCompleted
	}
	if err := s.store.SaveTournament(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("round ended",
		zap.String("tournament", t.ID.String()),
		zap.Int("round", current.RoundNumber))
	return current, nil
}

// RecordWin adjusts a player's win count by delta, floored at zero, and
// appends the applied delta to the scoring ledger. lastWinAt moves only
// for positive deltas.
func (s *Service) RecordWin(ctx context.Context, tournamentID, playerID uuid.UUID, delta int) (*Player, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	wins := p.Wins + delta
	if wins < 0 {
		wins = 0
	}
	applied := wins - p.Wins
	p.Wins = wins
	if delta > 0 {
		p.LastWinAt = &now
	}
	if applied != 0 {
		ev := &ScoreEvent{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			PlayerID:     playerID,
			Delta:        applied,
			RoundNumber:  t.CurrentRound,
			At:           now,
		}
		if err := s.store.CreateScoreEvent(ctx, ev); err != nil {
			return nil, err
		}
	}

	points, err := s.playerPoints(ctx, t, playerID)
	if err != nil {
		return nil, err
	}
	p.Points = points
	if err := s.store.SavePlayer(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Eliminate marks a player out of the tournament and releases their seat
// so auto-assignment can refill it. Eliminating twice is a no-op.
func (s *Service) Eliminate(ctx context.Context, tournamentID, playerID uuid.UUID) (*Player, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return nil, err
	}
	if p.Eliminated {
		return p, nil
	}
	round := t.CurrentRound
	p.Eliminated = true
	p.EliminatedInRound = &round
	p.TableID = nil
	p.Position = ""
	if err := s.store.SavePlayer(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SimulationReport summarizes the random games dealt to each full table.
type SimulationReport struct {
	Round      int          `json:"round"`
	TotalGames int          `json:"totalGames"`
	Tables     []TableGames `json:"tables"`
}

type TableGames struct {
	TableNumber int `json:"tableNumber"`
	Games       int `json:"games"`
}

// SimulateRound deals 4 to 6 random games to every fully seated table of
// the round in progress, with win timestamps spread over the preceding
// hour. Participant snapshots are left untouched.
func (s *Service) SimulateRound(ctx context.Context, tournamentID uuid.UUID) (*SimulationReport, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.CurrentRound == 0 || !t.RoundInProgress {
		return nil, ErrNoRoundInProgress
	}
	players, err := s.store.ListPlayers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	tables, err := s.store.ListTables(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	seats := make(map[uuid.UUID][]*Player)
	for i := range players {
		if players[i].TableID != nil {
			seats[*players[i].TableID] = append(seats[*players[i].TableID], &players[i])
		}
	}

	report := &SimulationReport{Round: t.CurrentRound}
	winners := make(map[uuid.UUID]*Player)
	base := s.clock.Now().Add(-time.Hour)
	for _, tb := range tables {
		seated := seats[tb.ID]
		if len(seated) != 4 {
			continue
		}
		games := 4 + s.rand.Intn(3)
		at := base
		for g := 0; g < games; g++ {
			at = at.Add(time.Duration(3+s.rand.Intn(6)) * time.Minute)
			winner := seated[s.rand.Intn(4)]
			winner.Wins++
			stamp := at
			winner.LastWinAt = &stamp
			winners[winner.ID] = winner

			ev := &ScoreEvent{
				ID:           uuid.New(),
				TournamentID: t.ID,
				PlayerID:     winner.ID,
				Delta:        1,
				RoundNumber:  t.CurrentRound,
				At:           at,
			}
			if err := s.store.CreateScoreEvent(ctx, ev); err != nil {
				return nil, err
			}
		}
		report.Tables = append(report.Tables, TableGames{TableNumber: tb.TableNumber, Games: games})
		report.TotalGames += games
	}

	if len(winners) > 0 {
		rounds, err := s.store.ListRounds(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		events, err := s.store.ListScoreEvents(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		mult := multipliers(rounds)
		points := make(map[uuid.UUID]int)
		for _, ev := range events {
			points[ev.PlayerID] += ev.Delta * mult.at(ev.RoundNumber)
		}
		for id, p := range winners {
			p.Points = points[id]
			if err := s.store.SavePlayer(ctx, p); err != nil {
				return nil, err
			}
		}
	}
	s.log.Info("round simulated",
		zap.String("tournament", t.ID.String()),
		zap.Int("round", t.CurrentRound),
		zap.Int("games", report.TotalGames))
	return report, nil
}

// playerPoints recomputes the multiplier-weighted sum of one player's
// ledger.
func (s *Service) playerPoints(ctx context.Context, t *Tournament, playerID uuid.UUID) (int, error) {
	events, err := s.store.ListPlayerScoreEvents(ctx, playerID)
	if err != nil {
		return 0, err
	}
	rounds, err := s.store.ListRounds(ctx, t.ID)
	if err != nil {
		return 0, err
	}
	mult := multipliers(rounds)
	total := 0
	for _, ev := range events {
		total += ev.Delta * mult.at(ev.RoundNumber)
	}
	return total, nil
}

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (s *Service) roomCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = codeCharset[s.rand.Intn(len(codeCharset))]
	}
	return string(code)
}
