// Package httpapi exposes the REST surface: room creation, cue audio,
// shared settings and the tournament workflows. Realtime traffic goes
// through the websocket handler it mounts at /ws.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/citrusvanilla/speed-jong/internal/hub"
	"github.com/citrusvanilla/speed-jong/internal/settings"
	"github.com/citrusvanilla/speed-jong/internal/tournament"
	"github.com/citrusvanilla/speed-jong/internal/ws"
)

// TournamentService is the slice of the tournament service the HTTP
// surface uses.
type TournamentService interface {
	Create(ctx context.Context, req tournament.CreateRequest) (*tournament.Tournament, error)
	Get(ctx context.Context, id uuid.UUID) (*tournament.Tournament, error)
	List(ctx context.Context) ([]tournament.Tournament, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Players(ctx context.Context, tournamentID uuid.UUID) ([]tournament.Player, error)
	ImportPlayers(ctx context.Context, tournamentID uuid.UUID, text string) (*tournament.ImportReport, error)
	AutoAssignTables(ctx context.Context, tournamentID uuid.UUID) (*tournament.AssignReport, error)
	StartRound(ctx context.Context, tournamentID uuid.UUID) (*tournament.Round, error)
	EndRound(ctx context.Context, tournamentID uuid.UUID) (*tournament.Round, error)
	RecordWin(ctx context.Context, tournamentID, playerID uuid.UUID, delta int) (*tournament.Player, error)
	Eliminate(ctx context.Context, tournamentID, playerID uuid.UUID) (*tournament.Player, error)
	SimulateRound(ctx context.Context, tournamentID uuid.UUID) (*tournament.SimulationReport, error)
	Leaderboard(ctx context.Context, tournamentID uuid.UUID) ([]tournament.Standing, error)
	ExportTournament(ctx context.Context, tournamentID uuid.UUID) (*tournament.Export, error)
	CollectStats(ctx context.Context) (*tournament.Stats, error)
}

var _ TournamentService = (*tournament.Service)(nil)

// SettingsStore reads and writes the shared timer defaults.
type SettingsStore interface {
	Timer(ctx context.Context) (settings.TimerSettings, error)
	SaveTimer(ctx context.Context, ts settings.TimerSettings) (settings.TimerSettings, error)
}

var _ SettingsStore = (*settings.Store)(nil)

type Deps struct {
	Hub         *hub.Hub
	Tournaments TournamentService
	Settings    SettingsStore
	Log         *zap.Logger
	CORSOrigins []string
}

func SetupRoutes(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(d))
	r.Get("/ws", ws.Handler(d.Hub, d.Log))
	r.Get("/healthz", Healthz)
	r.Get("/cues/{cue}.wav", CueWAV())
	r.Get("/settings", GetSettings(d))
	r.Put("/settings", PutSettings(d))
	r.Get("/stats", Stats(d))

	r.Route("/tournaments", func(r chi.Router) {
		r.Post("/", CreateTournament(d))
		r.Get("/", ListTournaments(d))
		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", GetTournament(d))
			r.Delete("/", DeleteTournament(d))
			r.Get("/players", ListPlayers(d))
			r.Post("/players/import", ImportPlayers(d))
			r.Post("/players/{playerID}/wins", RecordWin(d))
			r.Post("/players/{playerID}/eliminate", EliminatePlayer(d))
			r.Post("/tables/auto-assign", AutoAssignTables(d))
			r.Post("/rounds/start", StartRound(d))
			r.Post("/rounds/end", EndRound(d))
			r.Post("/rounds/simulate", SimulateRound(d))
			r.Get("/leaderboard", Leaderboard(d))
			r.Get("/export", ExportTournament(d))
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}
