package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/citrusvanilla/speed-jong/internal/tournament"
)

func CreateTournament(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tournament.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json body", http.StatusBadRequest)
			return
		}
		tour, err := d.Tournaments.Create(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tour)
	}
}

func ListTournaments(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Tournaments.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetTournament(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		tour, err := d.Tournaments.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tour)
	}
}

func DeleteTournament(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		if err := d.Tournaments.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListPlayers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		players, err := d.Tournaments.Players(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

// ImportPlayers takes the roster either as a text/plain body or as a JSON
// {"names": "..."} field, one player per line either way.
func ImportPlayers(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		var text string
		if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
			b, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "failed to read body", http.StatusBadRequest)
				return
			}
			text = string(b)
		} else {
			var req struct {
				Names string `json:"names"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json body", http.StatusBadRequest)
				return
			}
			text = req.Names
		}
		report, err := d.Tournaments.ImportPlayers(r.Context(), id, text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// RecordWin adjusts a player's win count. An empty body means one win,
// matching a tap on the player's row.
func RecordWin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tid, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		pid, ok := pathID(w, r, "playerID")
		if !ok {
			return
		}
		var req struct {
			Delta *int `json:"delta"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "bad json body", http.StatusBadRequest)
			return
		}
		delta := 1
		if req.Delta != nil {
			delta = *req.Delta
		}
		player, err := d.Tournaments.RecordWin(r.Context(), tid, pid, delta)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, player)
	}
}

func EliminatePlayer(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tid, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		pid, ok := pathID(w, r, "playerID")
		if !ok {
			return
		}
		player, err := d.Tournaments.Eliminate(r.Context(), tid, pid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, player)
	}
}

func AutoAssignTables(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		report, err := d.Tournaments.AutoAssignTables(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func StartRound(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		rd, err := d.Tournaments.StartRound(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rd)
	}
}

func EndRound(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		rd, err := d.Tournaments.EndRound(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rd)
	}
}

func SimulateRound(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		report, err := d.Tournaments.SimulateRound(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func Leaderboard(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		standings, err := d.Tournaments.Leaderboard(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, standings)
	}
}

func ExportTournament(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "tournamentID")
		if !ok {
			return
		}
		export, err := d.Tournaments.ExportTournament(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, export)
	}
}

func Stats(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Tournaments.CollectStats(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "bad "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
