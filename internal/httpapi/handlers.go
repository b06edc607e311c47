package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citrusvanilla/speed-jong/internal/audio"
	"github.com/citrusvanilla/speed-jong/internal/engine"
	"github.com/citrusvanilla/speed-jong/internal/hub"
	"github.com/citrusvanilla/speed-jong/internal/room"
	"github.com/citrusvanilla/speed-jong/internal/settings"
	"github.com/citrusvanilla/speed-jong/internal/tournament"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createRoomRequest struct {
	TournamentID    string             `json:"tournament_id"`
	DurationSeconds int                `json:"duration_seconds"`
	Sounds          *engine.SoundPrefs `json:"sounds"`
}

// CreateRoom opens a timer room and answers with its join code. The
// countdown duration resolves explicit body value first, then the named
// tournament's setting, then the stored defaults. Rooms for a tournament
// reuse its fixed code so every table lands in the same room.
func CreateRoom(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// An empty body is a plain "give me a room with the defaults".
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "bad json body", http.StatusBadRequest)
			return
		}

		stored, err := d.Settings.Timer(r.Context())
		if err != nil {
			d.Log.Warn("settings unavailable, using defaults", zap.Error(err))
		}
		duration := stored.DurationSeconds
		sounds := stored.Sounds

		var code string
		if req.TournamentID != "" {
			id, perr := uuid.Parse(req.TournamentID)
			if perr != nil {
				http.Error(w, "bad tournament id", http.StatusBadRequest)
				return
			}
			tour, terr := d.Tournaments.Get(r.Context(), id)
			if terr != nil {
				writeError(w, terr)
				return
			}
			code = tour.RoomCode
			duration = tour.TimerDuration
		}
		if req.DurationSeconds > 0 {
			duration = req.DurationSeconds
		}
		if req.Sounds != nil {
			sounds = *req.Sounds
		}

		if code == "" {
			for {
				c, gerr := GenerateCode()
				if gerr != nil {
					http.Error(w, "failed to generate code", http.StatusInternalServerError)
					return
				}
				reply := make(chan *room.Room, 1)
				d.Hub.Inbox() <- hub.GetRoom{Code: c, Reply: reply}
				if <-reply == nil {
					code = c
					break
				}
				d.Log.Debug("room code collision, regenerating", zap.String("code", c))
			}
		}

		reply := make(chan *room.Room, 1)
		d.Hub.Inbox() <- hub.EnsureRoom{
			Code:  code,
			Timer: engine.NewReadyTimer(duration, sounds),
			Reply: reply,
		}
		if <-reply == nil {
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// CueWAV serves the synthesized audio for one cue, for clients that want
// a file instead of synthesizing locally.
func CueWAV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := audio.RenderWAV(engine.Cue(chi.URLParam(r, "cue")))
		if err != nil {
			http.Error(w, "unknown cue", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = w.Write(data)
	}
}

func GetSettings(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := d.Settings.Timer(r.Context())
		if err != nil {
			http.Error(w, "failed to load settings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, ts)
	}
}

func PutSettings(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ts settings.TimerSettings
		if err := json.NewDecoder(r.Body).Decode(&ts); err != nil {
			http.Error(w, "bad json body", http.StatusBadRequest)
			return
		}
		saved, err := d.Settings.SaveTimer(r.Context(), ts)
		if err != nil {
			http.Error(w, "failed to save settings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps tournament sentinels onto HTTP statuses. Anything
// unrecognized is treated as a server fault.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tournament.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, tournament.ErrNotFound),
		errors.Is(err, tournament.ErrPlayerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, tournament.ErrRoundInProgress),
		errors.Is(err, tournament.ErrNoRoundInProgress),
		errors.Is(err, tournament.ErrPlayerCount),
		errors.Is(err, tournament.ErrRegistrationFull),
		errors.Is(err, tournament.ErrNotEnoughUnassigned):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
