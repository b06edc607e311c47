package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citrusvanilla/speed-jong/internal/engine"
	"github.com/citrusvanilla/speed-jong/internal/hub"
	"github.com/citrusvanilla/speed-jong/internal/room"
	"github.com/citrusvanilla/speed-jong/internal/types"
)

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.String("room", code), zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan room.Snapshot, 8)
		clientID := uuid.NewString()
		log.Debug("client joined", zap.String("room", code), zap.String("client", clientID))

		rm.Inbox() <- room.Join{ClientID: clientID, Outbox: out}
		defer func() {
			rm.Inbox() <- room.Leave{ClientID: clientID}
			log.Debug("client left", zap.String("room", code), zap.String("client", clientID))
		}()

		// Writer goroutine. One snapshot fans out into a state message plus
		// one message per transient effect, in order.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				for _, payload := range encodeSnapshot(snap) {
					ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
					err := conn.Write(ctx, websocket.MessageText, payload)
					cancel()
					if err != nil {
						return
					}
				}
			}
			// Outbox closed: the room shut down or dropped us as a slow
			// consumer. Unblock the read loop.
			conn.Close(websocket.StatusGoingAway, "room closed")
		}()

		// Reader loop. No read deadline: a timer screen can sit idle for a
		// whole hand without sending anything.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (room.Leave in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"bad json"}`))
				continue
			}

			cmd, ok := toCommand(cm)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"Error","error":"unknown type"}`))
				continue
			}

			rm.Inbox() <- room.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

// encodeSnapshot renders one room snapshot as wire payloads: the state
// message first, then the cues and flash it produced.
func encodeSnapshot(snap room.Snapshot) [][]byte {
	display := snap.Display
	payloads := make([][]byte, 0, 1+len(snap.Events))

	state, _ := json.Marshal(types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, Display: &display})
	payloads = append(payloads, state)

	for _, ev := range snap.Events {
		var msg types.ServerMessage
		switch ev.Type {
		case engine.EvtCue:
			msg = types.ServerMessage{Type: "Cue", Cue: string(ev.Cue)}
		case engine.EvtFlash:
			angle := ev.Angle
			msg = types.ServerMessage{Type: "Flash", Angle: &angle}
		default:
			continue
		}
		payload, _ := json.Marshal(msg)
		payloads = append(payloads, payload)
	}
	return payloads
}

func toCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case "Tap":
		return engine.Command{Type: engine.CmdTap, X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}, true
	case "Start":
		return engine.Command{Type: engine.CmdStart}, true
	case "Configure":
		sounds := engine.DefaultSounds()
		if m.Sounds != nil {
			sounds = *m.Sounds
		}
		return engine.Command{Type: engine.CmdConfigure, DurationSeconds: m.DurationSeconds, Sounds: sounds}, true
	default:
		return engine.Command{}, false
	}
}
