package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/citrusvanilla/speed-jong/internal/engine"
	"github.com/citrusvanilla/speed-jong/internal/room"
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Code  string
	Timer engine.Timer
	Reply chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type EnsureRoom struct {
	Code  string
	Timer engine.Timer // only used if creation happens
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the registry of live rooms, keyed by join code. Like the rooms it
// owns, it is a single goroutine fed through an inbox.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	opts   room.Options
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub starts the registry. opts seed every room it creates; the room
// logger gets the join code attached.
func NewHub(parent context.Context, opts room.Options) *Hub {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.create(msg.Code, msg.Timer)

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case EnsureRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.create(msg.Code, msg.Timer)

			case RemoveRoom:
				if rm := h.rooms[msg.Code]; rm != nil {
					rm.Inbox() <- room.Shutdown{}
					delete(h.rooms, msg.Code)
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) create(code string, tm engine.Timer) *room.Room {
	opts := h.opts
	opts.Log = h.opts.Log.With(zap.String("room", code))
	rm := room.NewRoom(h.ctx, tm, opts)
	h.rooms[code] = rm
	return rm
}

func (h *Hub) shutdown() {
	for _, rm := range h.rooms {
		rm.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	h.cancel()
}
