package room

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/citrusvanilla/speed-jong/internal/engine"
	"github.com/citrusvanilla/speed-jong/internal/wake"
)

type Msg interface{ isRoomMsg() }

// FromClient carries one decoded client command into the room. Commands
// arriving without a timestamp are stamped with the room clock, so tap
// debounce always runs on server time.
type FromClient struct {
	ClientID string
	Cmd      engine.Command
}

func (FromClient) isRoomMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isRoomMsg() {}

// Snapshot is one broadcast frame: the render-ready display plus the events
// that produced it, so clients can fire cues and flashes exactly once.
type Snapshot struct {
	Version int
	Display engine.Display
	Events  []engine.Event
}

// View reflects internal state without data races; test-only.
type View struct {
	Version    int
	NumClients int
	Timer      engine.Timer
	Ticking    bool
}

type Options struct {
	Clock clockwork.Clock
	Wake  wake.Locker
	Log   *zap.Logger
}

// Room owns one countdown timer and the clients watching it. All state is
// confined to the room goroutine; everything talks to it through the inbox.
type Room struct {
	inbox   chan Msg
	timer   engine.Timer
	version int
	clients map[string]chan Snapshot

	clock  clockwork.Clock
	ticker clockwork.Ticker
	tickC  <-chan time.Time

	wake wake.Locker
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRoom(parent context.Context, initial engine.Timer, opts Options) *Room {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Wake == nil {
		opts.Wake = wake.Unsupported{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:   make(chan Msg, 64), // Small buffer
		timer:   initial,
		clients: make(map[string]chan Snapshot),
		clock:   opts.Clock,
		wake:    opts.Wake,
		log:     opts.Log,
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-r.tickC: // nil while not running, so this arm stays dormant
			r.apply(engine.Command{Type: engine.CmdTick})

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				r.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: r.version, Display: r.timer.Display()}
				if r.timer.State == engine.StateRunning {
					// Browsers drop wake locks when a tab hides; a
					// mid-round join re-arms ours the same way.
					if err := r.wake.Acquire(); err != nil {
						r.log.Debug("wake lock unavailable", zap.Error(err))
					}
				}

			case Leave:
				delete(r.clients, msg.ClientID)

			case FromClient:
				cmd := msg.Cmd
				if cmd.Now.IsZero() {
					cmd.Now = r.clock.Now()
				}
				r.apply(cmd)

			case GetView:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					Timer:      r.timer,
					Ticking:    r.ticker != nil,
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

// apply runs one command through the engine and propagates the outcome.
// Rejected commands are dropped: a debounced tap is by contract a no-op,
// and a stale tick racing a stop is harmless.
func (r *Room) apply(cmd engine.Command) {
	events, next, err := engine.Apply(r.timer, cmd)
	if err != nil {
		if !errors.Is(err, engine.ErrTapDebounced) {
			r.log.Debug("command rejected", zap.String("cmd", string(cmd.Type)), zap.Error(err))
		}
		return
	}

	r.timer = next
	r.version++

	if engine.ContainsEvent(events, engine.EvtConfigured) {
		// Reconfiguring aborts any round in flight.
		r.stopTicking()
	}
	if engine.ContainsEvent(events, engine.EvtStarted) {
		r.startTicking()
		if err := r.wake.Acquire(); err != nil {
			r.log.Debug("wake lock unavailable", zap.Error(err))
		}
	}
	if engine.ContainsEvent(events, engine.EvtExpired) {
		r.stopTicking()
		if err := r.wake.Release(); err != nil {
			r.log.Debug("wake release failed", zap.Error(err))
		}
	}

	r.broadcast(Snapshot{Version: r.version, Display: r.timer.Display(), Events: events})
}

// startTicking arms the countdown cadence. Any previous ticker is stopped
// first so rapid restarts can never leave two tick streams running.
func (r *Room) startTicking() {
	r.stopTicking()
	r.ticker = r.clock.NewTicker(engine.TickInterval)
	r.tickC = r.ticker.Chan()
}

func (r *Room) stopTicking() {
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	r.ticker = nil
	r.tickC = nil
}

func (r *Room) shutdown() {
	r.stopTicking()
	if err := r.wake.Release(); err != nil {
		r.log.Debug("wake release failed", zap.Error(err))
	}
	for id, ch := range r.clients {
		close(ch) // Tell client no more snapshots
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (r *Room) Inbox() chan<- Msg { return r.inbox }
