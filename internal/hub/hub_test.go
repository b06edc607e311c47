package hub

import (
	"context"
	"testing"
	"time"

	"github.com/citrusvanilla/speed-jong/internal/engine"
	"github.com/citrusvanilla/speed-jong/internal/room"
)

func TestHub_Create_Get_SamePointer(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, room.Options{})
	reply := make(chan *room.Room, 1)

	timer := engine.NewReadyTimer(engine.DefaultDurationSeconds, engine.DefaultSounds())
	h.Inbox() <- CreateRoom{Code: "ZED123", Timer: timer, Reply: reply}
	rm1 := <-reply

	h.Inbox() <- GetRoom{Code: "ZED123", Reply: reply}
	rm2 := <-reply

	if rm1 == nil || rm2 == nil || rm1 != rm2 {
		t.Fatalf("expected same room pointer")
	}
}

func TestHub_Ensure_CreatesThenReuses(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, room.Options{})
	reply := make(chan *room.Room, 1)

	timer := engine.NewReadyTimer(engine.DefaultDurationSeconds, engine.DefaultSounds())
	h.Inbox() <- EnsureRoom{Code: "KAN042", Timer: timer, Reply: reply}
	rm1 := <-reply

	h.Inbox() <- EnsureRoom{Code: "KAN042", Timer: timer, Reply: reply}
	rm2 := <-reply

	if rm1 == nil || rm1 != rm2 {
		t.Fatalf("expected ensure to reuse the existing room")
	}
}

func TestHub_Remove_ShutsRoomDown(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, room.Options{})
	reply := make(chan *room.Room, 1)

	timer := engine.NewReadyTimer(engine.DefaultDurationSeconds, engine.DefaultSounds())
	h.Inbox() <- CreateRoom{Code: "PIN777", Timer: timer, Reply: reply}
	rm := <-reply

	out := make(chan room.Snapshot, 2)
	rm.Inbox() <- room.Join{ClientID: "c1", Outbox: out}
	<-out // join snapshot

	h.Inbox() <- RemoveRoom{Code: "PIN777"}

	h.Inbox() <- GetRoom{Code: "PIN777", Reply: reply}
	if got := <-reply; got != nil {
		t.Fatalf("expected removed room to be gone, got %v", got)
	}

	// The evicted room closes its client outboxes on shutdown.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("room outbox never closed after removal")
		}
	}
}
