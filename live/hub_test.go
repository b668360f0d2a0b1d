package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case data, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription closed")
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("bad event %s: %v", data, err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPublishReachesRoomSubscribers(t *testing.T) {
	hub, _ := startHub(t)

	teams, cancelTeams := hub.Subscribe(RoomTeams)
	defer cancelTeams()
	other, cancelOther := hub.Subscribe("other")
	defer cancelOther()

	hub.Publish(RoomTeams, EventTeamUpdated, map[string]string{"team_number": "12"})

	ev := receive(t, teams)
	if ev.Type != EventTeamUpdated || ev.RoomID != RoomTeams {
		t.Errorf("event = %+v", ev)
	}
	select {
	case data := <-other.C():
		t.Errorf("other room received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelClosesSubscription(t *testing.T) {
	hub, _ := startHub(t)

	sub, cancel := hub.Subscribe(RoomTeams)
	cancel()
	cancel()

	select {
	case _, ok := <-sub.C():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed after cancel")
	}
}

func TestStoppedHubClosesSubscribers(t *testing.T) {
	hub, stop := startHub(t)

	sub, cancel := hub.Subscribe(RoomTeams)
	defer cancel()
	stop()

	select {
	case _, ok := <-sub.C():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed after hub stop")
	}

	// After the hub is gone, publishing and subscribing must not block.
	hub.Publish(RoomTeams, EventTeamDeleted, nil)
	late, lateCancel := hub.Subscribe(RoomTeams)
	lateCancel()
	if _, ok := <-late.C(); ok {
		t.Error("late subscriber should be closed")
	}
}
