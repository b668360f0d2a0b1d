// Package live fans out team-list changes to subscribers. The websocket
// feed and in-process consumers share the same subscription model: one
// channel per subscriber, fed by the hub goroutine.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Dosada05/bridge-judging/metrics"
)

const RoomTeams = "teams"

const (
	EventSnapshot         = "SNAPSHOT"
	EventTeamCreated      = "TEAM_CREATED"
	EventTeamUpdated      = "TEAM_UPDATED"
	EventTeamDeleted      = "TEAM_DELETED"
	EventStandingsUpdated = "STANDINGS_UPDATED"
)

const defaultSendBuffer = 256

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// Publisher is what services depend on to announce changes.
type Publisher interface {
	Publish(room string, eventType string, payload interface{})
}

type Subscriber struct {
	room   string
	send   chan []byte
	once   sync.Once
	closed chan struct{}
}

// C delivers encoded events. It is closed when the subscription ends.
func (s *Subscriber) C() <-chan []byte {
	return s.send
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.closed)
		close(s.send)
	})
}

type message struct {
	room string
	data []byte
}

type Hub struct {
	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan message
	done       chan struct{}

	rooms   map[string]map[*Subscriber]bool
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func NewHub(logger *slog.Logger, rec *metrics.Recorder) *Hub {
	return &Hub{
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		broadcast:  make(chan message, defaultSendBuffer),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Subscriber]bool),
		logger:     logger,
		metrics:    rec,
	}
}

// Run owns the room table until ctx is cancelled, then closes every
// subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, subs := range h.rooms {
			for sub := range subs {
				sub.close()
			}
		}
		h.rooms = map[string]map[*Subscriber]bool{}
		h.metrics.SetLiveSubscribers(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.register:
			if _, ok := h.rooms[sub.room]; !ok {
				h.rooms[sub.room] = make(map[*Subscriber]bool)
			}
			h.rooms[sub.room][sub] = true
			h.logger.Debug("live subscriber registered", slog.String("room", sub.room), slog.Int("subscribers", len(h.rooms[sub.room])))
			h.metrics.SetLiveSubscribers(h.count())

		case sub := <-h.unregister:
			if subs, ok := h.rooms[sub.room]; ok && subs[sub] {
				delete(subs, sub)
				sub.close()
				if len(subs) == 0 {
					delete(h.rooms, sub.room)
				}
				h.logger.Debug("live subscriber unregistered", slog.String("room", sub.room))
			}
			h.metrics.SetLiveSubscribers(h.count())

		case msg := <-h.broadcast:
			for sub := range h.rooms[msg.room] {
				select {
				case sub.send <- msg.data:
				default:
					h.logger.Warn("live subscriber send buffer full, event dropped", slog.String("room", msg.room))
				}
			}
		}
	}
}

func (h *Hub) count() int {
	n := 0
	for _, subs := range h.rooms {
		n += len(subs)
	}
	return n
}

// Subscribe registers a subscriber on room. The returned cancel func is
// idempotent. If the hub has stopped, the subscriber comes back closed.
func (h *Hub) Subscribe(room string) (*Subscriber, func()) {
	sub := &Subscriber{
		room:   room,
		send:   make(chan []byte, defaultSendBuffer),
		closed: make(chan struct{}),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		sub.close()
		return sub, func() {}
	}

	cancel := func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		case <-sub.closed:
		}
	}
	return sub, cancel
}

// Publish encodes and queues an event for room. It never blocks on slow
// subscribers and is a no-op once the hub has stopped.
func (h *Hub) Publish(room string, eventType string, payload interface{}) {
	data, err := Encode(room, eventType, payload)
	if err != nil {
		h.logger.Error("failed to encode live event", slog.String("type", eventType), slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- message{room: room, data: data}:
	case <-h.done:
	}
}

func Encode(room string, eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Payload: payload, RoomID: room})
}
