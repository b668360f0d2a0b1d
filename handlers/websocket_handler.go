package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/bridge-judging/live"
	"github.com/Dosada05/bridge-judging/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub         *live.Hub
	teamService services.TeamService
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewWebSocketHandler creates the team feed handler. allowedOrigins follows
// the CORS list; "*" accepts any origin.
func NewWebSocketHandler(hub *live.Hub, ts services.TeamService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		teamService: ts,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeTeams streams the team list: a SNAPSHOT first, then change events.
// With ?once=true the stream completes after the snapshot.
func (h *WebSocketHandler) ServeTeams(w http.ResponseWriter, r *http.Request) {
	once := r.URL.Query().Get("once") == "true"

	// Подписываемся до чтения снимка, чтобы не потерять события между ними.
	var (
		sub    *live.Subscriber
		cancel = func() {}
	)
	if !once {
		sub, cancel = h.hub.Subscribe(live.RoomTeams)
	}

	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		cancel()
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	snapshot, err := live.Encode(live.RoomTeams, live.EventSnapshot, teams)
	if err != nil {
		cancel()
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		// Upgrade сам отправляет HTTP ошибку клиенту.
		h.logger.Warn("failed to upgrade live connection", slog.Any("error", err))
		return
	}

	client := &live.Client{
		Conn:   conn,
		Sub:    sub,
		Cancel: cancel,
		Logger: h.logger,
	}
	if err := client.WriteSnapshot(snapshot); err != nil {
		h.logger.Debug("failed to write snapshot", slog.Any("error", err))
		cancel()
		conn.Close()
		return
	}
	if once {
		client.Complete()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
