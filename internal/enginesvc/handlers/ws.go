package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// ClockFeed streams the game's clock view to a dealer display. One frame per
// second; the feed closes itself once the game completes.
func (h *Handler) ClockFeed(w http.ResponseWriter, r *http.Request) {
	gameID, err := urlID(r, "gameID")
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		http.Error(w, "Failed to upgrade to WebSocket", http.StatusInternalServerError)
		return
	}

	log.Infof("clock feed opened for game %d", gameID)

	go h.streamClock(conn, gameID)
}

func (h *Handler) streamClock(conn *websocket.Conn, gameID int64) {
	defer func() {
		log.Infof("clock feed closed for game %d", gameID)
		conn.Close()
	}()

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	ctx := context.Background()
	for range ticker.C {
		view, err := h.clockSvc.State(ctx, gameID)
		if err != nil {
			log.Errorf("clock feed for game %d: %v", gameID, err)
			return
		}

		if err := conn.WriteJSON(view); err != nil {
			return
		}

		if view.Status == models.GameCompleted {
			return
		}
	}
}
