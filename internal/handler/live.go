package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bits/internal/metrics"
	"bits/internal/redis"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveHandler streams incident ledger events over WebSocket.
type LiveHandler struct {
	events redis.EventSubscriberInterface
	logger *zap.Logger
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(events redis.EventSubscriberInterface, logger *zap.Logger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveHandler{events: events, logger: logger}
}

// LiveMessage is one frame on the live feed.
type LiveMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Stream handles GET /v1/live
func (h *LiveHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.LiveConnectionsGauge.Inc()
	defer metrics.LiveConnectionsGauge.Dec()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Read pump: detect client disconnect
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pubsub := h.events.Subscribe(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(LiveMessage{Type: "incident_update", Data: json.RawMessage(msg.Payload)}); err != nil {
				h.logger.Debug("live write failed", zap.Error(err))
				return
			}
		}
	}
}
