package handler

import (
	"context"

	"rfp-analysis-be/internal/pkg/logger"
	internalWS "rfp-analysis-be/internal/websocket"
	"rfp-analysis-be/pkg/events"
	pktNats "rfp-analysis-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventHandler bridges the NATS event bus to websocket clients: every
// session-scoped event published anywhere in the cluster reaches the
// browsers watching that session.
type EventHandler struct {
	subscriber *pktNats.Subscriber
	hub        *internalWS.Hub
	logger     logger.ILogger
}

func NewEventHandler(subscriber *pktNats.Subscriber, hub *internalWS.Hub, log logger.ILogger) *EventHandler {
	return &EventHandler{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

// Start subscribes to all session events. Call in a goroutine.
func (h *EventHandler) Start() {
	if h.subscriber == nil {
		h.logger.Warn("EventHandler", "No NATS subscriber, session event fan-out disabled", nil)
		return
	}

	err := h.subscriber.Subscribe("events.>", "session-event-fanout", func(ctx context.Context, event events.Event) error {
		payload := event.Payload()

		sessionID, _ := payload["session_id"].(string)
		if sessionID == "" {
			// Events without a session are system-wide.
			h.hub.Broadcast(event.EventType(), payload)
			return nil
		}

		h.hub.Publish(sessionID, event.EventType(), payload)
		return nil
	})
	if err != nil {
		h.logger.Error("EventHandler", "Failed to subscribe to session events", map[string]interface{}{"error": err.Error()})
	}
}

func (h *EventHandler) RegisterRoutes(r fiber.Router) {
	ws := r.Group("/ws/v1")
	ws.Get("session/:session_id", h.ServeWs)
}

// ServeWs upgrades the connection and attaches it to the session's
// event stream.
func (h *EventHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_id is required"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("EventHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("EventHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
