// Package ws bridges websocket connections to room event streams. Each
// connection subscribes to exactly one room; the first frame a client
// receives is always a full snapshot.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/csdraft/mapban-backend/internal/hub"
	"github.com/csdraft/mapban-backend/internal/room"
	"github.com/csdraft/mapban-backend/internal/wire"
)

const (
	writeTimeout = 3 * time.Second
	// Outbox depth per subscriber; a client that falls further behind than
	// this is dropped by the room rather than allowed to stall it.
	outboxSize = 32
)

func Handler(h *hub.Hub, logger *zap.Logger, allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		participantID := r.URL.Query().Get("participant")

		rm, err := h.Get(r.Context(), code)
		if err != nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: allowedOrigins,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		subID := uuid.NewString()
		out := make(chan wire.Event, outboxSize)

		rm.Inbox() <- room.Join{SubID: subID, ParticipantID: participantID, Outbox: out}
		defer func() { rm.Inbox() <- room.Leave{SubID: subID} }()

		log := logger.With(zap.String("room", code), zap.String("sub", subID))
		log.Debug("subscriber connected")

		// Writer: drains the room's event stream. The room closes the
		// channel when it drops or shuts down this subscriber.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for evt := range out {
				payload, err := json.Marshal(evt)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
		}()

		// Reader: chat is the only inbound traffic; mutations go over REST.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}

			var cm wire.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","data":{"code":"validation","message":"bad json"}}`))
				continue
			}
			switch cm.Type {
			case "chat":
				if participantID != "" && cm.Content != "" {
					rm.Inbox() <- room.Chat{ParticipantID: participantID, Content: cm.Content}
				}
			default:
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","data":{"code":"validation","message":"unknown type"}}`))
			}
		}
	}
}
