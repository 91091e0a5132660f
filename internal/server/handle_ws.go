package server

import (
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

// handleWSGame streams game events over a WebSocket, for clients that
// cannot hold an SSE connection. One JSON event per text message.
func handleWSGame(logger *slog.Logger, broker *Broker, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		sess, ok := sessions.FromToken(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		// We never expect client frames; CloseRead surfaces disconnects.
		ctx := conn.CloseRead(r.Context())

		ch := broker.Subscribe(sess.TeamID)
		defer broker.Unsubscribe(sess.TeamID, ch)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case data := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			case <-ping.C:
				if err := conn.Ping(ctx); err != nil {
					logger.Debug("websocket ping failed", "error", err)
					return
				}
			}
		}
	}
}
