package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pefman/w40k-sim/internal/api"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// handleWS runs one simulation per connection. The client sends a
// RunRequest; the server answers with "progress" messages followed by a
// single "result" or "error" message and closes. Closing the socket early
// cancels the run.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var req api.RunRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(api.ProgressMessage{Type: "error", Error: "invalid JSON"})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// Any further read (including the close frame) ends the run.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	updates := make(chan api.ProgressMessage, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range updates {
			if err := conn.WriteJSON(msg); err != nil {
				cancel()
				return
			}
		}
	}()

	resp, err := s.simulate(ctx, req, func(done, total int) {
		select {
		case updates <- api.ProgressMessage{Type: "progress", Done: done, Total: total}:
		default: // slow reader; skip this update
		}
	})
	close(updates)
	wg.Wait()

	if err != nil {
		if ctx.Err() == nil {
			_ = conn.WriteJSON(api.ProgressMessage{Type: "error", Error: err.Error()})
		}
		return
	}
	_ = conn.WriteJSON(api.ProgressMessage{Type: "result", Result: &resp})
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
