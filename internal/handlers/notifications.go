package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Magicred-1/agenthub/internal/api/middleware"
	"github.com/Magicred-1/agenthub/internal/notify"
)

// StreamNotifications holds an SSE stream open and forwards the
// authenticated user's interaction notifications. One bridge subscription
// per connected client; events arriving while nobody is connected are
// dropped (at-most-once, best-effort).
func (h *Handler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetProfileFromContext(r.Context())
	if profile == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if h.events == nil {
		h.Error(w, http.StatusServiceUnavailable, "notifications unavailable")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// The server's write timeout would sever the stream partway through;
	// this connection stays open until the client hangs up.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Warn().Err(err).Msg("could not clear stream write deadline")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sink := &sseNotifier{w: w, flusher: flusher}
	bridge := notify.NewBridge(h.events, h.store, sink, h.logger)
	bridge.Run(r.Context(), profile.ID.String())
}

// sseNotifier writes notifications as server-sent events.
type sseNotifier struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (n *sseNotifier) Notify(ctx context.Context, notification notify.Notification) error {
	payload, err := json.Marshal(map[string]any{
		"title": notification.Title,
		"body":  notification.Body,
		"data":  notification.Data,
	})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(n.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	n.flusher.Flush()
	return nil
}
