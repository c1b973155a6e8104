package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Magicred-1/agenthub/internal/api/middleware"
	"github.com/Magicred-1/agenthub/internal/relay"
)

// SendMessage relays one chat turn to the agent runtime. The request is
// form-encoded: userId, userName, name (agent display name), text, agentId.
// An authenticated sender's profile ID takes precedence over the form
// userId; an anonymous sender without a userId falls back to a default.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			h.Error(w, http.StatusBadRequest, "invalid form body")
			return
		}
	} else if err := r.ParseForm(); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid form body")
		return
	}

	req := relay.Request{
		UserID:    r.FormValue("userId"),
		UserName:  r.FormValue("userName"),
		AgentName: r.FormValue("name"),
		Text:      r.FormValue("text"),
		AgentID:   r.FormValue("agentId"),
	}
	if profile := middleware.GetProfileFromContext(r.Context()); profile != nil {
		req.UserID = profile.ID.String()
		if req.UserName == "" {
			req.UserName = profile.Name
		}
	}

	resp, err := h.relay.Send(r.Context(), req)
	if err != nil {
		h.relayError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, resp)
}

// relayError writes a relay failure as structured JSON. Every body carries
// an "error" field; failures the chat UI should absorb also carry a "text"
// fallback so the conversation never drops a turn.
func (h *Handler) relayError(w http.ResponseWriter, err error) {
	var relayErr *relay.Error
	if !errors.As(err, &relayErr) {
		h.JSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal server error",
			"text":  "I encountered an error processing your message. Please try again later.",
		})
		return
	}

	body := map[string]string{"error": relayErr.Message}
	if relayErr.Text != "" {
		body["text"] = relayErr.Text
	}
	h.JSON(w, relayErr.HTTPStatus(), body)
}
