package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origin enforcement belongs to the proxy in front of this service.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleAssistantWS serves the chat over a websocket: each incoming frame is
// one chat request, each outgoing frame one reply. History stays
// caller-supplied per frame, same as the HTTP endpoint.
func (r *router) handleAssistantWS(w http.ResponseWriter, req *http.Request) {
	if r.deps.Assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "assistant is unavailable"})
		return
	}
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logError("websocket upgrade", "assistant", err)
		return
	}
	defer conn.Close()

	userID := tenantID(req)
	for {
		var payload chatRequest
		if err := conn.ReadJSON(&payload); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.logError("websocket read", "assistant", err)
			}
			return
		}
		text := strings.TrimSpace(payload.Text)
		if text == "" {
			if err := conn.WriteJSON(map[string]string{"error": "text is required"}); err != nil {
				return
			}
			continue
		}

		reply, err := r.deps.Assistant.Process(req.Context(), text, payload.History, userID)
		if err != nil {
			r.logError("assistant chat over websocket", "assistant", err)
			if err := conn.WriteJSON(map[string]string{"error": err.Error()}); err != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(chatResponse{Text: reply}); err != nil {
			return
		}
	}
}
