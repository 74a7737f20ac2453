package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fikir/freetrack/internal/assistant"
)

type chatRequest struct {
	Text    string           `json:"text"`
	History []assistant.Turn `json:"history"`
}

type chatResponse struct {
	Text string `json:"text"`
}

func (r *router) handleAssistantChat(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "assistant is unavailable"})
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	reply, err := r.deps.Assistant.Process(req.Context(), text, payload.History, tenantID(req))
	if err != nil {
		r.logError("assistant chat", "assistant", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Text: reply})
}

type executeRequest struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func (r *router) handleAssistantExecute(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "assistant is unavailable"})
		return
	}

	var payload executeRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	kind := assistant.ActionKind(strings.TrimSpace(payload.Type))
	if kind == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "type is required"})
		return
	}
	if payload.Data == nil {
		payload.Data = map[string]any{}
	}

	result, err := r.deps.Assistant.Execute(req.Context(), kind, payload.Data, tenantID(req))
	if err != nil {
		status := http.StatusBadRequest
		var unknown *assistant.UnknownActionError
		if errors.As(err, &unknown) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]string{
			"error": "Sorry, I couldn't execute that action: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}
