package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fikir/freetrack/internal/assistant"
	"github.com/fikir/freetrack/internal/config"
	"github.com/fikir/freetrack/internal/store"
)

// Assistant is the conversational surface the router depends on; satisfied by
// *assistant.Chat and by fakes in tests.
type Assistant interface {
	Process(ctx context.Context, message string, history []assistant.Turn, userID string) (string, error)
	Execute(ctx context.Context, kind assistant.ActionKind, data map[string]any, userID string) (any, error)
}

type Dependencies struct {
	Config    config.Config
	Store     *store.Store
	Assistant Assistant
	Logger    *slog.Logger
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)

	for name, col := range rt.collections() {
		mux.HandleFunc("/api/v1/"+name, rt.handleEntityList(col))
		mux.HandleFunc("/api/v1/"+name+"/", rt.handleEntityItem(col))
	}

	mux.HandleFunc("/api/v1/contributions", rt.handleContributions)
	mux.HandleFunc("/api/v1/contributions/", rt.handleContributions)

	mux.HandleFunc("/api/v1/assistant/chat", rt.handleAssistantChat)
	mux.HandleFunc("/api/v1/assistant/execute", rt.handleAssistantExecute)
	mux.HandleFunc("/api/v1/assistant/ws", rt.handleAssistantWS)
	return mux
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if err := r.deps.Store.Ping(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "freetrack",
		"environment": r.deps.Config.Environment,
	})
}

// tenantID resolves the tenant for a request. Authentication itself lives in
// front of this service; by the time a request lands here the header is
// trusted.
func tenantID(req *http.Request) string {
	if id := strings.TrimSpace(req.Header.Get("X-User-ID")); id != "" {
		return id
	}
	return "default"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
