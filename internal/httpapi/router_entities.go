package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fikir/freetrack/internal/store"
)

// collection is the uniform contract every entity table exposes; the invoice
// collection satisfies it too, with its richer write path underneath.
type collection interface {
	Name() string
	GetAll(ctx context.Context, userID string) ([]store.Document, error)
	GetByID(ctx context.Context, id, userID string) (store.Document, error)
	Create(ctx context.Context, doc store.Document, userID string) (store.Document, error)
	Update(ctx context.Context, id string, doc store.Document, userID string) (bool, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

func (r *router) collections() map[string]collection {
	return map[string]collection{
		"clients":  r.deps.Store.Clients(),
		"projects": r.deps.Store.Projects(),
		"invoices": r.deps.Store.Invoices(),
		"payments": r.deps.Store.Payments(),
		"expenses": r.deps.Store.Expenses(),
	}
}

func (r *router) handleEntityList(col collection) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		userID := tenantID(req)
		switch req.Method {
		case http.MethodGet:
			docs, err := col.GetAll(req.Context(), userID)
			if err != nil {
				r.logError("list entities", col.Name(), err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, docs)
		case http.MethodPost:
			doc := store.Document{}
			if err := json.NewDecoder(req.Body).Decode(&doc); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
				return
			}
			created, err := col.Create(req.Context(), doc, userID)
			if err != nil {
				r.logError("create entity", col.Name(), err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusCreated, created)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		}
	}
}

func (r *router) handleEntityItem(col collection) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		userID := tenantID(req)
		id := strings.Trim(strings.TrimPrefix(req.URL.Path, "/api/v1/"+col.Name()+"/"), "/")
		if id == "" || strings.Contains(id, "/") {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}

		switch req.Method {
		case http.MethodGet:
			doc, err := col.GetByID(req.Context(), id, userID)
			if err != nil {
				r.logError("get entity", col.Name(), err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			if doc == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": notFoundMessage(col.Name())})
				return
			}
			writeJSON(w, http.StatusOK, doc)
		case http.MethodPut:
			changes := store.Document{}
			if err := json.NewDecoder(req.Body).Decode(&changes); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
				return
			}
			matched, err := col.Update(req.Context(), id, changes, userID)
			if err != nil {
				r.logError("update entity", col.Name(), err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			if !matched {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": notFoundMessage(col.Name())})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
		case http.MethodDelete:
			deleted, err := col.Delete(req.Context(), id, userID)
			if err != nil {
				r.logError("delete entity", col.Name(), err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			if !deleted {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": notFoundMessage(col.Name())})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		}
	}
}

func notFoundMessage(table string) string {
	return strings.TrimSuffix(table, "s") + " not found"
}

func (r *router) logError(action, table string, err error) {
	if r.deps.Logger != nil {
		r.deps.Logger.Error(action+" failed", "collection", table, "error", err)
	}
}
