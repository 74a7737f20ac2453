package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/fikir/freetrack/internal/store"
)

// UnknownActionError is the one hard dispatch failure: a kind outside the
// enumeration means the model (or a caller) broke the contract, not that an
// entity was missing.
type UnknownActionError struct {
	Kind string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action type: %s", e.Kind)
}

// Dispatcher maps a confirmed or silent directive onto the entity store.
type Dispatcher struct {
	store *store.Store
}

func NewDispatcher(st *store.Store) *Dispatcher {
	return &Dispatcher{store: st}
}

// Dispatch strips the proposal marker, sanitizes the payload and runs the
// matching store operation for the tenant. Creates return the new document,
// reads return the document or nil (never an error for a missing id), updates
// and deletes return a bool match result.
func (d *Dispatcher) Dispatch(ctx context.Context, kind ActionKind, data map[string]any, userID string) (any, error) {
	stripped := StripProposalMarker(kind)

	// The id has to come out before sanitization removes it. Two key
	// spellings survive from older payload shapes.
	id := stringField(data, "id", "_id")
	payload := store.Document(Sanitize(data))

	switch stripped {
	case ActionCreateClient:
		return d.store.Clients().Create(ctx, payload, userID)
	case ActionCreateProject:
		return d.store.Projects().Create(ctx, payload, userID)
	case ActionCreateInvoice:
		return d.store.Invoices().Create(ctx, payload, userID)
	case ActionCreatePayment:
		if err := d.requireInvoice(ctx, payload, userID); err != nil {
			return nil, err
		}
		return d.store.Payments().Create(ctx, payload, userID)
	case ActionCreateExpense:
		return d.store.Expenses().Create(ctx, payload, userID)

	case ActionReadClient:
		return d.store.Clients().GetByID(ctx, id, userID)
	case ActionReadProject:
		return d.store.Projects().GetByID(ctx, id, userID)
	case ActionReadInvoice:
		return d.store.Invoices().GetByID(ctx, id, userID)
	case ActionReadPayment:
		return d.store.Payments().GetByID(ctx, id, userID)
	case ActionReadExpense:
		return d.store.Expenses().GetByID(ctx, id, userID)

	case ActionUpdateClient:
		return d.store.Clients().Update(ctx, id, payload, userID)
	case ActionUpdateProject:
		return d.store.Projects().Update(ctx, id, payload, userID)
	case ActionUpdateInvoice:
		return d.store.Invoices().Update(ctx, id, payload, userID)
	case ActionUpdatePayment:
		return d.store.Payments().Update(ctx, id, payload, userID)
	case ActionUpdateExpense:
		return d.store.Expenses().Update(ctx, id, payload, userID)
	case ActionUpdateProjectStatus:
		status, ok := payload["status"]
		if !ok || status == nil {
			return false, nil
		}
		return d.store.Projects().Update(ctx, id, store.Document{"status": status}, userID)

	case ActionDeleteClient:
		return d.store.Clients().Delete(ctx, id, userID)
	case ActionDeleteProject:
		return d.store.Projects().Delete(ctx, id, userID)
	case ActionDeleteInvoice:
		return d.store.Invoices().Delete(ctx, id, userID)
	case ActionDeletePayment:
		return d.store.Payments().Delete(ctx, id, userID)
	case ActionDeleteExpense:
		return d.store.Expenses().Delete(ctx, id, userID)

	default:
		return nil, &UnknownActionError{Kind: string(stripped)}
	}
}

// requireInvoice rejects payments whose invoiceId does not resolve for this
// tenant; permissive creation left orphan payments that skewed revenue totals.
func (d *Dispatcher) requireInvoice(ctx context.Context, payload store.Document, userID string) error {
	invoiceID := stringField(payload, "invoiceId")
	if invoiceID == "" {
		return fmt.Errorf("payment requires an invoiceId")
	}
	invoice, err := d.store.Invoices().GetByID(ctx, invoiceID, userID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return fmt.Errorf("payment references unknown invoice %q", invoiceID)
	}
	return nil
}

func stringField(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if raw, ok := data[key]; ok {
			switch typed := raw.(type) {
			case string:
				if trimmed := strings.TrimSpace(typed); trimmed != "" {
					return trimmed
				}
			case float64:
				return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", typed), "0"), ".")
			}
		}
	}
	return ""
}
