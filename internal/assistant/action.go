package assistant

import (
	"strings"
	"time"
)

// ActionKind is the closed set of operations the assistant may request. A kind
// arriving from the model may carry the PROPOSE_ marker, meaning it needs user
// confirmation before dispatch.
type ActionKind string

const (
	ActionCreateClient  ActionKind = "CREATE_CLIENT"
	ActionCreateProject ActionKind = "CREATE_PROJECT"
	ActionCreateInvoice ActionKind = "CREATE_INVOICE"
	ActionCreatePayment ActionKind = "CREATE_PAYMENT"
	ActionCreateExpense ActionKind = "CREATE_EXPENSE"

	ActionReadClient  ActionKind = "READ_CLIENT"
	ActionReadProject ActionKind = "READ_PROJECT"
	ActionReadInvoice ActionKind = "READ_INVOICE"
	ActionReadPayment ActionKind = "READ_PAYMENT"
	ActionReadExpense ActionKind = "READ_EXPENSE"

	ActionUpdateClient        ActionKind = "UPDATE_CLIENT"
	ActionUpdateProject       ActionKind = "UPDATE_PROJECT"
	ActionUpdateInvoice       ActionKind = "UPDATE_INVOICE"
	ActionUpdatePayment       ActionKind = "UPDATE_PAYMENT"
	ActionUpdateExpense       ActionKind = "UPDATE_EXPENSE"
	ActionUpdateProjectStatus ActionKind = "UPDATE_PROJECT_STATUS"

	ActionDeleteClient  ActionKind = "DELETE_CLIENT"
	ActionDeleteProject ActionKind = "DELETE_PROJECT"
	ActionDeleteInvoice ActionKind = "DELETE_INVOICE"
	ActionDeletePayment ActionKind = "DELETE_PAYMENT"
	ActionDeleteExpense ActionKind = "DELETE_EXPENSE"
)

const proposalMarker = "PROPOSE_"

// requiredFields is the minimal payload per kind, used when describing the
// directive grammar to the model.
var requiredFields = map[ActionKind][]string{
	ActionCreateClient:  {"name", "email"},
	ActionCreateProject: {"name", "clientId", "budget"},
	ActionCreateInvoice: {"invoiceNumber", "clientId", "items"},
	ActionCreatePayment: {"invoiceId", "amount", "method", "date"},
	ActionCreateExpense: {"description", "amount", "category", "date"},

	ActionReadClient:  {"id"},
	ActionReadProject: {"id"},
	ActionReadInvoice: {"id"},
	ActionReadPayment: {"id"},
	ActionReadExpense: {"id"},

	ActionUpdateClient:        {"id"},
	ActionUpdateProject:       {"id"},
	ActionUpdateInvoice:       {"id"},
	ActionUpdatePayment:       {"id"},
	ActionUpdateExpense:       {"id"},
	ActionUpdateProjectStatus: {"id", "status"},

	ActionDeleteClient:  {"id"},
	ActionDeleteProject: {"id"},
	ActionDeleteInvoice: {"id"},
	ActionDeletePayment: {"id"},
	ActionDeleteExpense: {"id"},
}

// StripProposalMarker removes a leading PROPOSE_ from the kind, if present.
func StripProposalMarker(kind ActionKind) ActionKind {
	return ActionKind(strings.TrimPrefix(string(kind), proposalMarker))
}

// KnownKind reports whether the marker-stripped kind belongs to the enumeration.
func KnownKind(kind ActionKind) bool {
	_, ok := requiredFields[StripProposalMarker(kind)]
	return ok
}

// RequiredFields returns the minimal field set for a kind, nil for unknown kinds.
func RequiredFields(kind ActionKind) []string {
	return requiredFields[StripProposalMarker(kind)]
}

// silentKind is true for the read kinds the loop may execute without user
// confirmation. Unknown kinds are never silent, whatever their spelling.
func silentKind(kind ActionKind) bool {
	stripped := StripProposalMarker(kind)
	_, known := requiredFields[stripped]
	return known && strings.HasPrefix(string(stripped), "READ_")
}

// strippedKeys are model-only bookkeeping fields that must never reach storage.
// The model routinely echoes back ids and the denormalized display names from
// the context snapshot.
var strippedKeys = []string{"id", "_id", "clientName", "projectName", "itemName", "summary", "type"}

// dateLayouts are the calendar shapes models actually produce.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "01/02/2006"}

// Sanitize strips bookkeeping keys and normalizes an unparseable date field to
// today in YYYY-MM-DD form. Only the exactly-empty string is left untouched.
// Everything else, nested line items included, passes through. Sanitize is
// idempotent and must run before every dispatch, whatever the entry path.
func Sanitize(data map[string]any) map[string]any {
	clean := make(map[string]any, len(data))
	for key, value := range data {
		clean[key] = value
	}
	for _, key := range strippedKeys {
		delete(clean, key)
	}
	if raw, ok := clean["date"]; ok {
		if text, isString := raw.(string); !isString || (text != "" && !parsesAsDate(text)) {
			clean["date"] = time.Now().UTC().Format("2006-01-02")
		}
	}
	return clean
}

func parsesAsDate(value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return true
		}
	}
	return false
}
