package assistant

import (
	"reflect"
	"testing"
	"time"
)

func TestStripProposalMarker(t *testing.T) {
	if got := StripProposalMarker("PROPOSE_CREATE_CLIENT"); got != ActionCreateClient {
		t.Fatalf("unexpected stripped kind: %s", got)
	}
	if got := StripProposalMarker("CREATE_CLIENT"); got != ActionCreateClient {
		t.Fatalf("unmarked kind must pass through: %s", got)
	}
	if got := StripProposalMarker("PROPOSE_SOMETHING_ELSE"); got != "SOMETHING_ELSE" {
		t.Fatalf("unexpected stripped unknown kind: %s", got)
	}
}

func TestKnownKind(t *testing.T) {
	if !KnownKind("PROPOSE_UPDATE_PROJECT_STATUS") {
		t.Fatal("expected marked known kind to be recognized")
	}
	if KnownKind("DROP_TABLES") {
		t.Fatal("expected unknown kind to be rejected")
	}
}

func TestSanitizeStripsBookkeepingKeys(t *testing.T) {
	clean := Sanitize(map[string]any{
		"id":          "abc",
		"_id":         "abc",
		"clientName":  "ABC Corp",
		"projectName": "Website",
		"itemName":    "Design",
		"summary":     "do the thing",
		"type":        "CREATE_PROJECT",
		"name":        "Website Revamp",
		"budget":      5000.0,
	})
	for _, key := range []string{"id", "_id", "clientName", "projectName", "itemName", "summary", "type"} {
		if _, exists := clean[key]; exists {
			t.Fatalf("key %q must be stripped", key)
		}
	}
	if clean["name"] != "Website Revamp" || clean["budget"] != 5000.0 {
		t.Fatalf("business fields must pass through: %v", clean)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	input := map[string]any{
		"id":     "x",
		"name":   "Client",
		"date":   "not a date",
		"amount": 12.5,
	}
	once := Sanitize(input)
	twice := Sanitize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("sanitize not idempotent: %v vs %v", once, twice)
	}
}

func TestSanitizeDateHandling(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")

	cases := []struct {
		name string
		date any
		want string
	}{
		{"valid date passes through", "2025-03-14", "2025-03-14"},
		{"garbage replaced with today", "next tuesday-ish", today},
		{"whitespace-only replaced with today", "   ", today},
		{"empty string left untouched", "", ""},
		{"non-string replaced with today", 42.0, today},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clean := Sanitize(map[string]any{"date": tc.date})
			if clean["date"] != tc.want {
				t.Fatalf("got %v, want %v", clean["date"], tc.want)
			}
		})
	}

	clean := Sanitize(map[string]any{"amount": 5.0})
	if _, exists := clean["date"]; exists {
		t.Fatal("sanitize must not invent a date field")
	}
}

func TestSanitizePreservesNestedItems(t *testing.T) {
	items := []any{
		map[string]any{"description": "Design", "quantity": 2.0, "price": 150.0},
	}
	clean := Sanitize(map[string]any{"invoiceNumber": "INV-9", "items": items})
	got, ok := clean["items"].([]any)
	if !ok || len(got) != 1 {
		t.Fatalf("nested items must pass through unchanged: %v", clean["items"])
	}
}
