package assistant

import (
	"context"
	"fmt"
	"testing"

	"github.com/fikir/freetrack/internal/store"
)

func TestBuildContextProjectionsAndPlaceholders(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	client, err := sqlStore.Clients().Create(ctx, store.Document{"name": "ABC Corp", "company": "ABC"}, "user-1")
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	clientID, _ := client["id"].(string)

	project, err := sqlStore.Projects().Create(ctx, store.Document{
		"name":     "Website Revamp",
		"clientId": clientID,
		"status":   "Active",
	}, "user-1")
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	projectID, _ := project["id"].(string)

	if _, err := sqlStore.Projects().Create(ctx, store.Document{
		"name":     "Orphan",
		"clientId": "dangling",
	}, "user-1"); err != nil {
		t.Fatalf("seed orphan project: %v", err)
	}

	if _, err := sqlStore.Invoices().Create(ctx, store.Document{
		"invoiceNumber": "INV-1",
		"clientId":      clientID,
		"projectId":     projectID,
		"total":         400.0,
		"status":        "Sent",
	}, "user-1"); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	if _, err := sqlStore.Invoices().Create(ctx, store.Document{
		"invoiceNumber": "INV-2",
		"total":         100.0,
	}, "user-1"); err != nil {
		t.Fatalf("seed detached invoice: %v", err)
	}

	snapshot, err := BuildContext(ctx, sqlStore, "user-1", 10)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}

	if len(snapshot.Clients) != 1 || snapshot.Clients[0].Name != "ABC Corp" {
		t.Fatalf("unexpected clients: %v", snapshot.Clients)
	}
	if len(snapshot.Projects) != 2 {
		t.Fatalf("unexpected project count: %d", len(snapshot.Projects))
	}
	byName := map[string]ProjectSummary{}
	for _, p := range snapshot.Projects {
		byName[p.Name] = p
	}
	if byName["Website Revamp"].ClientName != "ABC Corp" {
		t.Fatalf("client name not resolved: %v", byName["Website Revamp"])
	}
	if byName["Orphan"].ClientName != "Unknown" {
		t.Fatalf("dangling clientId must resolve to Unknown: %v", byName["Orphan"])
	}

	invoicesByNumber := map[string]InvoiceSummary{}
	for _, inv := range snapshot.Invoices {
		invoicesByNumber[inv.Number] = inv
	}
	if invoicesByNumber["INV-1"].ProjectName != "Website Revamp" || invoicesByNumber["INV-1"].ClientName != "ABC Corp" {
		t.Fatalf("invoice names not resolved: %v", invoicesByNumber["INV-1"])
	}
	if invoicesByNumber["INV-2"].ProjectName != "General" || invoicesByNumber["INV-2"].ClientName != "Unknown" {
		t.Fatalf("detached invoice must use placeholders: %v", invoicesByNumber["INV-2"])
	}
}

func TestBuildContextRecentWindowAndTotals(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if _, err := sqlStore.Payments().Create(ctx, store.Document{
			"amount": 10.0,
			"method": fmt.Sprintf("method-%d", i),
		}, "user-1"); err != nil {
			t.Fatalf("seed payment %d: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := sqlStore.Expenses().Create(ctx, store.Document{
			"amount":   7.0,
			"category": "Software",
		}, "user-1"); err != nil {
			t.Fatalf("seed expense %d: %v", i, err)
		}
	}

	snapshot, err := BuildContext(ctx, sqlStore, "user-1", 10)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}

	if len(snapshot.RecentPayments) != 10 {
		t.Fatalf("expected 10 recent payments, got %d", len(snapshot.RecentPayments))
	}
	// Most recent window, original order preserved.
	if snapshot.RecentPayments[0].Method != "method-2" || snapshot.RecentPayments[9].Method != "method-11" {
		t.Fatalf("unexpected recent window: first=%s last=%s",
			snapshot.RecentPayments[0].Method, snapshot.RecentPayments[9].Method)
	}

	// Totals cover the full sets, not just the recent window.
	if snapshot.Totals.Revenue != 120.0 {
		t.Fatalf("expected revenue over all 12 payments, got %v", snapshot.Totals.Revenue)
	}
	if snapshot.Totals.Expenses != 21.0 {
		t.Fatalf("expected expense total 21, got %v", snapshot.Totals.Expenses)
	}
}

func TestBuildContextEmptyTenant(t *testing.T) {
	snapshot, err := BuildContext(context.Background(), newTestStore(t), "nobody", 10)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if len(snapshot.Clients) != 0 || len(snapshot.RecentPayments) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
	if snapshot.Totals.Revenue != 0 || snapshot.Totals.Expenses != 0 {
		t.Fatalf("expected zero totals, got %+v", snapshot.Totals)
	}
}
