package store

import (
	"context"
	"testing"
)

func invoiceItems() []any {
	return []any{
		map[string]any{"description": "Design", "quantity": 2.0, "price": 150.0},
		map[string]any{"description": "Hosting", "quantity": 1.0, "price": 100.0},
	}
}

func TestComputeInvoiceTotals(t *testing.T) {
	doc := ComputeInvoiceTotals(Document{
		"items":    invoiceItems(),
		"taxRate":  10.0,
		"discount": 40.0,
	})
	if doc["subtotal"] != 400.0 {
		t.Fatalf("unexpected subtotal: %v", doc["subtotal"])
	}
	if doc["taxAmount"] != 40.0 {
		t.Fatalf("unexpected taxAmount: %v", doc["taxAmount"])
	}
	if doc["total"] != 400.0 {
		t.Fatalf("unexpected total: %v", doc["total"])
	}
}

func TestComputeInvoiceTotalsStringNumbers(t *testing.T) {
	doc := ComputeInvoiceTotals(Document{
		"items": []any{
			map[string]any{"quantity": "3", "price": "50"},
		},
		"taxRate": "0",
	})
	if doc["total"] != 150.0 {
		t.Fatalf("unexpected total from string numbers: %v", doc["total"])
	}
}

func TestComputeInvoiceTotalsNoItems(t *testing.T) {
	doc := ComputeInvoiceTotals(Document{"status": InvoiceStatusDraft})
	if _, exists := doc["total"]; exists {
		t.Fatal("documents without items must pass through untouched")
	}
}

func TestPaidInvoiceAutoCreatesPayment(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	created, err := sqlStore.Invoices().Create(ctx, Document{
		"invoiceNumber": "INV-1",
		"items":         invoiceItems(),
		"status":        InvoiceStatusPaid,
	}, "user-1")
	if err != nil {
		t.Fatalf("create paid invoice: %v", err)
	}
	invoiceID, _ := created["id"].(string)

	payments, err := sqlStore.Payments().GetAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected exactly one auto-created payment, got %d", len(payments))
	}
	if payments[0]["invoiceId"] != invoiceID {
		t.Fatalf("payment not linked to invoice: %v", payments[0]["invoiceId"])
	}
	if NumberValue(payments[0]["amount"]) != NumberValue(created["total"]) {
		t.Fatalf("payment amount %v != invoice total %v", payments[0]["amount"], created["total"])
	}

	// Marking an already-paid invoice Paid again must not double the payment.
	matched, err := sqlStore.Invoices().Update(ctx, invoiceID, Document{"status": InvoiceStatusPaid}, "user-1")
	if err != nil {
		t.Fatalf("re-mark invoice paid: %v", err)
	}
	if !matched {
		t.Fatal("expected update to match")
	}
	payments, err = sqlStore.Payments().GetAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("re-list payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected one payment after re-paying, got %d", len(payments))
	}
}

func TestUpdateToPaidCreatesPayment(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	created, err := sqlStore.Invoices().Create(ctx, Document{
		"invoiceNumber": "INV-2",
		"items":         invoiceItems(),
		"status":        InvoiceStatusSent,
	}, "user-1")
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	invoiceID, _ := created["id"].(string)

	payments, err := sqlStore.Payments().GetAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("sent invoice must not create a payment, got %d", len(payments))
	}

	if _, err := sqlStore.Invoices().Update(ctx, invoiceID, Document{"status": InvoiceStatusPaid}, "user-1"); err != nil {
		t.Fatalf("mark invoice paid: %v", err)
	}
	payments, err = sqlStore.Payments().GetAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("re-list payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected one payment after marking paid, got %d", len(payments))
	}
}

func TestUpdateItemsRecalculatesTotals(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	created, err := sqlStore.Invoices().Create(ctx, Document{
		"invoiceNumber": "INV-3",
		"items":         invoiceItems(),
		"taxRate":       10.0,
		"status":        InvoiceStatusDraft,
	}, "user-1")
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	invoiceID, _ := created["id"].(string)

	if _, err := sqlStore.Invoices().Update(ctx, invoiceID, Document{
		"items": []any{map[string]any{"quantity": 1.0, "price": 200.0}},
	}, "user-1"); err != nil {
		t.Fatalf("update items: %v", err)
	}

	loaded, err := sqlStore.Invoices().GetByID(ctx, invoiceID, "user-1")
	if err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if NumberValue(loaded["subtotal"]) != 200.0 {
		t.Fatalf("unexpected subtotal after update: %v", loaded["subtotal"])
	}
	// taxRate carried over from the stored document
	if NumberValue(loaded["total"]) != 220.0 {
		t.Fatalf("unexpected total after update: %v", loaded["total"])
	}
}

func TestMarkOverdueInvoices(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()
	invoices := sqlStore.Invoices()

	late, err := invoices.Create(ctx, Document{
		"invoiceNumber": "INV-4",
		"status":        InvoiceStatusSent,
		"dueDate":       "2020-01-01",
	}, "user-1")
	if err != nil {
		t.Fatalf("create late invoice: %v", err)
	}
	if _, err := invoices.Create(ctx, Document{
		"invoiceNumber": "INV-5",
		"status":        InvoiceStatusSent,
		"dueDate":       "2999-01-01",
	}, "user-1"); err != nil {
		t.Fatalf("create future invoice: %v", err)
	}
	if _, err := invoices.Create(ctx, Document{
		"invoiceNumber": "INV-6",
		"status":        InvoiceStatusDraft,
		"dueDate":       "2020-01-01",
	}, "user-2"); err != nil {
		t.Fatalf("create draft invoice: %v", err)
	}

	flipped, err := sqlStore.MarkOverdueInvoices(ctx, "2026-08-31")
	if err != nil {
		t.Fatalf("overdue sweep: %v", err)
	}
	if flipped != 1 {
		t.Fatalf("expected one flipped invoice, got %d", flipped)
	}

	lateID, _ := late["id"].(string)
	loaded, err := invoices.GetByID(ctx, lateID, "user-1")
	if err != nil {
		t.Fatalf("reload late invoice: %v", err)
	}
	if loaded["status"] != InvoiceStatusOverdue {
		t.Fatalf("expected Overdue status, got %v", loaded["status"])
	}
}
