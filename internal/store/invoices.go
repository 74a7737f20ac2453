package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	InvoiceStatusDraft   = "Draft"
	InvoiceStatusSent    = "Sent"
	InvoiceStatusPaid    = "Paid"
	InvoiceStatusOverdue = "Overdue"
)

// InvoiceCollection layers invoice semantics over the plain document table:
// totals are recomputed from line items on every write, and an invoice that
// becomes Paid gets exactly one auto-created payment so revenue totals stay
// consistent with invoice status.
type InvoiceCollection struct {
	Collection
	payments *Collection
}

func (c *InvoiceCollection) Create(ctx context.Context, doc Document, userID string) (Document, error) {
	processed := ComputeInvoiceTotals(cloneDocument(doc))
	created, err := c.Collection.Create(ctx, processed, userID)
	if err != nil {
		return nil, err
	}
	if invoiceStatus(created) == InvoiceStatusPaid {
		if err := c.ensurePayment(ctx, created, userID); err != nil {
			return nil, err
		}
	}
	return created, nil
}

func (c *InvoiceCollection) Update(ctx context.Context, id string, changes Document, userID string) (bool, error) {
	merged := cloneDocument(changes)
	if _, hasItems := merged["items"]; hasItems {
		existing, err := c.GetByID(ctx, id, userID)
		if err != nil {
			return false, err
		}
		if existing == nil {
			return false, nil
		}
		if _, ok := merged["taxRate"]; !ok {
			if rate, exists := existing["taxRate"]; exists {
				merged["taxRate"] = rate
			}
		}
		if _, ok := merged["discount"]; !ok {
			if discount, exists := existing["discount"]; exists {
				merged["discount"] = discount
			}
		}
		merged = ComputeInvoiceTotals(merged)
	}

	matched, err := c.Collection.Update(ctx, id, merged, userID)
	if err != nil || !matched {
		return matched, err
	}

	updated, err := c.GetByID(ctx, id, userID)
	if err != nil {
		return true, err
	}
	if updated != nil && invoiceStatus(updated) == InvoiceStatusPaid {
		if err := c.ensurePayment(ctx, updated, userID); err != nil {
			return true, err
		}
	}
	return true, nil
}

// ensurePayment creates the backing payment for a paid invoice if none exists
// yet. Idempotent: marking an already-paid invoice Paid again is a no-op.
func (c *InvoiceCollection) ensurePayment(ctx context.Context, invoice Document, userID string) error {
	invoiceID, _ := invoice["id"].(string)
	if invoiceID == "" {
		return nil
	}
	payments, err := c.payments.GetAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("check payments for invoice %s: %w", invoiceID, err)
	}
	for _, payment := range payments {
		if linked, _ := payment["invoiceId"].(string); linked == invoiceID {
			return nil
		}
	}
	_, err = c.payments.Create(ctx, Document{
		"invoiceId": invoiceID,
		"amount":    NumberValue(invoice["total"]),
		"method":    "Invoice",
		"date":      time.Now().UTC().Format("2006-01-02"),
	}, userID)
	if err != nil {
		return fmt.Errorf("auto-create payment for invoice %s: %w", invoiceID, err)
	}
	return nil
}

// ComputeInvoiceTotals derives subtotal, taxAmount and total from the line
// items when present. Documents without items pass through untouched.
func ComputeInvoiceTotals(doc Document) Document {
	items, ok := doc["items"].([]any)
	if !ok {
		return doc
	}
	subtotal := 0.0
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		subtotal += NumberValue(item["quantity"]) * NumberValue(item["price"])
	}
	taxAmount := subtotal * NumberValue(doc["taxRate"]) / 100
	doc["subtotal"] = subtotal
	doc["taxAmount"] = taxAmount
	doc["total"] = subtotal + taxAmount - NumberValue(doc["discount"])
	return doc
}

// MarkOverdueInvoices flips Sent invoices whose due date has passed to Overdue,
// across all tenants. Returns how many were updated.
func (s *Store) MarkOverdueInvoices(ctx context.Context, today string) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, data FROM invoices`)
	if err != nil {
		return 0, fmt.Errorf("scan invoices for overdue sweep: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		id     string
		userID string
	}
	candidates := []candidate{}
	for rows.Next() {
		var id, userID, data string
		if err := rows.Scan(&id, &userID, &data); err != nil {
			return 0, fmt.Errorf("scan invoice row: %w", err)
		}
		doc, err := decodeDocument(id, data)
		if err != nil {
			return 0, fmt.Errorf("decode invoice %s: %w", id, err)
		}
		if invoiceStatus(doc) != InvoiceStatusSent {
			continue
		}
		dueDate, _ := doc["dueDate"].(string)
		if dueDate == "" || dueDate >= today {
			continue
		}
		candidates = append(candidates, candidate{id: id, userID: userID})
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate invoices: %w", err)
	}

	flipped := 0
	invoices := s.Invoices()
	for _, item := range candidates {
		matched, err := invoices.Update(ctx, item.id, Document{"status": InvoiceStatusOverdue}, item.userID)
		if err != nil {
			return flipped, err
		}
		if matched {
			flipped++
		}
	}
	return flipped, nil
}

func invoiceStatus(doc Document) string {
	status, _ := doc["status"].(string)
	return strings.TrimSpace(status)
}

// NumberValue coerces the loose numeric shapes a JSON document (or a model
// payload) can carry into a float64, defaulting to zero.
func NumberValue(value any) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
