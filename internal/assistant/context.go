package assistant

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fikir/freetrack/internal/store"
)

// Snapshot is the read-only projection of a tenant's business state handed to
// the model each turn. Built fresh per request, never persisted.
type Snapshot struct {
	Clients        []ClientSummary  `json:"clients"`
	Projects       []ProjectSummary `json:"projects"`
	Invoices       []InvoiceSummary `json:"invoices"`
	RecentPayments []PaymentSummary `json:"recentPayments"`
	RecentExpenses []ExpenseSummary `json:"recentExpenses"`
	Totals         Totals           `json:"totals"`
}

type ClientSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
}

type ProjectSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"clientName"`
	Status     string `json:"status,omitempty"`
}

type InvoiceSummary struct {
	ID          string  `json:"id"`
	Number      string  `json:"number"`
	Total       float64 `json:"total"`
	Status      string  `json:"status,omitempty"`
	ProjectName string  `json:"projectName"`
	ClientName  string  `json:"clientName"`
}

type PaymentSummary struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method,omitempty"`
	Date   string  `json:"date,omitempty"`
}

type ExpenseSummary struct {
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
	Date        string  `json:"date,omitempty"`
}

type Totals struct {
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
}

// Placeholder names for dangling references in the snapshot.
const (
	unknownClientName  = "Unknown"
	generalProjectName = "General"
)

// BuildContext assembles the snapshot for one tenant. The five collection
// fetches run concurrently and are awaited jointly; any failure fails the
// whole build, never a partial snapshot. recentLimit bounds the payment and
// expense activity lists; the aggregate totals still cover the full sets.
func BuildContext(ctx context.Context, st *store.Store, userID string, recentLimit int) (Snapshot, error) {
	if recentLimit < 1 {
		recentLimit = 10
	}

	var clients, projects, invoices, payments, expenses []store.Document
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		clients, err = st.Clients().GetAll(groupCtx, userID)
		return err
	})
	group.Go(func() (err error) {
		projects, err = st.Projects().GetAll(groupCtx, userID)
		return err
	})
	group.Go(func() (err error) {
		invoices, err = st.Invoices().GetAll(groupCtx, userID)
		return err
	})
	group.Go(func() (err error) {
		payments, err = st.Payments().GetAll(groupCtx, userID)
		return err
	})
	group.Go(func() (err error) {
		expenses, err = st.Expenses().GetAll(groupCtx, userID)
		return err
	})
	if err := group.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("build business context: %w", err)
	}

	clientNames := map[string]string{}
	for _, client := range clients {
		clientNames[docString(client, "id")] = docString(client, "name")
	}
	projectNames := map[string]string{}
	for _, project := range projects {
		projectNames[docString(project, "id")] = docString(project, "name")
	}

	snapshot := Snapshot{
		Clients:        make([]ClientSummary, 0, len(clients)),
		Projects:       make([]ProjectSummary, 0, len(projects)),
		Invoices:       make([]InvoiceSummary, 0, len(invoices)),
		RecentPayments: []PaymentSummary{},
		RecentExpenses: []ExpenseSummary{},
	}

	for _, client := range clients {
		snapshot.Clients = append(snapshot.Clients, ClientSummary{
			ID:      docString(client, "id"),
			Name:    docString(client, "name"),
			Company: docString(client, "company"),
		})
	}
	for _, project := range projects {
		snapshot.Projects = append(snapshot.Projects, ProjectSummary{
			ID:         docString(project, "id"),
			Name:       docString(project, "name"),
			ClientName: lookupName(clientNames, docString(project, "clientId"), unknownClientName),
			Status:     docString(project, "status"),
		})
	}
	for _, invoice := range invoices {
		snapshot.Invoices = append(snapshot.Invoices, InvoiceSummary{
			ID:          docString(invoice, "id"),
			Number:      docString(invoice, "invoiceNumber"),
			Total:       store.NumberValue(invoice["total"]),
			Status:      docString(invoice, "status"),
			ProjectName: lookupName(projectNames, docString(invoice, "projectId"), generalProjectName),
			ClientName:  lookupName(clientNames, docString(invoice, "clientId"), unknownClientName),
		})
	}
	for _, payment := range lastN(payments, recentLimit) {
		snapshot.RecentPayments = append(snapshot.RecentPayments, PaymentSummary{
			Amount: store.NumberValue(payment["amount"]),
			Method: docString(payment, "method"),
			Date:   docString(payment, "date"),
		})
	}
	for _, expense := range lastN(expenses, recentLimit) {
		snapshot.RecentExpenses = append(snapshot.RecentExpenses, ExpenseSummary{
			Description: docString(expense, "description"),
			Amount:      store.NumberValue(expense["amount"]),
			Category:    docString(expense, "category"),
			Date:        docString(expense, "date"),
		})
	}
	for _, payment := range payments {
		snapshot.Totals.Revenue += store.NumberValue(payment["amount"])
	}
	for _, expense := range expenses {
		snapshot.Totals.Expenses += store.NumberValue(expense["amount"])
	}
	return snapshot, nil
}

// lastN keeps the most recent n documents, preserving their original order.
func lastN(docs []store.Document, n int) []store.Document {
	if len(docs) <= n {
		return docs
	}
	return docs[len(docs)-n:]
}

func lookupName(names map[string]string, id, fallback string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return fallback
}

func docString(doc store.Document, key string) string {
	value, _ := doc[key].(string)
	return value
}
