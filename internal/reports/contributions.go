package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fikir/freetrack/internal/store"
)

// Day is one cell of the contribution graph: an ISO date, the number of
// business events recorded that day, and a 0-4 intensity level.
type Day struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Bounds on the year a caller may request.
const (
	MinYear = 2000
	MaxYear = 2100
)

// Contributions aggregates one tenant's per-day activity: each invoice counts
// on its issueDate, each payment and expense on its date. Every day of the
// range appears in the result, zero-count days included, in ascending order.
// A zero year selects the trailing twelve months ending today.
func Contributions(ctx context.Context, st *store.Store, userID string, year int) ([]Day, error) {
	var invoices, payments, expenses []store.Document
	group, groupCtx := errgroup.WithContext(ctx)
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
		return nil, fmt.Errorf("build contribution graph: %w", err)
	}

	start, end := rangeFor(year, time.Now().UTC())

	days := []string{}
	counts := map[string]int{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		days = append(days, key)
		counts[key] = 0
	}

	tally := func(docs []store.Document, field string) {
		for _, doc := range docs {
			raw, _ := doc[field].(string)
			day, ok := parseDay(raw)
			if !ok {
				continue
			}
			if _, inRange := counts[day]; inRange {
				counts[day]++
			}
		}
	}
	tally(invoices, "issueDate")
	tally(payments, "date")
	tally(expenses, "date")

	graph := make([]Day, 0, len(days))
	for _, day := range days {
		graph = append(graph, Day{Date: day, Count: counts[day], Level: level(counts[day])})
	}
	return graph, nil
}

// rangeFor returns the inclusive UTC date range to render: the named calendar
// year, or the trailing twelve months ending today when year is zero.
func rangeFor(year int, today time.Time) (time.Time, time.Time) {
	if year > 0 {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		return start, end
	}
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return end.AddDate(-1, 0, 1), end
}

func level(count int) int {
	switch {
	case count >= 4:
		return 4
	case count >= 3:
		return 3
	case count >= 2:
		return 2
	case count >= 1:
		return 1
	default:
		return 0
	}
}

// parseDay reduces a stored date value to its ISO day. Documents written
// through the assistant carry YYYY-MM-DD; direct REST writes may carry full
// timestamps.
func parseDay(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts.UTC().Format("2006-01-02"), true
		}
	}
	return "", false
}
