package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Store is the slice of the entity store the sweep needs.
type Store interface {
	MarkOverdueInvoices(ctx context.Context, today string) (int, error)
}

// Service flips Sent invoices past their due date to Overdue on a cron
// schedule.
type Service struct {
	store  Store
	spec   string
	logger *slog.Logger
}

func New(store Store, spec string, logger *slog.Logger) *Service {
	if spec == "" {
		spec = "0 6 * * *"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, spec: spec, logger: logger}
}

// Start runs the schedule until the context is done.
func (s *Service) Start(ctx context.Context) error {
	runner := cron.New()
	_, err := runner.AddFunc(s.spec, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.RunOnce(sweepCtx); err != nil {
			s.logger.Error("overdue invoice sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule invoice sweep %q: %w", s.spec, err)
	}
	runner.Start()
	s.logger.Info("invoice sweep scheduled", "spec", s.spec)

	<-ctx.Done()
	stopCtx := runner.Stop()
	<-stopCtx.Done()
	s.logger.Info("invoice sweep stopped")
	return nil
}

// RunOnce performs a single sweep against today's date.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	today := time.Now().UTC().Format("2006-01-02")
	flipped, err := s.store.MarkOverdueInvoices(ctx, today)
	if err != nil {
		return 0, err
	}
	if flipped > 0 {
		s.logger.Info("invoices marked overdue", "count", flipped)
	}
	return flipped, nil
}
