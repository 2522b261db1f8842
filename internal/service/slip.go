// Package service contains the business logic for the haul slip service.
// Services validate inputs, enforce ordering between side effects, and
// orchestrate repo, export, cache, and upstream calls.
// No SQL and no HTTP lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/haul-slips/internal/clock"
	"github.com/pkordes/haul-slips/internal/domain"
	"github.com/pkordes/haul-slips/internal/metrics"
	"github.com/pkordes/haul-slips/internal/repo"
)

// IDGenerator abstracts slip ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }

// Mirror receives every slip after it has been stored. The daily CSV writer
// is the production implementation.
type Mirror interface {
	AppendOne(slip domain.Slip) error
}

// SlipService implements the slip ingestion pipeline and the read operations.
type SlipService struct {
	repo    repo.SlipRepo
	mirror  Mirror
	clock   clock.Clock
	ids     IDGenerator
	log     *slog.Logger
	metrics *metrics.Metrics
}

// SlipOption customises a SlipService.
type SlipOption func(*SlipService)

// WithClock overrides the clock used for created_at/updated_at.
func WithClock(c clock.Clock) SlipOption {
	return func(s *SlipService) { s.clock = c }
}

// WithIDGenerator overrides the slip ID source.
func WithIDGenerator(g IDGenerator) SlipOption {
	return func(s *SlipService) { s.ids = g }
}

// NewSlipService constructs a SlipService backed by the provided repo and mirror.
func NewSlipService(r repo.SlipRepo, mirror Mirror, log *slog.Logger, m *metrics.Metrics, opts ...SlipOption) *SlipService {
	s := &SlipService{
		repo:    r,
		mirror:  mirror,
		clock:   clock.Real{},
		ids:     UUIDGenerator{},
		log:     log,
		metrics: m,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates a submission, stores the resulting slip, and then appends
// it to the daily CSV mirror.
//
// Nothing is written when validation fails. When the insert fails the slip is
// not accepted and the mirror is not touched. A mirror failure after a
// successful insert is logged and counted but not returned: the slip is
// already durable.
func (s *SlipService) Create(ctx context.Context, sub domain.Submission) (domain.Slip, error) {
	slip, err := ValidateSubmission(sub)
	if err != nil {
		s.metrics.SlipsRejected.WithLabelValues(rejectReason(err)).Inc()
		return domain.Slip{}, fmt.Errorf("service.SlipService.Create: %w", err)
	}

	now := s.clock.Now().UTC().Truncate(time.Second)
	slip.ID = s.ids.New()
	slip.CreatedAt = now
	slip.UpdatedAt = now

	if err := s.repo.Insert(ctx, slip); err != nil {
		s.metrics.SlipsRejected.WithLabelValues("storage_error").Inc()
		return domain.Slip{}, fmt.Errorf("service.SlipService.Create: %w", err)
	}
	s.metrics.SlipsAccepted.Inc()

	if err := s.mirror.AppendOne(slip); err != nil {
		s.metrics.ExportFailures.Inc()
		s.log.WarnContext(ctx, "slip stored but not appended to daily export",
			"slip_id", slip.ID,
			"error", err,
		)
	}
	return slip, nil
}

// List returns up to p.Limit slips, newest date first.
func (s *SlipService) List(ctx context.Context, p domain.ListParams) ([]domain.Slip, error) {
	slips, err := s.repo.List(ctx, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("service.SlipService.List: %w", err)
	}
	if slips == nil {
		slips = []domain.Slip{}
	}
	return slips, nil
}

func rejectReason(err error) string {
	var missing *domain.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		return "missing_fields"
	case errors.Is(err, domain.ErrInvalidTimeOrder):
		return "invalid_time_order"
	default:
		return "validation_error"
	}
}
