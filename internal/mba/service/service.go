// Package service orchestrates agreement tracking: every mutation loads the
// before-state, writes, diffs the audited fields, and hands the diff to the
// audit recorder. Recorder failures never surface to callers.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mbatrack/internal/audit"
	"mbatrack/internal/mba/models"
	"mbatrack/internal/platform/metrics"
	id "mbatrack/pkg/domain"
	dErrors "mbatrack/pkg/domain-errors"
	"mbatrack/pkg/platform/sentinel"
	"mbatrack/pkg/platform/tx"
)

type ClientStore interface {
	Create(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, clientID id.ClientID) error
}

type MBAStore interface {
	Create(ctx context.Context, mba *models.MBA) error
	FindByID(ctx context.Context, mbaID id.MBAID) (*models.MBA, error)
	List(ctx context.Context, clientID *id.ClientID) ([]models.MBA, error)
	Update(ctx context.Context, mba *models.MBA) error
	Delete(ctx context.Context, mbaID id.MBAID) error
	CountByNumberPrefix(ctx context.Context, prefix string) (int, error)
}

type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, invoiceID id.InvoiceID) (*models.Invoice, error)
	List(ctx context.Context) ([]models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, invoiceID id.InvoiceID) error
	CreateAllocation(ctx context.Context, alloc *models.InvoiceAllocation) error
	ListAllocationsByInvoice(ctx context.Context, invoiceID id.InvoiceID) ([]models.InvoiceAllocation, error)
	ListAllocationsByMBA(ctx context.Context, mbaID id.MBAID) ([]models.InvoiceAllocation, error)
	ListAllocations(ctx context.Context) ([]models.InvoiceAllocation, error)
	DeleteAllocationsByMBA(ctx context.Context, mbaID id.MBAID) error
}

type SpendStore interface {
	Create(ctx context.Context, entry *models.SpendEntry) error
	FindByKey(ctx context.Context, mbaID id.MBAID, platform models.Platform, period time.Time) (*models.SpendEntry, error)
	Update(ctx context.Context, entry *models.SpendEntry) error
	ListByMBA(ctx context.Context, mbaID id.MBAID) ([]models.SpendEntry, error)
	List(ctx context.Context) ([]models.SpendEntry, error)
	DeleteByMBA(ctx context.Context, mbaID id.MBAID) error
}

// Recorder is the audit sink. Log never returns an error; a failed write is
// the recorder's problem, not the mutation's.
type Recorder interface {
	Log(ctx context.Context, entry audit.Entry)
}

// AuditReader serves the audit trail listing.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Record, error)
}

// Service orchestrates clients, MBAs, spend entries, and invoices.
type Service struct {
	clients     ClientStore
	mbas        MBAStore
	invoices    InvoiceStore
	spend       SpendStore
	recorder    Recorder
	auditReader AuditReader
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tx          tx.Runner
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

func WithAuditReader(reader AuditReader) Option {
	return func(s *Service) {
		s.auditReader = reader
	}
}

func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

// New constructs a Service. Without WithTxRunner the unit-of-work callbacks
// run without a transaction, which is what the in-memory stores expect.
func New(clients ClientStore, mbas MBAStore, invoices InvoiceStore, spend SpendStore, opts ...Option) *Service {
	s := &Service{
		clients:  clients,
		mbas:     mbas,
		invoices: invoices,
		spend:    spend,
		tx:       tx.NewPassthroughRunner(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuditTrail returns the most recent audit records, newest first.
func (s *Service) AuditTrail(ctx context.Context) ([]audit.Record, error) {
	if s.auditReader == nil {
		return nil, nil
	}
	records, err := s.auditReader.ListRecent(ctx, auditTrailLimit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
	}
	return records, nil
}

const auditTrailLimit = 100

func (s *Service) record(ctx context.Context, entry audit.Entry) {
	if s.recorder != nil {
		s.recorder.Log(ctx, entry)
	}
	if s.metrics != nil {
		s.metrics.IncrementMutation(string(entry.EntityType), string(entry.Action))
	}
}

// asValidation downgrades constructor invariant violations to validation
// errors for the API response.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return err
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}
