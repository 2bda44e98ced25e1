package audit

import (
	"context"
	"log/slog"

	"mbatrack/internal/platform/metrics"
	"mbatrack/pkg/requestcontext"
)

// Store is the outbound persistence dependency: exactly one create per
// recorded mutation. Implementations live under internal/audit/store.
type Store interface {
	Create(ctx context.Context, record *Record) error
}

// Reader lists persisted records for the audit trail page.
type Reader interface {
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// Entry describes one mutation to record. Changes is nil for CREATE and for
// no-op updates. UserID and UserEmail override the actor identity from the
// request context when set.
type Entry struct {
	EntityType EntityType
	EntityID   string
	Action     Action
	Changes    Changes
	UserID     string
	UserEmail  string
}

// Recorder persists audit records best-effort. Persistence failures are
// logged and counted, never returned: the triggering business operation must
// complete regardless of audit subsystem health. No retries, no queueing, no
// dead-letter path.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Recorder.
type Option func(r *Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// NewRecorder constructs a Recorder around the given store.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Log records one mutation. It always returns normally; callers are expected
// to ignore the absence of a result.
func (r *Recorder) Log(ctx context.Context, entry Entry) {
	record := &Record{
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		Changes:    entry.Changes,
		UserID:     entry.UserID,
		UserEmail:  entry.UserEmail,
	}
	// Empty diffs normalize to absent before the record is written.
	if len(record.Changes) == 0 {
		record.Changes = nil
	}
	if record.UserID == "" {
		record.UserID = requestcontext.ActorID(ctx)
	}
	if record.UserEmail == "" {
		record.UserEmail = requestcontext.ActorEmail(ctx)
	}

	if r.metrics != nil {
		r.metrics.AuditWritesTotal.Inc()
	}

	if err := r.store.Create(ctx, record); err != nil {
		if r.metrics != nil {
			r.metrics.AuditWritesFailed.Inc()
		}
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "failed to write audit record",
				"error", err,
				"entity_type", record.EntityType,
				"entity_id", record.EntityID,
				"action", record.Action,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return
	}

	if r.logger != nil {
		r.logger.InfoContext(ctx, string(record.Action),
			"log_type", "audit",
			"entity_type", record.EntityType,
			"entity_id", record.EntityID,
			"changed_fields", len(record.Changes),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
