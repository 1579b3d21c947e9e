// Package services – RetentionSweeper
//
// RetentionSweeper purges CLOSED proposals, together with their orders, once
// the grace period measured from the proposal's creation time has elapsed.
// OPEN proposals are never purged regardless of age.
//
// A sweep is an explicit maintenance step. It runs before every listing and
// can also be triggered over HTTP or from the CLI.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/internal/observability"
	"github.com/tbourn/go-groupbuy-backend/internal/repo"
)

// DefaultRetentionGrace is the age after which closed proposals are purged.
const DefaultRetentionGrace = 48 * time.Hour

// Sweeper is the retention contract consumed by ProposalService and the
// maintenance handler.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// RetentionSweeper deletes closed proposals older than Grace.
type RetentionSweeper struct {
	DB *gorm.DB
	// Grace defaults to DefaultRetentionGrace when zero.
	Grace time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewRetentionSweeper returns a sweeper with the given grace period.
func NewRetentionSweeper(db *gorm.DB, grace time.Duration) *RetentionSweeper {
	return &RetentionSweeper{DB: db, Grace: grace}
}

// Cutoff returns the creation-time boundary: proposals created strictly
// before it are eligible for purging.
func (s *RetentionSweeper) Cutoff() time.Time {
	return s.cutoffAt(s.now())
}

func (s *RetentionSweeper) cutoffAt(now time.Time) time.Time {
	grace := s.Grace
	if grace <= 0 {
		grace = DefaultRetentionGrace
	}
	return now.UTC().Add(-grace).Truncate(time.Minute)
}

func (s *RetentionSweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Sweep purges eligible proposals and their orders in one transaction and
// returns the number of proposals removed. Expired idempotency records are
// pruned afterwards; failures there are logged only.
func (s *RetentionSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := s.cutoffAt(now)

	tr := otel.Tracer("services/RetentionSweeper")
	ctx, span := tr.Start(ctx, "Sweep",
		trace.WithAttributes(attribute.String("retention.cutoff", cutoff.Format(time.RFC3339))),
	)
	defer span.End()

	ids, err := repo.PurgeClosedBefore(ctx, s.DB, cutoff)
	if err != nil {
		span.RecordError(err)
		observability.RetentionSweeps.WithLabelValues("error").Inc()
		return 0, err
	}
	observability.RetentionSweeps.WithLabelValues("ok").Inc()

	if n := len(ids); n > 0 {
		observability.ProposalsPurged.Add(float64(n))
		log.Info().
			Int("purged", n).
			Ints64("proposal_ids", ids).
			Time("cutoff", cutoff).
			Msg("retention sweep purged closed proposals")
	}
	span.SetAttributes(attribute.Int("retention.purged", len(ids)))

	if n, err := repo.PurgeExpiredIdempotency(ctx, s.DB, now); err != nil {
		log.Warn().Err(err).Msg("purge expired idempotency records")
	} else if n > 0 {
		log.Debug().Int64("purged", n).Msg("expired idempotency records removed")
	}

	return len(ids), nil
}
