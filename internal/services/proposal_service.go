// Package services – ProposalService
//
// ProposalService owns the proposal lifecycle: creation, listing with order
// aggregates, lookup and closing. Listing runs the retention sweep first so a
// purgeable proposal is never returned.
//
// Observability: public methods are OpenTelemetry-instrumented with the
// proposal id as a span attribute where one applies.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
)

// ProposalRepo defines the repository contract required by ProposalService.
type ProposalRepo interface {
	// CreateProposal inserts p and assigns its ID.
	CreateProposal(ctx context.Context, db *gorm.DB, p *domain.Proposal) error

	// ListProposals returns every proposal, newest first.
	ListProposals(ctx context.Context, db *gorm.DB) ([]domain.Proposal, error)

	// GetProposal fetches one proposal or returns gorm.ErrRecordNotFound.
	GetProposal(ctx context.Context, db *gorm.DB, id int64) (*domain.Proposal, error)

	// SetProposalStatus writes a new status or returns gorm.ErrRecordNotFound.
	SetProposalStatus(ctx context.Context, db *gorm.DB, id int64, status domain.ProposalStatus) error

	// AggregateOrders returns totals keyed by proposal id; ids without orders
	// are absent from the map.
	AggregateOrders(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]domain.Aggregate, error)

	// AggregateOrdersFor returns the totals of a single proposal.
	AggregateOrdersFor(ctx context.Context, db *gorm.DB, id int64) (domain.Aggregate, error)
}

// NewProposal carries the caller-supplied fields of a proposal.
type NewProposal struct {
	ShopName     string
	MenuLink     string
	Deadline     string
	DeliveryTime string
	Category     string
	Initiator    string
	Platform     string
	Threshold    int64
	Remarks      string
}

// ProposalView is a proposal combined with its derived order aggregate.
type ProposalView struct {
	domain.Proposal
	domain.Aggregate
}

// ProposalService provides proposal-level operations.
type ProposalService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the proposal repository used by this service.
	Repo ProposalRepo
	// Sweeper, when set, runs before every listing.
	Sweeper Sweeper
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewProposalService constructs a ProposalService.
func NewProposalService(db *gorm.DB, r ProposalRepo, sw Sweeper) *ProposalService {
	return &ProposalService{DB: db, Repo: r, Sweeper: sw}
}

func (s *ProposalService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create stores a new OPEN proposal stamped with the current minute (UTC).
func (s *ProposalService) Create(ctx context.Context, in NewProposal) (*domain.Proposal, error) {
	tr := otel.Tracer("services/ProposalService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int64("proposal.threshold", in.Threshold)),
	)
	defer span.End()

	if in.Threshold < 0 {
		return nil, ErrInvalidThreshold
	}

	p := &domain.Proposal{
		ShopName:     normalizeName(in.ShopName),
		MenuLink:     in.MenuLink,
		Deadline:     in.Deadline,
		DeliveryTime: in.DeliveryTime,
		Category:     normalizeName(in.Category),
		Initiator:    normalizeName(in.Initiator),
		Platform:     normalizeName(in.Platform),
		Threshold:    in.Threshold,
		Remarks:      in.Remarks,
		Status:       domain.StatusOpen,
		CreatedAt:    s.now().UTC().Truncate(time.Minute),
	}
	if err := s.Repo.CreateProposal(ctx, s.DB, p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("proposal.id", p.ID))
	return p, nil
}

// List sweeps expired closed proposals, then returns every remaining
// proposal newest first with its aggregate. A failed sweep is logged and the
// listing proceeds.
func (s *ProposalService) List(ctx context.Context) ([]ProposalView, error) {
	tr := otel.Tracer("services/ProposalService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	if s.Sweeper != nil {
		if _, err := s.Sweeper.Sweep(ctx); err != nil {
			span.RecordError(err)
			log.Error().Err(err).Msg("retention sweep failed; listing continues")
		}
	}

	items, err := s.Repo.ListProposals(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	views := make([]ProposalView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	aggs, err := s.Repo.AggregateOrders(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range items {
		views = append(views, ProposalView{Proposal: p, Aggregate: aggs[p.ID]})
	}
	span.SetAttributes(attribute.Int("proposal.count", len(views)))
	return views, nil
}

// Get returns one proposal with its aggregate, or ErrProposalNotFound.
func (s *ProposalService) Get(ctx context.Context, id int64) (*ProposalView, error) {
	tr := otel.Tracer("services/ProposalService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("proposal.id", id)),
	)
	defer span.End()

	p, err := s.Repo.GetProposal(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	agg, err := s.Repo.AggregateOrdersFor(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	return &ProposalView{Proposal: *p, Aggregate: agg}, nil
}

// Close moves a proposal to CLOSED. Closing an already closed proposal is a
// no-op reported as Found; a missing id is reported as NotFound.
func (s *ProposalService) Close(ctx context.Context, id int64) (Outcome, error) {
	tr := otel.Tracer("services/ProposalService")
	ctx, span := tr.Start(ctx, "Close",
		trace.WithAttributes(attribute.Int64("proposal.id", id)),
	)
	defer span.End()

	out := NotFound
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Repo.GetProposal(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		out = Found

		changed, err := p.Status.Transition(domain.StatusClosed)
		if err != nil || !changed {
			return err
		}
		return s.Repo.SetProposalStatus(ctx, tx, id, domain.StatusClosed)
	})
	if err != nil {
		span.RecordError(err)
		return NotFound, err
	}
	span.SetAttributes(attribute.String("proposal.outcome", out.String()))
	return out, nil
}
