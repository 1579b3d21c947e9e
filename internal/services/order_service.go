// Package services – OrderService
//
// OrderService manages the orders attached to a proposal. Creation checks that
// the proposal exists inside the same transaction as the insert. Updates and
// deletes on missing ids are reported through Outcome rather than as errors.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
	"github.com/tbourn/go-groupbuy-backend/internal/repo"
)

// NewOrder carries the caller-supplied fields of an order.
type NewOrder struct {
	ProposalID int64
	UserName   string
	Item       string
	Price      int64
	Remarks    string
}

// OrderFields is the full replacement applied by Update.
type OrderFields struct {
	UserName string
	Item     string
	Price    int64
	Remarks  string
}

// OrderService provides order-level operations.
type OrderService struct {
	DB *gorm.DB
}

// Create attaches a new order to an existing proposal.
func (s *OrderService) Create(ctx context.Context, in NewOrder) (*domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int64("proposal.id", in.ProposalID)),
	)
	defer span.End()

	if in.ProposalID <= 0 {
		return nil, ErrProposalNotFound
	}

	o := &domain.Order{
		ProposalID: in.ProposalID,
		UserName:   normalizeName(in.UserName),
		Item:       normalizeName(in.Item),
		Price:      in.Price,
		Remarks:    in.Remarks,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repo.ProposalExists(ctx, tx, in.ProposalID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrProposalNotFound
		}
		return repo.CreateOrder(ctx, tx, o)
	})
	if err != nil {
		if !errors.Is(err, ErrProposalNotFound) {
			span.RecordError(err)
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", o.ID))
	return o, nil
}

// ListByProposal returns the orders of a proposal in insertion order. An
// unknown proposal yields an empty list.
func (s *OrderService) ListByProposal(ctx context.Context, proposalID int64) ([]domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "ListByProposal",
		trace.WithAttributes(attribute.Int64("proposal.id", proposalID)),
	)
	defer span.End()

	return repo.ListOrdersByProposal(ctx, s.DB, proposalID)
}

// Update replaces the mutable fields of an order.
func (s *OrderService) Update(ctx context.Context, id int64, f OrderFields) (Outcome, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("order.id", id)),
	)
	defer span.End()

	err := repo.UpdateOrder(ctx, s.DB, id, repo.OrderFields{
		UserName: normalizeName(f.UserName),
		Item:     normalizeName(f.Item),
		Price:    f.Price,
		Remarks:  f.Remarks,
	})
	return outcomeOf(span, err)
}

// Delete removes an order.
func (s *OrderService) Delete(ctx context.Context, id int64) (Outcome, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("order.id", id)),
	)
	defer span.End()

	return outcomeOf(span, repo.DeleteOrder(ctx, s.DB, id))
}

// Aggregate returns the order total and count for a proposal.
func (s *OrderService) Aggregate(ctx context.Context, proposalID int64) (domain.Aggregate, error) {
	return repo.AggregateOrdersFor(ctx, s.DB, proposalID)
}

// Stats returns the order count and latest update time of a proposal, used
// for conditional GETs.
func (s *OrderService) Stats(ctx context.Context, proposalID int64) (int64, *time.Time, error) {
	return repo.OrdersStats(ctx, s.DB, proposalID)
}

func outcomeOf(span trace.Span, err error) (Outcome, error) {
	switch {
	case err == nil:
		return Found, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound, nil
	default:
		span.RecordError(err)
		return NotFound, err
	}
}
