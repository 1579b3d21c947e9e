// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order
// model and the derived per-proposal aggregates.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
)

// OrderFields are the mutable columns of an order. Update replaces all of them.
type OrderFields struct {
	UserName string
	Item     string
	Price    int64
	Remarks  string
}

// CreateOrder inserts o and fills in its generated ID.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return db.WithContext(ctx).Omit("Proposal").Create(o).Error
}

// ListOrdersByProposal returns the orders of a proposal in insertion order.
func ListOrdersByProposal(ctx context.Context, db *gorm.DB, proposalID int64) ([]domain.Order, error) {
	out := []domain.Order{}
	err := db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// UpdateOrder replaces the mutable fields of order id. It returns ErrNotFound
// when no row matched.
func UpdateOrder(ctx context.Context, db *gorm.DB, id int64, f OrderFields) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"user_name": f.UserName,
			"item":      f.Item,
			"price":     f.Price,
			"remarks":   f.Remarks,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOrder removes order id. It returns ErrNotFound when no row matched.
func DeleteOrder(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AggregateOrdersFor returns the price total and order count of one
// proposal; both are 0 when it has no orders.
func AggregateOrdersFor(ctx context.Context, db *gorm.DB, proposalID int64) (domain.Aggregate, error) {
	var agg domain.Aggregate
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("COALESCE(SUM(price), 0) AS total, COUNT(*) AS count").
		Where("proposal_id = ?", proposalID).
		Scan(&agg).Error
	return agg, err
}

// AggregateOrders computes aggregates for many proposals with one grouped
// query. Proposals without orders are absent from the map; callers treat a
// missing key as the zero Aggregate.
func AggregateOrders(ctx context.Context, db *gorm.DB, proposalIDs []int64) (map[int64]domain.Aggregate, error) {
	out := make(map[int64]domain.Aggregate, len(proposalIDs))
	if len(proposalIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ProposalID int64
		Total      int64
		Count      int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("proposal_id, COALESCE(SUM(price), 0) AS total, COUNT(*) AS count").
		Where("proposal_id IN ?", proposalIDs).
		Group("proposal_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ProposalID] = domain.Aggregate{Total: r.Total, Count: r.Count}
	}
	return out, nil
}
