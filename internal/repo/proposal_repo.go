// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Proposal
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside a transaction or on the shared pool. They follow the "thin
// repository" approach: no business rules, only persistence and query
// composition. Lifecycle rules (status transitions, retention) live in the
// services package.
//
// Error semantics:
//   - When a proposal is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateProposal inserts p and fills in its generated ID. The caller is
// responsible for Status and CreatedAt.
func CreateProposal(ctx context.Context, db *gorm.DB, p *domain.Proposal) error {
	return db.WithContext(ctx).Create(p).Error
}

// ListProposals returns every proposal, most recently created first
// (descending id). It returns an empty slice when there are none.
func ListProposals(ctx context.Context, db *gorm.DB) ([]domain.Proposal, error) {
	out := []domain.Proposal{}
	err := db.WithContext(ctx).
		Order("id desc").
		Find(&out).Error
	return out, err
}

// GetProposal fetches a single proposal by id, or ErrNotFound.
func GetProposal(ctx context.Context, db *gorm.DB, id int64) (*domain.Proposal, error) {
	var p domain.Proposal
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ProposalExists reports whether a proposal with id is present.
func ProposalExists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Proposal{}).
		Where("id = ?", id).
		Count(&n).Error
	return n > 0, err
}

// SetProposalStatus writes status for the proposal with id. It returns
// ErrNotFound when no row matched.
func SetProposalStatus(ctx context.Context, db *gorm.DB, id int64, status domain.ProposalStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Proposal{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
