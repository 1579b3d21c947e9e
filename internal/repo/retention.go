// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the retention purge used by the
// services.RetentionSweeper.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
)

// PurgeClosedBefore deletes every CLOSED proposal created before cutoff,
// together with its orders and the idempotency records that point at either,
// in a single transaction. It returns the ids of the purged proposals (empty
// when nothing qualified).
//
// Orders are deleted explicitly before their proposal so the purge does not
// depend on the foreign-key pragma being enabled.
func PurgeClosedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]int64, error) {
	ids := []int64{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Proposal{}).
			Where("status = ? AND created_at < ?", domain.StatusClosed, cutoff).
			Order("id ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		var orderIDs []int64
		if err := tx.Model(&domain.Order{}).Where("proposal_id IN ?", ids).Pluck("id", &orderIDs).Error; err != nil {
			return err
		}
		idem := tx.Where("resource = ? AND resource_id IN ?", domain.IdemResourceProposal, ids)
		if len(orderIDs) > 0 {
			idem = idem.Or("resource = ? AND resource_id IN ?", domain.IdemResourceOrder, orderIDs)
		}
		if err := idem.Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		if err := tx.Where("proposal_id IN ?", ids).Delete(&domain.Order{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&domain.Proposal{}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
