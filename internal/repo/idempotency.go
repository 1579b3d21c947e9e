package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (scope, key) pair.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(scope) == "" || strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("scope = ? AND idem_key = ? AND expires_at > ?", scope, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ClaimIdempotency reserves (scope, key) with a pending record that lives for
// ttl. An expired record for the same pair is replaced. It returns
// ErrDuplicate when a live record already holds the key.
func ClaimIdempotency(ctx context.Context, db *gorm.DB, scope, key, resource string, ttl time.Duration, now time.Time) (*domain.Idempotency, error) {
	rec := &domain.Idempotency{
		Scope:     scope,
		Key:       key,
		Resource:  resource,
		Status:    domain.IdemStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scope = ? AND idem_key = ? AND expires_at <= ?", scope, key, now).
			Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
	switch {
	case err == nil:
		return rec, nil
	case isUniqueViolation(err):
		return nil, ErrDuplicate
	default:
		return nil, err
	}
}

// CompleteIdempotency stores the created resource on a claimed record and
// extends its expiry to now+ttl. A missing record yields ErrNotFound.
func CompleteIdempotency(ctx context.Context, db *gorm.DB, scope, key string, resourceID int64, status int, ttl time.Duration, now time.Time) error {
	res := db.WithContext(ctx).Model(&domain.Idempotency{}).
		Where("scope = ? AND idem_key = ?", scope, key).
		Updates(map[string]any{
			"resource_id": resourceID,
			"status":      status,
			"expires_at":  now.Add(ttl),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReleaseIdempotency drops a pending claim. Completed records are kept.
func ReleaseIdempotency(ctx context.Context, db *gorm.DB, scope, key string) error {
	return db.WithContext(ctx).
		Where("scope = ? AND idem_key = ? AND status = ?", scope, key, domain.IdemStatusPending).
		Delete(&domain.Idempotency{}).Error
}

// uniqueMarkers are lower-cased fragments of unique-violation messages from
// SQLite ("UNIQUE constraint failed"), Postgres ("duplicate key value") and
// MySQL ("Duplicate entry"), for drivers that skip gorm's error translation.
var uniqueMarkers = []string{"unique constraint failed", "constraint failed: unique", "duplicate key", "duplicate entry"}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	for _, m := range uniqueMarkers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}

// PurgeExpiredIdempotency removes records whose TTL elapsed before now and
// returns how many were deleted.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
