package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-groupbuy-backend/internal/repo"
)

const (
	// DefaultIdempotencyTTL bounds how long a create can be replayed by key.
	DefaultIdempotencyTTL = 24 * time.Hour
	// DefaultIdempotencyPendingTTL bounds how long an unfinished claim blocks
	// its key, e.g. after a crash between claim and completion.
	DefaultIdempotencyPendingTTL = time.Minute
)

// ErrIdempotencyInFlight is returned by Claim while another request holding
// the same key has not finished its create.
var ErrIdempotencyInFlight = errors.New("a request with this idempotency key is still in progress")

// Claim is the result of reserving an Idempotency-Key. Replay is set when
// the key already produced ResourceID and the create must not run again.
type Claim struct {
	ResourceID int64
	Replay     bool
}

// IdempotencyService records the results of create requests that carried an
// Idempotency-Key so retries return the original resource id.
//
// Keys are claimed before the create runs. The unique (scope, key) index
// lets exactly one concurrent request win the claim; the others either
// replay the finished result or get ErrIdempotencyInFlight.
type IdempotencyService struct {
	DB  *gorm.DB
	TTL time.Duration
	// PendingTTL defaults to DefaultIdempotencyPendingTTL when zero.
	PendingTTL time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *IdempotencyService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *IdempotencyService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultIdempotencyTTL
	}
	return s.TTL
}

func (s *IdempotencyService) pendingTTL() time.Duration {
	if s.PendingTTL <= 0 {
		return DefaultIdempotencyPendingTTL
	}
	return s.PendingTTL
}

// Claim reserves (scope, key) for a create of the given resource kind
// (domain.IdemResourceProposal or domain.IdemResourceOrder). A zero Claim
// with a nil error means the caller owns the key and must Complete or
// Release it.
func (s *IdempotencyService) Claim(ctx context.Context, scope, key, resource string) (Claim, error) {
	now := s.now()
	_, err := repo.ClaimIdempotency(ctx, s.DB, scope, key, resource, s.pendingTTL(), now)
	if err == nil {
		return Claim{}, nil
	}
	if !errors.Is(err, repo.ErrDuplicate) {
		return Claim{}, err
	}

	rec, err := repo.GetIdempotency(ctx, s.DB, scope, key, now)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		// The holder released or expired between the two statements.
		return Claim{}, ErrIdempotencyInFlight
	case err != nil:
		return Claim{}, err
	case rec.Pending():
		return Claim{}, ErrIdempotencyInFlight
	}
	return Claim{ResourceID: rec.ResourceID, Replay: true}, nil
}

// Complete stores the created resource for a claimed key.
func (s *IdempotencyService) Complete(ctx context.Context, scope, key string, resourceID int64, status int) error {
	return repo.CompleteIdempotency(ctx, s.DB, scope, key, resourceID, status, s.ttl(), s.now())
}

// Release frees a claimed key after a failed create so the client can retry.
func (s *IdempotencyService) Release(ctx context.Context, scope, key string) error {
	return repo.ReleaseIdempotency(ctx, s.DB, scope, key)
}

// Exists matches middleware.IdempotencyLookup. Only finished creates count;
// a pending claim is not a replay.
func (s *IdempotencyService) Exists(ctx context.Context, scope, key string, now time.Time) (bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !rec.Pending(), nil
}
