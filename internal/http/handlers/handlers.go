package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
	"github.com/tbourn/go-groupbuy-backend/internal/http/middleware"
	"github.com/tbourn/go-groupbuy-backend/internal/services"
	"github.com/tbourn/go-groupbuy-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ProposalService defines proposal lifecycle operations consumed by handlers.
type ProposalService interface {
	Create(ctx context.Context, in services.NewProposal) (*domain.Proposal, error)
	List(ctx context.Context) ([]services.ProposalView, error)
	Get(ctx context.Context, id int64) (*services.ProposalView, error)
	Close(ctx context.Context, id int64) (services.Outcome, error)
}

// OrderService defines order operations consumed by handlers.
type OrderService interface {
	Create(ctx context.Context, in services.NewOrder) (*domain.Order, error)
	ListByProposal(ctx context.Context, proposalID int64) ([]domain.Order, error)
	Update(ctx context.Context, id int64, f services.OrderFields) (services.Outcome, error)
	Delete(ctx context.Context, id int64) (services.Outcome, error)
	// Stats returns the order count and newest update time for ETags.
	Stats(ctx context.Context, proposalID int64) (int64, *time.Time, error)
}

// Sweeper runs the retention policy on demand.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// IdempotencyStore reserves Idempotency-Keys for creates and remembers the
// resource each key produced.
type IdempotencyStore interface {
	Claim(ctx context.Context, scope, key, resource string) (services.Claim, error)
	Complete(ctx context.Context, scope, key string, resourceID int64, status int) error
	Release(ctx context.Context, scope, key string) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for proposals, orders and maintenance.
type Handlers struct {
	proposals ProposalService
	orders    OrderService
	sweeper   Sweeper
	idem      IdempotencyStore
}

// New constructs Handlers bound to the given services. idem may be nil, in
// which case Idempotency-Key headers are validated but not replayed.
func New(proposals ProposalService, orders OrderService, sweeper Sweeper, idem IdempotencyStore) *Handlers {
	return &Handlers{proposals: proposals, orders: orders, sweeper: sweeper, idem: idem}
}

//
// Helpers
//

// pathID parses a positive integer path parameter or writes a 400.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// missingField returns the name of the first nil field, or "".
func missingField(fields ...namedField) string {
	for _, f := range fields {
		if f.v == nil {
			return f.name
		}
	}
	return ""
}

type namedField struct {
	name string
	v    *string
}

// deref returns *s or "" when s is nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ctxKeyIdemClaimed marks a request that owns its Idempotency-Key.
const ctxKeyIdemClaimed = "idem.claimed"

// claim reserves the request's Idempotency-Key before a create. It reports
// whether a response was already written: a replay of the stored result, or
// a 409 while another request with the same key is still running.
func (h *Handlers) claim(c *gin.Context, resource string) bool {
	key, has := middleware.GetIdempotencyKey(c)
	if h.idem == nil || !has {
		return false
	}
	cl, err := h.idem.Claim(c.Request.Context(), c.FullPath(), key, resource)
	switch {
	case errors.Is(err, services.ErrIdempotencyInFlight):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		return true
	case err != nil:
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency claim failed")
		return false
	case cl.Replay:
		c.Header("Idempotency-Replayed", "true")
		created(c, cl.ResourceID)
		return true
	}
	c.Set(ctxKeyIdemClaimed, true)
	return false
}

// complete stores the created id under the claimed key. Failures are
// logged; the create itself already succeeded.
func (h *Handlers) complete(c *gin.Context, id int64) {
	key, has := middleware.GetIdempotencyKey(c)
	if !has || !c.GetBool(ctxKeyIdemClaimed) {
		return
	}
	if err := h.idem.Complete(c.Request.Context(), c.FullPath(), key, id, http.StatusCreated); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency store failed")
	}
}

// release frees the claimed key after a failed create.
func (h *Handlers) release(c *gin.Context) {
	key, has := middleware.GetIdempotencyKey(c)
	if !has || !c.GetBool(ctxKeyIdemClaimed) {
		return
	}
	if err := h.idem.Release(c.Request.Context(), c.FullPath(), key); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency release failed")
	}
}
