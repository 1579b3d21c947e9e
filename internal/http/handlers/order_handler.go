// Order HTTP handlers.
//
// This file exposes REST endpoints for orders attached to a proposal:
//   - GET    /orders/{proposal_id} (list, weak ETag support)
//   - POST   /orders               (create)
//   - PUT    /orders/{id}          (full replace)
//   - DELETE /orders/{id}          (delete)
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
	"github.com/tbourn/go-groupbuy-backend/internal/services"
	"github.com/tbourn/go-groupbuy-backend/internal/utils"
)

//
// DTOs
//

// CreateOrderRequest is the JSON payload for adding an order.
type CreateOrderRequest struct {
	// ProposalID accepts a number or numeric string.
	ProposalID json.RawMessage `json:"proposal_id" swaggertype:"integer" example:"1"`
	UserName   *string         `json:"user_name" example:"bob"`
	Item       *string         `json:"item" example:"beef noodles"`
	// Price accepts a number or numeric string.
	Price   json.RawMessage `json:"price" swaggertype:"integer" example:"200"`
	Remarks *string         `json:"remarks" example:"extra spicy"`
}

// UpdateOrderRequest is the JSON payload for replacing an order's fields.
type UpdateOrderRequest struct {
	UserName *string         `json:"user_name" example:"bob"`
	Item     *string         `json:"item" example:"beef noodles"`
	Price    json.RawMessage `json:"price" swaggertype:"integer" example:"300"`
	Remarks  *string         `json:"remarks" example:""`
}

//
// Handlers
//

// ListOrders godoc
// @ID          listOrders
// @Summary     List orders of a proposal
// @Description Returns orders in insertion order. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Orders
// @Produce     json
// @Param       proposal_id    path    int     true   "Proposal ID"  minimum(1)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {array}   domain.Order
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/{proposal_id} [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	proposalID, valid := pathID(c, "proposal_id")
	if !valid {
		return
	}

	// ETag pre-check (best effort).
	if count, maxTS, err := h.orders.Stats(ctx, proposalID); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"orders:%d:%d:%d"`, proposalID, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			notModified(c)
			return
		}
	}

	items, err := h.orders.ListByProposal(ctx, proposalID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Order{}
	}
	ok(c, http.StatusOK, items)
}

// CreateOrder godoc
// @ID          createOrder
// @Summary     Add an order to a proposal
// @Description Supports safe retries via the Idempotency-Key header.
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body  body  handlers.CreateOrderRequest  true  "Order payload"
// @Success     201  {object}  handlers.CreatedResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Proposal not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Same Idempotency-Key still in progress"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders [post]
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	proposalID, err := utils.ParseInt(req.ProposalID)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "proposal_id must be an integer")
		return
	}
	if name := missingField(
		namedField{"user_name", req.UserName},
		namedField{"item", req.Item},
	); name != "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" is required")
		return
	}
	price, err := utils.ParseInt(req.Price)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrInvalidPrice.Error())
		return
	}

	if h.claim(c, domain.IdemResourceOrder) {
		return
	}

	o, err := h.orders.Create(c.Request.Context(), services.NewOrder{
		ProposalID: proposalID,
		UserName:   *req.UserName,
		Item:       *req.Item,
		Price:      price,
		Remarks:    deref(req.Remarks),
	})
	if err != nil {
		h.release(c)
		if errors.Is(err, services.ErrProposalNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "proposal not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	h.complete(c, o.ID)
	created(c, o.ID)
}

// UpdateOrder godoc
// @ID          updateOrder
// @Summary     Replace an order
// @Description Overwrites user_name, item, price and remarks. An unknown id is acknowledged with found=false.
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Param       id    path  int  true  "Order ID"  minimum(1)
// @Param       body  body  handlers.UpdateOrderRequest  true  "Order fields"
// @Success     200  {object}  handlers.AckResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/{id} [put]
func (h *Handlers) UpdateOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if name := missingField(
		namedField{"user_name", req.UserName},
		namedField{"item", req.Item},
	); name != "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" is required")
		return
	}
	price, err := utils.ParseInt(req.Price)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrInvalidPrice.Error())
		return
	}

	out, err := h.orders.Update(c.Request.Context(), id, services.OrderFields{
		UserName: *req.UserName,
		Item:     *req.Item,
		Price:    price,
		Remarks:  deref(req.Remarks),
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	ack(c, out.Found())
}

// DeleteOrder godoc
// @ID          deleteOrder
// @Summary     Delete an order
// @Description An unknown id is acknowledged with found=false.
// @Tags        Orders
// @Produce     json
// @Param       id   path  int  true  "Order ID"  minimum(1)
// @Success     200  {object}  handlers.AckResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/{id} [delete]
func (h *Handlers) DeleteOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	out, err := h.orders.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	ack(c, out.Found())
}
