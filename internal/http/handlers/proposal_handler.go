// Proposal HTTP handlers.
//
// This file exposes REST endpoints for proposal resources:
//   - GET  /proposals            (list with order totals; runs retention first)
//   - POST /proposals            (create)
//   - GET  /proposals/{id}       (fetch one)
//   - PUT  /proposals/{id}/close (close, idempotent)
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
	"github.com/tbourn/go-groupbuy-backend/internal/services"
	"github.com/tbourn/go-groupbuy-backend/internal/utils"
)

//
// DTOs
//

// CreateProposalRequest is the JSON payload for opening a proposal. Every
// text key except remarks must be present; empty strings are accepted.
type CreateProposalRequest struct {
	ShopName     *string `json:"shop_name" example:"Noodle House"`
	MenuLink     *string `json:"menu_link" example:"https://menu.example/noodle"`
	Deadline     *string `json:"deadline" example:"11:30"`
	DeliveryTime *string `json:"delivery_time" example:"12:15"`
	Category     *string `json:"category" example:"lunch"`
	Initiator    *string `json:"initiator" example:"alice"`
	Platform     *string `json:"platform" example:"foodpanda"`
	// Threshold accepts a number or numeric string; absent, null, "" or 0 mean none.
	Threshold json.RawMessage `json:"threshold" swaggertype:"integer" example:"500"`
	Remarks   *string         `json:"remarks" example:"no coriander"`
}

// ProposalResponse is a proposal as rendered on the wire, with its totals.
type ProposalResponse struct {
	ID           int64  `json:"id" example:"1"`
	ShopName     string `json:"shop_name" example:"Noodle House"`
	MenuLink     string `json:"menu_link" example:"https://menu.example/noodle"`
	Deadline     string `json:"deadline" example:"11:30"`
	DeliveryTime string `json:"delivery_time" example:"12:15"`
	Category     string `json:"category" example:"lunch"`
	Initiator    string `json:"initiator" example:"alice"`
	Platform     string `json:"platform" example:"foodpanda"`
	Threshold    int64  `json:"threshold" example:"500"`
	Remarks      string `json:"remarks" example:""`
	Status       string `json:"status" example:"OPEN" enums:"OPEN,CLOSED"`
	CreatedAt    string `json:"created_at" example:"2024-05-01 12:30"`
	CurrentTotal int64  `json:"current_total" example:"350"`
	OrderCount   int64  `json:"order_count" example:"2"`
}

func toProposalResponse(v services.ProposalView) ProposalResponse {
	return ProposalResponse{
		ID:           v.ID,
		ShopName:     v.ShopName,
		MenuLink:     v.MenuLink,
		Deadline:     v.Deadline,
		DeliveryTime: v.DeliveryTime,
		Category:     v.Category,
		Initiator:    v.Initiator,
		Platform:     v.Platform,
		Threshold:    v.Threshold,
		Remarks:      v.Remarks,
		Status:       string(v.Status),
		CreatedAt:    v.CreatedAt.UTC().Format(domain.MinuteLayout),
		CurrentTotal: v.Total,
		OrderCount:   v.Count,
	}
}

//
// Handlers
//

// ListProposals godoc
// @ID          listProposals
// @Summary     List proposals
// @Description Purges expired closed proposals, then returns all proposals newest first with their order totals.
// @Tags        Proposals
// @Produce     json
// @Success     200  {array}   handlers.ProposalResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /proposals [get]
func (h *Handlers) ListProposals(c *gin.Context) {
	views, err := h.proposals.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	out := make([]ProposalResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toProposalResponse(v))
	}
	ok(c, http.StatusOK, out)
}

// CreateProposal godoc
// @ID          createProposal
// @Summary     Open a proposal
// @Description Creates an OPEN proposal. Supports safe retries via the Idempotency-Key header.
// @Tags        Proposals
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body  body  handlers.CreateProposalRequest  true  "Proposal payload"
// @Success     201  {object}  handlers.CreatedResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Same Idempotency-Key still in progress"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /proposals [post]
func (h *Handlers) CreateProposal(c *gin.Context) {
	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if name := missingField(
		namedField{"shop_name", req.ShopName},
		namedField{"menu_link", req.MenuLink},
		namedField{"deadline", req.Deadline},
		namedField{"delivery_time", req.DeliveryTime},
		namedField{"category", req.Category},
		namedField{"initiator", req.Initiator},
		namedField{"platform", req.Platform},
	); name != "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" is required")
		return
	}
	threshold, err := utils.IntOrZero(req.Threshold)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrInvalidThreshold.Error())
		return
	}

	if h.claim(c, domain.IdemResourceProposal) {
		return
	}

	p, err := h.proposals.Create(c.Request.Context(), services.NewProposal{
		ShopName:     *req.ShopName,
		MenuLink:     *req.MenuLink,
		Deadline:     *req.Deadline,
		DeliveryTime: *req.DeliveryTime,
		Category:     *req.Category,
		Initiator:    *req.Initiator,
		Platform:     *req.Platform,
		Threshold:    threshold,
		Remarks:      deref(req.Remarks),
	})
	if err != nil {
		h.release(c)
		if errors.Is(err, services.ErrInvalidThreshold) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	h.complete(c, p.ID)
	created(c, p.ID)
}

// GetProposal godoc
// @ID          getProposal
// @Summary     Fetch a proposal
// @Tags        Proposals
// @Produce     json
// @Param       id   path  int  true  "Proposal ID"  minimum(1)
// @Success     200  {object}  handlers.ProposalResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Proposal not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /proposals/{id} [get]
func (h *Handlers) GetProposal(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	v, err := h.proposals.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProposalNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "proposal not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, toProposalResponse(*v))
}

// CloseProposal godoc
// @ID          closeProposal
// @Summary     Close a proposal
// @Description Sets the proposal to CLOSED. Closing twice is a no-op; an unknown id is acknowledged with found=false.
// @Tags        Proposals
// @Produce     json
// @Param       id   path  int  true  "Proposal ID"  minimum(1)
// @Success     200  {object}  handlers.AckResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Invalid status transition"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /proposals/{id}/close [put]
func (h *Handlers) CloseProposal(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	out, err := h.proposals.Close(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	ack(c, out.Found())
}
