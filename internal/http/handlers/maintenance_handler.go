package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SweepResponse reports how many closed proposals a sweep purged.
type SweepResponse struct {
	Purged int `json:"purged" example:"3"`
}

// Sweep godoc
// @ID          runSweep
// @Summary     Run the retention sweep
// @Description Purges closed proposals (and their orders) older than the retention grace period.
// @Tags        Maintenance
// @Produce     json
// @Success     200  {object}  handlers.SweepResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /maintenance/sweep [post]
func (h *Handlers) Sweep(c *gin.Context) {
	n, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSweepFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, SweepResponse{Purged: n})
}
