package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/fishing"
	"kardex/internal/infrastructure/http/v1/dto"
)

// TonnageHandler handles catch tonnage recalculation requests.
type TonnageHandler struct {
	*BaseHandler
	service *fishing.Service
}

// NewTonnageHandler creates a new tonnage handler.
func NewTonnageHandler(base *BaseHandler, service *fishing.Service) *TonnageHandler {
	return &TonnageHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RecalculateFromCatch handles POST /catches/:id/recalculate
// Recomputes the owning trip total from its catches; with ?cascade=true the
// season total is recomputed afterwards.
func (h *TonnageHandler) RecalculateFromCatch(c *gin.Context) {
	catchID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var err error
	if c.Query("cascade") == "true" {
		err = h.service.RecalculateTonnageCascade(ctx, catchID)
	} else {
		err = h.service.RecalculateTonnage(ctx, catchID)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true, Message: "tonnage recalculated"})
}

// RecalculateTrip handles POST /trips/:id/recalculate
func (h *TonnageHandler) RecalculateTrip(c *gin.Context) {
	tripID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	cascade := c.Query("cascade") == "true"
	if err := h.service.RecalculateTripTonnage(c.Request.Context(), tripID, cascade); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true, Message: "trip tonnage recalculated"})
}

// RecalculateSeason handles POST /seasons/:id/recalculate
func (h *TonnageHandler) RecalculateSeason(c *gin.Context) {
	seasonID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.RecalculateSeasonTonnage(c.Request.Context(), seasonID); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SuccessResponse{Success: true, Message: "season tonnage recalculated"})
}
