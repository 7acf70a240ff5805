package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/ledger"
	"kardex/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles ledger generation requests.
type LedgerHandler struct {
	*BaseHandler
	engine *ledger.Engine
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, engine *ledger.Engine) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		engine:      engine,
	}
}

// Generate handles POST /movements/:id/ledger
// Generates or regenerates ledger entries for a closed movement document,
// then replays and upserts the affected balance snapshots. Safe to call
// repeatedly for the same document.
func (h *LedgerHandler) Generate(c *gin.Context) {
	movementID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.engine.GenerateForMovement(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromLedgerResult(result))
}
