package handlers

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/core/entity"
	"kardex/internal/domain/stock"
	"kardex/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock balance queries.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// groupKeyFromQuery builds a grouping key from query parameters. The
// counterparty is optional; without it the key resolves to owner stock.
func (h *StockHandler) groupKeyFromQuery(c *gin.Context) (entity.GroupKey, bool) {
	companyID, ok := h.ParseIDQuery(c, "companyId")
	if !ok {
		return entity.GroupKey{}, false
	}
	warehouseID, ok := h.ParseIDQuery(c, "warehouseId")
	if !ok {
		return entity.GroupKey{}, false
	}
	productID, ok := h.ParseIDQuery(c, "productId")
	if !ok {
		return entity.GroupKey{}, false
	}

	custody := c.Query("custody") == "true"
	counterpartyID := entity.OwnerCounterparty
	if c.Query("counterpartyId") != "" {
		parsed, ok := h.ParseIDQuery(c, "counterpartyId")
		if !ok {
			return entity.GroupKey{}, false
		}
		counterpartyID = parsed
	}

	return entity.NewGroupKey(companyID, warehouseID, productID, counterpartyID, custody), true
}

// GetBalance handles GET /stock/balance
func (h *StockHandler) GetBalance(c *gin.Context) {
	key, ok := h.groupKeyFromQuery(c)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), key)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromGeneralBalance(balance))
}

// GetWarehouseStock handles GET /stock/warehouse
func (h *StockHandler) GetWarehouseStock(c *gin.Context) {
	companyID, ok := h.ParseIDQuery(c, "companyId")
	if !ok {
		return
	}
	warehouseID, ok := h.ParseIDQuery(c, "warehouseId")
	if !ok {
		return
	}

	balances, err := h.service.GetWarehouseStock(c.Request.Context(), companyID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		items = append(items, dto.FromGeneralBalance(b))
	}
	h.OK(c, gin.H{"items": items, "totalCount": len(items)})
}

// GetDetailedStock handles GET /stock/detailed
func (h *StockHandler) GetDetailedStock(c *gin.Context) {
	key, ok := h.groupKeyFromQuery(c)
	if !ok {
		return
	}

	balances, err := h.service.GetDetailedStock(c.Request.Context(), key)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.DetailedBalanceResponse, 0, len(balances))
	for _, b := range balances {
		items = append(items, dto.FromDetailedBalance(b))
	}
	h.OK(c, gin.H{"items": items, "totalCount": len(items)})
}

// GetLedgerHistory handles GET /stock/ledger
// Returns the full entry history of a grouping key in replay order.
func (h *StockHandler) GetLedgerHistory(c *gin.Context) {
	key, ok := h.groupKeyFromQuery(c)
	if !ok {
		return
	}

	entries, err := h.service.GetLedgerHistory(c.Request.Context(), key)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.FromLedgerEntry(e))
	}
	h.OK(c, gin.H{"items": items, "totalCount": len(items)})
}
