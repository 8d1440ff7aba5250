package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/shopdesk/backend/internal/application/inventory"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
)

// InventoryHandler exposes the stock ledger
type InventoryHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventoryapp.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// AdjustStockRequest is a manual stock movement
// @Description Manual adjustment; direction is only read for CORRECTION
type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required" example:"6f1c2a5e-0b7d-4c1e-9a57-2f8d3c4b5a6e"`
	Type      string    `json:"type" binding:"required" example:"DAMAGE"`
	Direction string    `json:"direction" binding:"omitempty,oneof=INCREASE DECREASE"`
	Quantity  int       `json:"quantity" binding:"required,gt=0" example:"1"`
	Reason    string    `json:"reason" binding:"max=500" example:"Cracked screen on arrival"`
}

// GetStock godoc
// @ID           getStock
// @Summary      Current stock of a product
// @Tags         inventory
// @Produce      json
// @Param        productId path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.StockResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/{productId} [get]
func (h *InventoryHandler) GetStock(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "productId")
	if !ok {
		return
	}
	stock, err := h.stockService.GetStock(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// History godoc
// @ID           listStockAdjustments
// @Summary      Ledger entries of a product, newest first
// @Tags         inventory
// @Produce      json
// @Param        productId path string true "Product ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]inventoryapp.AdjustmentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/{productId}/adjustments [get]
func (h *InventoryHandler) History(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "productId")
	if !ok {
		return
	}
	var q dto.ListRequest
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.stockService.History(c.Request.Context(), productID, toFilter(q))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Adjust godoc
// @ID           adjustStock
// @Summary      Record a manual stock adjustment
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body AdjustStockRequest true "Adjustment"
// @Success      201 {object} APIResponse[inventoryapp.AdjustmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.stockService.Adjust(c.Request.Context(), actor, inventoryapp.AdjustStockInput{
		ProductID: req.ProductID,
		Type:      req.Type,
		Direction: req.Direction,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// LowStock godoc
// @ID           lowStockReport
// @Summary      Active products at or below their minimum level
// @Tags         inventory
// @Produce      json
// @Success      200 {object} APIResponse[[]inventoryapp.LowStockResponse]
// @Security     BearerAuth
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.stockService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// CountLowStock godoc
// @ID           countLowStock
// @Summary      Number of products at or below their minimum level
// @Tags         inventory
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /inventory/low-stock/count [get]
func (h *InventoryHandler) CountLowStock(c *gin.Context) {
	n, err := h.stockService.CountLowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: n})
}
