package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/shopdesk/backend/internal/application/sales"
)

// ReturnHandler handles refunds and exchanges against completed sales
type ReturnHandler struct {
	BaseHandler
	returnService *salesapp.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returnService *salesapp.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// ReturnLineRequest returns units of one sale line
type ReturnLineRequest struct {
	SaleItemID uuid.UUID `json:"sale_item_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,gt=0" example:"1"`
	Condition  string    `json:"condition" binding:"omitempty,oneof=GOOD DAMAGED DEFECTIVE" example:"GOOD"`
}

// CreateReturnRequest represents a refund return
// @Description Units are restocked only when returned in GOOD condition
type CreateReturnRequest struct {
	SaleID       uuid.UUID           `json:"sale_id" binding:"required"`
	Items        []ReturnLineRequest `json:"items" binding:"required,min=1,dive"`
	Reason       string              `json:"reason" binding:"max=500"`
	RefundMethod string              `json:"refund_method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER MOBILE" example:"CASH"`
}

// CreateExchangeRequest represents a return settled against a new sale
// @Description The returned value is credited against the new items
type CreateExchangeRequest struct {
	SaleID      uuid.UUID           `json:"sale_id" binding:"required"`
	ReturnItems []ReturnLineRequest `json:"return_items" binding:"required,min=1,dive"`
	NewItems    []SaleLineRequest   `json:"new_items" binding:"required,min=1,dive"`
	Payments    []PaymentRequest    `json:"payments" binding:"omitempty,dive"`
	Reason      string              `json:"reason" binding:"max=500"`
	Customer    *CustomerRequest    `json:"customer,omitempty"`
}

func toReturnLines(in []ReturnLineRequest) []salesapp.ReturnLineInput {
	out := make([]salesapp.ReturnLineInput, len(in))
	for i, l := range in {
		out[i] = salesapp.ReturnLineInput{SaleItemID: l.SaleItemID, Quantity: l.Quantity, Condition: l.Condition}
	}
	return out
}

// Create godoc
// @ID           createReturn
// @Summary      Refund returned items
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        request body CreateReturnRequest true "Return"
// @Success      201 {object} APIResponse[salesapp.ReturnResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns [post]
func (h *ReturnHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ret, err := h.returnService.Create(c.Request.Context(), actor, salesapp.CreateReturnInput{
		SaleID:       req.SaleID,
		Items:        toReturnLines(req.Items),
		Reason:       req.Reason,
		RefundMethod: req.RefundMethod,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// Exchange godoc
// @ID           createExchange
// @Summary      Exchange returned items for new ones
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        request body CreateExchangeRequest true "Exchange"
// @Success      201 {object} APIResponse[salesapp.ExchangeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /exchanges [post]
func (h *ReturnHandler) Exchange(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req CreateExchangeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	input := salesapp.CreateExchangeInput{
		SaleID:      req.SaleID,
		ReturnItems: toReturnLines(req.ReturnItems),
		NewItems:    toSaleLines(req.NewItems),
		Payments:    toPayments(req.Payments),
		Reason:      req.Reason,
	}
	if req.Customer != nil {
		snap := req.Customer.snapshot()
		input.Customer = &snap
	}

	result, err := h.returnService.Exchange(c.Request.Context(), actor, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID godoc
// @ID           getReturn
// @Summary      Get a return
// @Tags         returns
// @Produce      json
// @Param        id path string true "Return ID" format(uuid)
// @Success      200 {object} APIResponse[salesapp.ReturnResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /returns/{id} [get]
func (h *ReturnHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returnService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// ListBySale godoc
// @ID           listSaleReturns
// @Summary      Returns recorded against a sale
// @Tags         returns
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[[]salesapp.ReturnResponse]
// @Security     BearerAuth
// @Router       /sales/{id}/returns [get]
func (h *ReturnHandler) ListBySale(c *gin.Context) {
	saleID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	returns, err := h.returnService.ListBySale(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, returns)
}
