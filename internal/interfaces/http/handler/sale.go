package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/receipt"
	salesapp "github.com/shopdesk/backend/internal/application/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// SaleHandler handles point-of-sale transactions
type SaleHandler struct {
	BaseHandler
	saleService    *salesapp.SaleService
	receiptService *receipt.ReceiptService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService, receiptService *receipt.ReceiptService) *SaleHandler {
	return &SaleHandler{saleService: saleService, receiptService: receiptService}
}

// SaleLineRequest is one line of a sale. unit_price defaults to the catalog price.
type SaleLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0" example:"1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"number"`
	Discount  decimal.Decimal  `json:"discount" swaggertype:"number" example:"0"`
}

// PaymentRequest is one tender
type PaymentRequest struct {
	Method    string          `json:"method" binding:"required,oneof=CASH CARD BANK_TRANSFER MOBILE" example:"CASH"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"number" example:"100"`
	Reference string          `json:"reference" binding:"max=100"`
}

// DiscountRequest is a sale-level discount
type DiscountRequest struct {
	Type  string          `json:"type" binding:"required,oneof=PERCENTAGE FIXED" example:"PERCENTAGE"`
	Value decimal.Decimal `json:"value" swaggertype:"number" example:"10"`
}

// CustomerRequest is the customer contact copied onto the document
type CustomerRequest struct {
	Name    string `json:"name" binding:"max=100" example:"Jane Doe"`
	Phone   string `json:"phone" binding:"max=30" example:"+15551234567"`
	Email   string `json:"email" binding:"omitempty,email,max=100"`
	Address string `json:"address" binding:"max=255"`
}

func (r CustomerRequest) snapshot() shared.CustomerSnapshot {
	return shared.CustomerSnapshot{Name: r.Name, Phone: r.Phone, Email: r.Email, Address: r.Address}
}

// CreateSaleRequest represents a request to ring up a sale
// @Description Items, tenders and an optional sale-level discount
type CreateSaleRequest struct {
	Items    []SaleLineRequest `json:"items" binding:"required,min=1,dive"`
	Payments []PaymentRequest  `json:"payments" binding:"required,min=1,dive"`
	Discount *DiscountRequest  `json:"discount,omitempty"`
	Customer CustomerRequest   `json:"customer"`
	Notes    string            `json:"notes" binding:"max=500"`
}

// VoidSaleRequest carries the void reason
type VoidSaleRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Rung up twice"`
}

// ListSalesQuery filters the sale listing
type ListSalesQuery struct {
	dto.ListRequest
	Status    string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED VOIDED"`
	From      string `form:"from"`
	To        string `form:"to"`
	CashierID string `form:"cashier_id" binding:"omitempty,uuid"`
}

func toSaleLines(in []SaleLineRequest) []salesapp.SaleLineInput {
	out := make([]salesapp.SaleLineInput, len(in))
	for i, l := range in {
		out[i] = salesapp.SaleLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
		}
	}
	return out
}

func toPayments(in []PaymentRequest) []salesapp.PaymentInput {
	out := make([]salesapp.PaymentInput, len(in))
	for i, p := range in {
		out[i] = salesapp.PaymentInput{Method: p.Method, Amount: p.Amount, Reference: p.Reference}
	}
	return out
}

// Create godoc
// @ID           createSale
// @Summary      Create a sale
// @Description  Prices the cart, takes stock and issues warranties in one transaction.
// @Description  Send an Idempotency-Key header to make retries safe.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        request body CreateSaleRequest true "Sale"
// @Success      201 {object} APIResponse[salesapp.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	input := salesapp.CreateSaleInput{
		Items:    toSaleLines(req.Items),
		Payments: toPayments(req.Payments),
		Customer: req.Customer.snapshot(),
		Notes:    req.Notes,
	}
	if req.Discount != nil {
		input.Discount = &salesapp.DiscountInput{Type: req.Discount.Type, Value: req.Discount.Value}
	}

	sale, err := h.saleService.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// List godoc
// @ID           listSales
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Sale number or customer"
// @Param        status query string false "PENDING, COMPLETED or VOIDED"
// @Param        from query string false "From date (YYYY-MM-DD or RFC3339)"
// @Param        to query string false "To date (YYYY-MM-DD or RFC3339)"
// @Param        cashier_id query string false "Cashier user ID" format(uuid)
// @Success      200 {object} APIResponse[[]salesapp.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var q ListSalesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	from, err := parseDate(q.From)
	if err != nil {
		h.BadRequest(c, "Invalid from date")
		return
	}
	to, err := parseDate(q.To)
	if err != nil {
		h.BadRequest(c, "Invalid to date")
		return
	}
	filter := salesapp.SaleListFilter{Filter: toFilter(q.ListRequest), Status: q.Status, From: from, To: to}
	if q.CashierID != "" {
		id := uuid.MustParse(q.CashierID)
		filter.CashierID = &id
	}

	page, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getSale
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[salesapp.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// GetByNumber godoc
// @ID           getSaleByNumber
// @Summary      Get a sale by its number
// @Tags         sales
// @Produce      json
// @Param        number path string true "Sale number"
// @Success      200 {object} APIResponse[salesapp.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/number/{number} [get]
func (h *SaleHandler) GetByNumber(c *gin.Context) {
	sale, err := h.saleService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Void godoc
// @ID           voidSale
// @Summary      Void a sale
// @Description  Restores stock and voids the warranties the sale issued
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body VoidSaleRequest true "Reason"
// @Success      200 {object} APIResponse[salesapp.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id}/void [post]
func (h *SaleHandler) Void(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req VoidSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.Void(c.Request.Context(), actor, id, salesapp.VoidSaleInput{Reason: req.Reason})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Receipt godoc
// @ID           getSaleReceipt
// @Summary      Printable receipt
// @Description  Returns the PDF, or its archived download link with ?format=link
// @Tags         sales
// @Produce      application/pdf
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        format query string false "link to get a download URL"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.receiptService.SaleReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.writeDocument(c, doc)
}
