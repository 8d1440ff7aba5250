package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/receipt"
	repairapp "github.com/shopdesk/backend/internal/application/repair"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// RepairHandler handles the repair job workflow
type RepairHandler struct {
	BaseHandler
	repairService  *repairapp.RepairService
	receiptService *receipt.ReceiptService
}

// NewRepairHandler creates a new RepairHandler
func NewRepairHandler(repairService *repairapp.RepairService, receiptService *receipt.ReceiptService) *RepairHandler {
	return &RepairHandler{repairService: repairService, receiptService: receiptService}
}

// DeviceRequest describes the device booked in
type DeviceRequest struct {
	Type         string `json:"type" binding:"required,max=50" example:"PHONE"`
	Brand        string `json:"brand" binding:"required,max=50" example:"Acme"`
	Model        string `json:"model" binding:"required,max=100" example:"A1"`
	SerialNumber string `json:"serial_number" binding:"max=100"`
	Accessories  string `json:"accessories" binding:"max=255"`
	Condition    string `json:"condition" binding:"max=255"`
}

// CreateJobRequest books a device in for repair
// @Description Customer name and phone are required for a repair
type CreateJobRequest struct {
	Customer           CustomerRequest `json:"customer"`
	Device             DeviceRequest   `json:"device"`
	ProblemDescription string          `json:"problem_description" binding:"required,max=2000" example:"Screen does not turn on"`
	EstimatedCost      decimal.Decimal `json:"estimated_cost" swaggertype:"number" example:"80"`
	AdvancePayment     decimal.Decimal `json:"advance_payment" swaggertype:"number" example:"20"`
}

// AssignTechnicianRequest names the technician
type AssignTechnicianRequest struct {
	TechnicianID uuid.UUID `json:"technician_id" binding:"required"`
}

// PartRequest is a part fitted during the repair
type PartRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0" example:"1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"number"`
}

// CompleteJobRequest records the work done
type CompleteJobRequest struct {
	Parts     []PartRequest   `json:"parts" binding:"omitempty,dive"`
	LaborCost decimal.Decimal `json:"labor_cost" swaggertype:"number" example:"40"`
	Notes     string          `json:"notes" binding:"max=2000"`
}

// CollectPaymentRequest settles a ready job
type CollectPaymentRequest struct {
	AmountReceived decimal.Decimal `json:"amount_received" swaggertype:"number" example:"100"`
	PaymentMethod  string          `json:"payment_method" binding:"required,oneof=CASH CARD BANK_TRANSFER MOBILE" example:"CASH"`
}

// CancelJobRequest carries the cancellation reason
type CancelJobRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Customer declined quote"`
}

// ListJobsQuery filters the job listing
type ListJobsQuery struct {
	dto.ListRequest
	Status     string `form:"status" binding:"omitempty,oneof=RECEIVED IN_PROGRESS READY COMPLETED CANCELLED"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
}

// Create godoc
// @ID           createRepairJob
// @Summary      Book a device in for repair
// @Tags         repairs
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        request body CreateJobRequest true "Job"
// @Success      201 {object} APIResponse[repairapp.JobResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /repairs [post]
func (h *RepairHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req CreateJobRequest
	if !h.BindJSON(c, &req) {
		return
	}
	job, err := h.repairService.Create(c.Request.Context(), actor, repairapp.CreateJobInput{
		Customer: req.Customer.snapshot(),
		Device: repair.Device{
			Type:         req.Device.Type,
			Brand:        req.Device.Brand,
			Model:        req.Device.Model,
			SerialNumber: req.Device.SerialNumber,
			Accessories:  req.Device.Accessories,
			Condition:    req.Device.Condition,
		},
		ProblemDescription: req.ProblemDescription,
		EstimatedCost:      req.EstimatedCost,
		AdvancePayment:     req.AdvancePayment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, job)
}

// List godoc
// @ID           listRepairJobs
// @Summary      List repair jobs
// @Tags         repairs
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Job number, customer or device"
// @Param        status query string false "Job status"
// @Param        assigned_to query string false "Technician user ID" format(uuid)
// @Success      200 {object} APIResponse[[]repairapp.JobResponse]
// @Security     BearerAuth
// @Router       /repairs [get]
func (h *RepairHandler) List(c *gin.Context) {
	var q ListJobsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := repairapp.JobListFilter{Filter: toFilter(q.ListRequest), Status: q.Status}
	if q.AssignedTo != "" {
		id := uuid.MustParse(q.AssignedTo)
		filter.AssignedTo = &id
	}
	page, err := h.repairService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getRepairJob
// @Summary      Get a repair job
// @Tags         repairs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[repairapp.JobResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /repairs/{id} [get]
func (h *RepairHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	job, err := h.repairService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// GetByNumber godoc
// @ID           getRepairJobByNumber
// @Summary      Get a repair job by its number
// @Tags         repairs
// @Produce      json
// @Param        number path string true "Job number"
// @Success      200 {object} APIResponse[repairapp.JobResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /repairs/number/{number} [get]
func (h *RepairHandler) GetByNumber(c *gin.Context) {
	job, err := h.repairService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Assign godoc
// @ID           assignRepairJob
// @Summary      Assign a technician
// @Tags         repairs
// @Accept       json
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        request body AssignTechnicianRequest true "Technician"
// @Success      200 {object} APIResponse[repairapp.JobResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /repairs/{id}/assign [post]
func (h *RepairHandler) Assign(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req AssignTechnicianRequest
	if !h.BindJSON(c, &req) {
		return
	}
	job, err := h.repairService.AssignTechnician(c.Request.Context(), actor, id, req.TechnicianID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Start godoc
// @ID           startRepairJob
// @Summary      Start work on a job
// @Tags         repairs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[repairapp.JobResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /repairs/{id}/start [post]
func (h *RepairHandler) Start(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	job, err := h.repairService.Start(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Complete godoc
// @ID           completeRepairJob
// @Summary      Record parts and labor and mark the job ready
// @Description  Parts are taken from stock in the same transaction
// @Tags         repairs
// @Accept       json
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        request body CompleteJobRequest true "Work done"
// @Success      200 {object} APIResponse[repairapp.JobResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /repairs/{id}/complete [post]
func (h *RepairHandler) Complete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req CompleteJobRequest
	if !h.BindJSON(c, &req) {
		return
	}
	parts := make([]repairapp.PartInput, len(req.Parts))
	for i, p := range req.Parts {
		parts[i] = repairapp.PartInput{ProductID: p.ProductID, Quantity: p.Quantity, UnitPrice: p.UnitPrice}
	}
	job, err := h.repairService.Complete(c.Request.Context(), actor, id, repairapp.CompleteJobInput{
		Parts:     parts,
		LaborCost: req.LaborCost,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Collect godoc
// @ID           collectRepairPayment
// @Summary      Collect payment and hand the device back
// @Description  Issues the repair warranty once the job is fully paid
// @Tags         repairs
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        id path string true "Job ID" format(uuid)
// @Param        request body CollectPaymentRequest true "Payment"
// @Success      200 {object} APIResponse[repairapp.CollectPaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /repairs/{id}/collect [post]
func (h *RepairHandler) Collect(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req CollectPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.repairService.CollectPayment(c.Request.Context(), actor, id, repairapp.CollectPaymentInput{
		AmountReceived: req.AmountReceived,
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelRepairJob
// @Summary      Cancel a repair job
// @Tags         repairs
// @Accept       json
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        request body CancelJobRequest true "Reason"
// @Success      200 {object} APIResponse[repairapp.JobResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /repairs/{id}/cancel [post]
func (h *RepairHandler) Cancel(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req CancelJobRequest
	if !h.BindJSON(c, &req) {
		return
	}
	job, err := h.repairService.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Ticket godoc
// @ID           getRepairTicket
// @Summary      Printable repair ticket
// @Tags         repairs
// @Produce      application/pdf
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Param        format query string false "link to get a download URL"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /repairs/{id}/ticket [get]
func (h *RepairHandler) Ticket(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.receiptService.RepairTicket(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.writeDocument(c, doc)
}
