package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	warrantyapp "github.com/shopdesk/backend/internal/application/warranty"
	"github.com/shopdesk/backend/internal/infrastructure/scheduler"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
)

// SweepRunner runs an expiry sweep on demand and reports on past sweeps
type SweepRunner interface {
	RunNow(ctx context.Context) (*warrantyapp.SweepResult, error)
	Status() scheduler.ExpiryStatus
}

// WarrantyHandler handles warranties and their claims
type WarrantyHandler struct {
	BaseHandler
	warrantyService *warrantyapp.WarrantyService
	sweeper         SweepRunner
}

// NewWarrantyHandler creates a new WarrantyHandler
func NewWarrantyHandler(warrantyService *warrantyapp.WarrantyService, sweeper SweepRunner) *WarrantyHandler {
	return &WarrantyHandler{warrantyService: warrantyService, sweeper: sweeper}
}

// CreateWarrantyRequest issues a warranty outside the sale flow
// @Description source_type MANUAL needs customer and product; REPAIR copies them from the job
type CreateWarrantyRequest struct {
	SourceType     string          `json:"source_type" binding:"required,oneof=MANUAL REPAIR" example:"MANUAL"`
	RepairJobID    *uuid.UUID      `json:"repair_job_id,omitempty"`
	ProductID      *uuid.UUID      `json:"product_id,omitempty"`
	ProductName    string          `json:"product_name" binding:"max=200"`
	SerialNumber   string          `json:"serial_number" binding:"max=100"`
	WarrantyType   string          `json:"warranty_type" binding:"omitempty,oneof=MANUFACTURER SHOP"`
	Customer       CustomerRequest `json:"customer"`
	DurationMonths int             `json:"duration_months" binding:"min=0,max=120" example:"6"`
	StartDate      string          `json:"start_date,omitempty" example:"2026-01-31"`
	Terms          string          `json:"terms" binding:"max=2000"`
}

// FileClaimRequest files a claim against a warranty
// @Description Leave resolution empty to record the claim without deciding it
type FileClaimRequest struct {
	Issue                string     `json:"issue" binding:"required,max=2000" example:"Battery drains in an hour"`
	Resolution           string     `json:"resolution" binding:"omitempty,oneof=REPAIR REPLACE REFUND REJECTED PENDING"`
	RepairJobID          *uuid.UUID `json:"repair_job_id,omitempty"`
	ReplacementProductID *uuid.UUID `json:"replacement_product_id,omitempty"`
	RefundMethod         string     `json:"refund_method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER MOBILE"`
	Notes                string     `json:"notes" binding:"max=2000"`
}

// VoidWarrantyRequest carries the void reason
type VoidWarrantyRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListWarrantiesQuery filters the warranty listing
type ListWarrantiesQuery struct {
	dto.ListRequest
	Status        string `form:"status" binding:"omitempty,oneof=ACTIVE EXPIRED CLAIMED VOID"`
	CustomerPhone string `form:"customer_phone"`
	SaleID        string `form:"sale_id" binding:"omitempty,uuid"`
	ProductID     string `form:"product_id" binding:"omitempty,uuid"`
}

// Create godoc
// @ID           createWarranty
// @Summary      Issue a warranty
// @Tags         warranties
// @Accept       json
// @Produce      json
// @Param        request body CreateWarrantyRequest true "Warranty"
// @Success      201 {object} APIResponse[warrantyapp.WarrantyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warranties [post]
func (h *WarrantyHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req CreateWarrantyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start_date")
		return
	}
	w, err := h.warrantyService.Create(c.Request.Context(), actor, warrantyapp.CreateWarrantyInput{
		SourceType:     req.SourceType,
		RepairJobID:    req.RepairJobID,
		ProductID:      req.ProductID,
		ProductName:    req.ProductName,
		SerialNumber:   req.SerialNumber,
		WarrantyType:   req.WarrantyType,
		Customer:       req.Customer.snapshot(),
		DurationMonths: req.DurationMonths,
		StartDate:      start,
		Terms:          req.Terms,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, w)
}

// List godoc
// @ID           listWarranties
// @Summary      List warranties
// @Tags         warranties
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Warranty number, product or serial"
// @Param        status query string false "Effective status"
// @Param        customer_phone query string false "Customer phone"
// @Param        sale_id query string false "Sale ID" format(uuid)
// @Param        product_id query string false "Product ID" format(uuid)
// @Success      200 {object} APIResponse[[]warrantyapp.WarrantyResponse]
// @Security     BearerAuth
// @Router       /warranties [get]
func (h *WarrantyHandler) List(c *gin.Context) {
	var q ListWarrantiesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := warrantyapp.ListFilter{
		Filter:        toFilter(q.ListRequest),
		Status:        q.Status,
		CustomerPhone: q.CustomerPhone,
	}
	if q.SaleID != "" {
		id := uuid.MustParse(q.SaleID)
		filter.SaleID = &id
	}
	if q.ProductID != "" {
		id := uuid.MustParse(q.ProductID)
		filter.ProductID = &id
	}
	page, err := h.warrantyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getWarranty
// @Summary      Get a warranty
// @Tags         warranties
// @Produce      json
// @Param        id path string true "Warranty ID" format(uuid)
// @Success      200 {object} APIResponse[warrantyapp.WarrantyResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warranties/{id} [get]
func (h *WarrantyHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	w, err := h.warrantyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

// GetByNumber godoc
// @ID           getWarrantyByNumber
// @Summary      Get a warranty by its number
// @Tags         warranties
// @Produce      json
// @Param        number path string true "Warranty number"
// @Success      200 {object} APIResponse[warrantyapp.WarrantyResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warranties/number/{number} [get]
func (h *WarrantyHandler) GetByNumber(c *gin.Context) {
	w, err := h.warrantyService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

// Validity godoc
// @ID           checkWarrantyValidity
// @Summary      Whether a warranty can be claimed now
// @Tags         warranties
// @Produce      json
// @Param        id path string true "Warranty ID" format(uuid)
// @Success      200 {object} APIResponse[warrantyapp.ValidityResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warranties/{id}/validity [get]
func (h *WarrantyHandler) Validity(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	v, err := h.warrantyService.CheckValidity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// Claims godoc
// @ID           listWarrantyClaims
// @Summary      Claims filed against a warranty
// @Tags         warranties
// @Produce      json
// @Param        id path string true "Warranty ID" format(uuid)
// @Success      200 {object} APIResponse[[]warrantyapp.ClaimResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warranties/{id}/claims [get]
func (h *WarrantyHandler) Claims(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	claims, err := h.warrantyService.Claims(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, claims)
}

// FileClaim godoc
// @ID           fileWarrantyClaim
// @Summary      File a claim
// @Description  REPAIR opens a repair job, REPLACE swaps stock, REFUND records a return
// @Tags         warranties
// @Accept       json
// @Produce      json
// @Param        id path string true "Warranty ID" format(uuid)
// @Param        request body FileClaimRequest true "Claim"
// @Success      201 {object} APIResponse[warrantyapp.ClaimResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warranties/{id}/claims [post]
func (h *WarrantyHandler) FileClaim(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req FileClaimRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.warrantyService.FileClaim(c.Request.Context(), actor, id, warrantyapp.FileClaimInput{
		Issue:                req.Issue,
		Resolution:           req.Resolution,
		RepairJobID:          req.RepairJobID,
		ReplacementProductID: req.ReplacementProductID,
		RefundMethod:         req.RefundMethod,
		Notes:                req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Void godoc
// @ID           voidWarranty
// @Summary      Void a warranty
// @Tags         warranties
// @Accept       json
// @Produce      json
// @Param        id path string true "Warranty ID" format(uuid)
// @Param        request body VoidWarrantyRequest true "Reason"
// @Success      200 {object} APIResponse[warrantyapp.WarrantyResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warranties/{id}/void [post]
func (h *WarrantyHandler) Void(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req VoidWarrantyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	w, err := h.warrantyService.Void(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

// RunExpirySweep godoc
// @ID           runWarrantyExpirySweep
// @Summary      Expire lapsed warranties now
// @Tags         warranties
// @Produce      json
// @Success      200 {object} APIResponse[warrantyapp.SweepResult]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /warranties/expiry-sweep [post]
func (h *WarrantyHandler) RunExpirySweep(c *gin.Context) {
	result, err := h.sweeper.RunNow(c.Request.Context())
	if errors.Is(err, scheduler.ErrSweepInProgress) {
		h.Conflict(c, dto.ErrCodeSweepInProgress, "An expiry sweep is already running")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ExpirySweepStatus godoc
// @ID           getWarrantyExpirySweepStatus
// @Summary      State of the scheduled expiry sweep
// @Tags         warranties
// @Produce      json
// @Success      200 {object} APIResponse[scheduler.ExpiryStatus]
// @Security     BearerAuth
// @Router       /warranties/expiry-sweep [get]
func (h *WarrantyHandler) ExpirySweepStatus(c *gin.Context) {
	h.Success(c, h.sweeper.Status())
}
