package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/shopdesk/backend/internal/application/catalog"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductRequest carries the editable product fields
// @Description Product fields; prices are decimal amounts
type ProductRequest struct {
	Name                   string          `json:"name" binding:"required,min=1,max=200" example:"Phone X"`
	Description            string          `json:"description" binding:"max=2000"`
	Category               string          `json:"category" binding:"max=100" example:"phones"`
	SellingPrice           decimal.Decimal `json:"selling_price" swaggertype:"number" example:"499.99"`
	CostPrice              decimal.Decimal `json:"cost_price" swaggertype:"number" example:"350"`
	TaxRate                decimal.Decimal `json:"tax_rate" swaggertype:"number" example:"10"`
	WarrantyDurationMonths int             `json:"warranty_duration_months" binding:"min=0,max=120" example:"12"`
	WarrantyType           string          `json:"warranty_type" binding:"omitempty,oneof=MANUFACTURER SHOP NONE" example:"MANUFACTURER"`
	MinStockLevel          int             `json:"min_stock_level" binding:"min=0" example:"2"`
}

// CreateProductRequest is a ProductRequest plus the immutable SKU
type CreateProductRequest struct {
	SKU string `json:"sku" binding:"required,min=1,max=64" example:"PH-001"`
	ProductRequest
}

// ListProductsQuery filters the product listing
type ListProductsQuery struct {
	dto.ListRequest
	Category string `form:"category"`
	IsActive *bool  `form:"is_active"`
}

func (r ProductRequest) toInput() catalogapp.ProductInput {
	return catalogapp.ProductInput{
		Name:                   r.Name,
		Description:            r.Description,
		Category:               r.Category,
		SellingPrice:           r.SellingPrice,
		CostPrice:              r.CostPrice,
		TaxRate:                r.TaxRate,
		WarrantyDurationMonths: r.WarrantyDurationMonths,
		WarrantyType:           r.WarrantyType,
		MinStockLevel:          r.MinStockLevel,
	}
}

// Create godoc
// @ID           createProduct
// @Summary      Create a new product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body CreateProductRequest true "Product creation request"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), catalogapp.CreateProductInput{
		SKU:          req.SKU,
		ProductInput: req.toInput(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID godoc
// @ID           getProduct
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetBySKU godoc
// @ID           getProductBySKU
// @Summary      Get product by SKU
// @Tags         products
// @Produce      json
// @Param        sku path string true "Product SKU"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/sku/{sku} [get]
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	product, err := h.productService.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Name or SKU"
// @Param        category query string false "Category"
// @Param        is_active query bool false "Active flag"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var q ListProductsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.productService.List(c.Request.Context(), catalogapp.ProductListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   q.Search,
		Category: q.Category,
		IsActive: q.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update godoc
// @ID           updateProduct
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body ProductRequest true "Product fields"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Activate godoc
// @ID           activateProduct
// @Summary      Activate a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/activate [post]
func (h *ProductHandler) Activate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Deactivate godoc
// @ID           deactivateProduct
// @Summary      Deactivate a product
// @Description  Inactive products cannot be sold; history is kept
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
