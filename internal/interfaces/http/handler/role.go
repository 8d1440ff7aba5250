package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
)

// RoleHandler handles the permission catalog and role management
type RoleHandler struct {
	BaseHandler
	roleService  *identityapp.RoleService
	authzService *identityapp.AuthorizationService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService *identityapp.RoleService, authzService *identityapp.AuthorizationService) *RoleHandler {
	return &RoleHandler{roleService: roleService, authzService: authzService}
}

// CreateRoleRequest represents a request to create a role
// @Description Request body for creating a custom role
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=50" example:"SENIOR_TECH"`
	Description string   `json:"description" binding:"max=255"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,permission_code" example:"REPAIR_VIEW,REPAIR_UPDATE"`
}

// UpdateRoleRequest represents a request to update a role
// @Description Omitted fields are left unchanged; permissions replaces the whole set
type UpdateRoleRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=2,max=50"`
	Description *string  `json:"description" binding:"omitempty,max=255"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,permission_code"`
}

// PermissionCodeRequest names a single permission code
type PermissionCodeRequest struct {
	Code string `json:"code" binding:"required,permission_code" example:"SALE_VOID"`
}

// ListPermissions godoc
// @ID           listPermissions
// @Summary      List the permission catalog
// @Tags         roles
// @Produce      json
// @Success      200 {object} APIResponse[[]identityapp.PermissionDTO]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /permissions [get]
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	h.Success(c, h.authzService.ListPermissions())
}

// List godoc
// @ID           listRoles
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200 {object} APIResponse[[]identityapp.RoleDTO]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, roles)
}

// GetByID godoc
// @ID           getRole
// @Summary      Get a role
// @Tags         roles
// @Produce      json
// @Param        id path string true "Role ID" format(uuid)
// @Success      200 {object} APIResponse[identityapp.RoleDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /roles/{id} [get]
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	role, err := h.roleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// Create godoc
// @ID           createRole
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        request body CreateRoleRequest true "Role"
// @Success      201 {object} APIResponse[identityapp.RoleDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	role, err := h.roleService.Create(c.Request.Context(), identityapp.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, role)
}

// Update godoc
// @ID           updateRole
// @Summary      Update a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id path string true "Role ID" format(uuid)
// @Param        request body UpdateRoleRequest true "Changes"
// @Success      200 {object} APIResponse[identityapp.RoleDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	role, err := h.roleService.Update(c.Request.Context(), id, identityapp.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// GrantPermission godoc
// @ID           grantRolePermission
// @Summary      Grant a permission to a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id path string true "Role ID" format(uuid)
// @Param        request body PermissionCodeRequest true "Permission"
// @Success      200 {object} APIResponse[identityapp.RoleDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /roles/{id}/permissions [post]
func (h *RoleHandler) GrantPermission(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req PermissionCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	role, err := h.roleService.GrantPermission(c.Request.Context(), id, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// RevokePermission godoc
// @ID           revokeRolePermission
// @Summary      Revoke a permission from a role
// @Tags         roles
// @Produce      json
// @Param        id path string true "Role ID" format(uuid)
// @Param        code path string true "Permission code"
// @Success      200 {object} APIResponse[identityapp.RoleDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /roles/{id}/permissions/{code} [delete]
func (h *RoleHandler) RevokePermission(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	role, err := h.roleService.RevokePermission(c.Request.Context(), id, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// Delete godoc
// @ID           deleteRole
// @Summary      Delete a custom role
// @Tags         roles
// @Param        id path string true "Role ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
