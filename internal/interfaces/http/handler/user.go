package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
)

// UserHandler handles user administration
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// OverrideRequest is one direct permission override
type OverrideRequest struct {
	Code   string `json:"code" binding:"required,permission_code" example:"SALE_VOID"`
	Effect string `json:"effect" binding:"required,override_effect" example:"DENY"`
}

// CreateUserRequest represents a request to create a user
// @Description Request body for creating a user
type CreateUserRequest struct {
	Username     string            `json:"username" binding:"required,min=3,max=64" example:"cashier1"`
	DisplayName  string            `json:"display_name" binding:"max=100" example:"Front Desk"`
	Password     string            `json:"password" binding:"required,min=8,max=128"`
	RoleIDs      []uuid.UUID       `json:"role_ids"`
	Overrides    []OverrideRequest `json:"overrides" binding:"omitempty,dive"`
	IsSuperAdmin bool              `json:"is_super_admin"`
}

// AssignRolesRequest replaces a user's roles
type AssignRolesRequest struct {
	RoleIDs []uuid.UUID `json:"role_ids"`
}

// SetOverridesRequest replaces a user's direct overrides
type SetOverridesRequest struct {
	Overrides []OverrideRequest `json:"overrides" binding:"omitempty,dive"`
}

// ListUsersQuery filters the user listing
type ListUsersQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=active deactivated"`
	RoleID string `form:"role_id" binding:"omitempty,uuid"`
}

func toOverrideDTOs(in []OverrideRequest) []identityapp.OverrideDTO {
	out := make([]identityapp.OverrideDTO, len(in))
	for i, o := range in {
		out[i] = identityapp.OverrideDTO{Code: o.Code, Effect: o.Effect}
	}
	return out
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Username or display name"
// @Param        status query string false "active or deactivated"
// @Param        role_id query string false "Role ID" format(uuid)
// @Success      200 {object} APIResponse[[]identityapp.UserDTO]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var q ListUsersQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := identity.UserFilter{Filter: toFilter(q.ListRequest)}
	if q.Status != "" {
		status := identity.UserStatus(q.Status)
		filter.Status = &status
	}
	if q.RoleID != "" {
		roleID := uuid.MustParse(q.RoleID)
		filter.RoleID = &roleID
	}

	page, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @ID           getUser
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identityapp.UserDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Create godoc
// @ID           createUser
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User"
// @Success      201 {object} APIResponse[identityapp.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.Create(c.Request.Context(), identityapp.CreateUserInput{
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		Password:     req.Password,
		RoleIDs:      req.RoleIDs,
		Overrides:    toOverrideDTOs(req.Overrides),
		IsSuperAdmin: req.IsSuperAdmin,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// AssignRoles godoc
// @ID           assignUserRoles
// @Summary      Replace a user's roles
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body AssignRolesRequest true "Roles"
// @Success      200 {object} APIResponse[identityapp.UserDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/roles [put]
func (h *UserHandler) AssignRoles(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req AssignRolesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.AssignRoles(c.Request.Context(), id, req.RoleIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// SetOverrides godoc
// @ID           setUserOverrides
// @Summary      Replace a user's permission overrides
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body SetOverridesRequest true "Overrides"
// @Success      200 {object} APIResponse[identityapp.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/overrides [put]
func (h *UserHandler) SetOverrides(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req SetOverridesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	user, err := h.userService.SetOverrides(c.Request.Context(), id, toOverrideDTOs(req.Overrides))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Deactivate godoc
// @ID           deactivateUser
// @Summary      Deactivate a user
// @Description  Disables the account and revokes its outstanding tokens
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identityapp.UserDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Deactivate(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
