package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/interfaces/http/handler"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the API serves
type Handlers struct {
	Auth      *handler.AuthHandler
	Role      *handler.RoleHandler
	User      *handler.UserHandler
	Product   *handler.ProductHandler
	Inventory *handler.InventoryHandler
	Sale      *handler.SaleHandler
	Return    *handler.ReturnHandler
	Repair    *handler.RepairHandler
	Warranty  *handler.WarrantyHandler
	System    *handler.SystemHandler
}

// Guards are the per-route middleware factories. Authz is required; a nil
// Idempotency or LoginLimit leaves those routes unguarded.
type Guards struct {
	Authz       middleware.Authorizer
	Idempotency gin.HandlerFunc
	LoginLimit  gin.HandlerFunc
}

func (g Guards) perm(code identity.PermissionCode) gin.HandlerFunc {
	return middleware.RequirePermission(g.Authz, code)
}

// once wraps a handler chain that must not run twice for the same Idempotency-Key
func (g Guards) once(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	if g.Idempotency == nil {
		return handlers
	}
	return append([]gin.HandlerFunc{g.Idempotency}, handlers...)
}

// APIGroups builds the domain groups of the v1 API
func APIGroups(h Handlers, g Guards) []*DomainGroup {
	health := NewDomainGroup("health", "/health")
	health.GET("/live", h.System.Live)
	health.GET("/ready", h.System.Ready)

	authRoutes := NewDomainGroup("auth", "/auth")
	if g.LoginLimit != nil {
		authRoutes.POST("/login", g.LoginLimit, h.Auth.Login)
	} else {
		authRoutes.POST("/login", h.Auth.Login)
	}
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.Me)

	permissions := NewDomainGroup("permissions", "/permissions")
	permissions.GET("", g.perm(identity.PermRoleView), h.Role.ListPermissions)

	roles := NewDomainGroup("roles", "/roles")
	roles.GET("", g.perm(identity.PermRoleView), h.Role.List)
	roles.POST("", g.perm(identity.PermRoleManage), h.Role.Create)
	roles.GET("/:id", g.perm(identity.PermRoleView), h.Role.GetByID)
	roles.PUT("/:id", g.perm(identity.PermRoleManage), h.Role.Update)
	roles.DELETE("/:id", g.perm(identity.PermRoleManage), h.Role.Delete)
	roles.POST("/:id/permissions", g.perm(identity.PermRoleManage), h.Role.GrantPermission)
	roles.DELETE("/:id/permissions/:code", g.perm(identity.PermRoleManage), h.Role.RevokePermission)

	users := NewDomainGroup("users", "/users")
	users.GET("", g.perm(identity.PermUserView), h.User.List)
	users.POST("", g.perm(identity.PermUserManage), h.User.Create)
	users.GET("/:id", g.perm(identity.PermUserView), h.User.GetByID)
	users.PUT("/:id/roles", g.perm(identity.PermUserManage), h.User.AssignRoles)
	users.PUT("/:id/overrides", g.perm(identity.PermUserManage), h.User.SetOverrides)
	users.POST("/:id/deactivate", g.perm(identity.PermUserManage), h.User.Deactivate)

	products := NewDomainGroup("products", "/products")
	products.GET("", g.perm(identity.PermProductView), h.Product.List)
	products.POST("", g.perm(identity.PermProductManage), h.Product.Create)
	products.GET("/sku/:sku", g.perm(identity.PermProductView), h.Product.GetBySKU)
	products.GET("/:id", g.perm(identity.PermProductView), h.Product.GetByID)
	products.PUT("/:id", g.perm(identity.PermProductManage), h.Product.Update)
	products.POST("/:id/activate", g.perm(identity.PermProductManage), h.Product.Activate)
	products.POST("/:id/deactivate", g.perm(identity.PermProductManage), h.Product.Deactivate)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.GET("/low-stock", g.perm(identity.PermInventoryView), h.Inventory.LowStock)
	inventory.GET("/low-stock/count", g.perm(identity.PermInventoryView), h.Inventory.CountLowStock)
	inventory.POST("/adjustments", g.once(g.perm(identity.PermInventoryAdjust), h.Inventory.Adjust)...)
	inventory.GET("/:productId", g.perm(identity.PermInventoryView), h.Inventory.GetStock)
	inventory.GET("/:productId/adjustments", g.perm(identity.PermInventoryView), h.Inventory.History)

	sales := NewDomainGroup("sales", "/sales")
	sales.POST("", g.once(g.perm(identity.PermSaleCreate), h.Sale.Create)...)
	sales.GET("", g.perm(identity.PermSaleView), h.Sale.List)
	sales.GET("/number/:number", g.perm(identity.PermSaleView), h.Sale.GetByNumber)
	sales.GET("/:id", g.perm(identity.PermSaleView), h.Sale.GetByID)
	sales.POST("/:id/void", g.perm(identity.PermSaleVoid), h.Sale.Void)
	sales.GET("/:id/receipt", g.perm(identity.PermSaleView), h.Sale.Receipt)
	sales.GET("/:id/returns", g.perm(identity.PermSaleView), h.Return.ListBySale)

	returns := NewDomainGroup("returns", "/returns")
	returns.POST("", g.once(g.perm(identity.PermReturnCreate), h.Return.Create)...)
	returns.GET("/:id", g.perm(identity.PermSaleView), h.Return.GetByID)

	exchanges := NewDomainGroup("exchanges", "/exchanges")
	exchanges.POST("", g.once(g.perm(identity.PermReturnCreate), h.Return.Exchange)...)

	repairs := NewDomainGroup("repairs", "/repairs")
	repairs.POST("", g.once(g.perm(identity.PermRepairCreate), h.Repair.Create)...)
	repairs.GET("", g.perm(identity.PermRepairView), h.Repair.List)
	repairs.GET("/number/:number", g.perm(identity.PermRepairView), h.Repair.GetByNumber)
	repairs.GET("/:id", g.perm(identity.PermRepairView), h.Repair.GetByID)
	repairs.POST("/:id/assign", g.perm(identity.PermRepairAssign), h.Repair.Assign)
	repairs.POST("/:id/start", g.perm(identity.PermRepairUpdate), h.Repair.Start)
	repairs.POST("/:id/complete", g.perm(identity.PermRepairUpdate), h.Repair.Complete)
	repairs.POST("/:id/collect", g.once(g.perm(identity.PermRepairPayment), h.Repair.Collect)...)
	repairs.POST("/:id/cancel", g.perm(identity.PermRepairCancel), h.Repair.Cancel)
	repairs.GET("/:id/ticket", g.perm(identity.PermRepairView), h.Repair.Ticket)

	warranties := NewDomainGroup("warranties", "/warranties")
	warranties.POST("", g.perm(identity.PermWarrantyCreate), h.Warranty.Create)
	warranties.GET("", g.perm(identity.PermWarrantyView), h.Warranty.List)
	warranties.GET("/expiry-sweep", g.perm(identity.PermWarrantyManage), h.Warranty.ExpirySweepStatus)
	warranties.POST("/expiry-sweep", g.perm(identity.PermWarrantyManage), h.Warranty.RunExpirySweep)
	warranties.GET("/number/:number", g.perm(identity.PermWarrantyView), h.Warranty.GetByNumber)
	warranties.GET("/:id", g.perm(identity.PermWarrantyView), h.Warranty.GetByID)
	warranties.GET("/:id/validity", g.perm(identity.PermWarrantyView), h.Warranty.Validity)
	warranties.GET("/:id/claims", g.perm(identity.PermWarrantyView), h.Warranty.Claims)
	warranties.POST("/:id/claims", g.once(g.perm(identity.PermWarrantyClaim), h.Warranty.FileClaim)...)
	warranties.POST("/:id/void", g.perm(identity.PermWarrantyVoid), h.Warranty.Void)

	return []*DomainGroup{
		health, authRoutes, permissions, roles, users,
		products, inventory, sales, returns, exchanges, repairs, warranties,
	}
}

// RegisterAPI mounts every API group on the router
func RegisterAPI(r *Router, h Handlers, g Guards) {
	for _, group := range APIGroups(h, g) {
		r.Register(group)
	}
}
