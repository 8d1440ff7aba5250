package identity

import (
	"sort"
	"strings"

	"github.com/shopdesk/backend/internal/domain/shared"
)

// PermissionCode is a capability identifier. The set of codes is closed:
// only the constants below exist, and ParsePermissionCode rejects anything else.
type PermissionCode string

const (
	PermUserView   PermissionCode = "USER_VIEW"
	PermUserManage PermissionCode = "USER_MANAGE"
	PermRoleView   PermissionCode = "ROLE_VIEW"
	PermRoleManage PermissionCode = "ROLE_MANAGE"

	PermProductView   PermissionCode = "PRODUCT_VIEW"
	PermProductManage PermissionCode = "PRODUCT_MANAGE"

	PermInventoryView   PermissionCode = "INVENTORY_VIEW"
	PermInventoryAdjust PermissionCode = "INVENTORY_ADJUST"

	PermSaleView     PermissionCode = "SALE_VIEW"
	PermSaleCreate   PermissionCode = "SALE_CREATE"
	PermSaleVoid     PermissionCode = "SALE_VOID"
	PermReturnCreate PermissionCode = "RETURN_CREATE"

	PermRepairView    PermissionCode = "REPAIR_VIEW"
	PermRepairCreate  PermissionCode = "REPAIR_CREATE"
	PermRepairAssign  PermissionCode = "REPAIR_ASSIGN"
	PermRepairUpdate  PermissionCode = "REPAIR_UPDATE"
	PermRepairPayment PermissionCode = "REPAIR_PAYMENT"
	PermRepairCancel  PermissionCode = "REPAIR_CANCEL"

	PermWarrantyView   PermissionCode = "WARRANTY_VIEW"
	PermWarrantyCreate PermissionCode = "WARRANTY_CREATE"
	PermWarrantyClaim  PermissionCode = "WARRANTY_CLAIM"
	PermWarrantyVoid   PermissionCode = "WARRANTY_VOID"
	PermWarrantyManage PermissionCode = "WARRANTY_MANAGE"
)

// PermissionCategory groups permissions for display. It carries no enforcement semantics.
type PermissionCategory string

const (
	CategoryUsers      PermissionCategory = "USERS"
	CategoryRoles      PermissionCategory = "ROLES"
	CategoryCatalog    PermissionCategory = "CATALOG"
	CategoryInventory  PermissionCategory = "INVENTORY"
	CategorySales      PermissionCategory = "SALES"
	CategoryRepairs    PermissionCategory = "REPAIRS"
	CategoryWarranties PermissionCategory = "WARRANTIES"
)

// Permission is immutable reference data describing one capability
type Permission struct {
	Code        PermissionCode
	Category    PermissionCategory
	Description string
}

var permissionCatalog = []Permission{
	{PermUserView, CategoryUsers, "View users"},
	{PermUserManage, CategoryUsers, "Create, deactivate and assign users"},
	{PermRoleView, CategoryRoles, "View roles and the permission catalog"},
	{PermRoleManage, CategoryRoles, "Create, edit and delete roles"},
	{PermProductView, CategoryCatalog, "View products"},
	{PermProductManage, CategoryCatalog, "Create and edit products"},
	{PermInventoryView, CategoryInventory, "View stock levels and adjustment history"},
	{PermInventoryAdjust, CategoryInventory, "Record manual stock adjustments"},
	{PermSaleView, CategorySales, "View sales and returns"},
	{PermSaleCreate, CategorySales, "Ring up sales"},
	{PermSaleVoid, CategorySales, "Void completed sales"},
	{PermReturnCreate, CategorySales, "Process returns and exchanges"},
	{PermRepairView, CategoryRepairs, "View repair jobs"},
	{PermRepairCreate, CategoryRepairs, "Book in repair jobs"},
	{PermRepairAssign, CategoryRepairs, "Assign technicians"},
	{PermRepairUpdate, CategoryRepairs, "Start and complete repairs"},
	{PermRepairPayment, CategoryRepairs, "Collect repair payments"},
	{PermRepairCancel, CategoryRepairs, "Cancel repair jobs"},
	{PermWarrantyView, CategoryWarranties, "View warranties"},
	{PermWarrantyCreate, CategoryWarranties, "Issue manual warranties"},
	{PermWarrantyClaim, CategoryWarranties, "File warranty claims"},
	{PermWarrantyVoid, CategoryWarranties, "Void warranties"},
	{PermWarrantyManage, CategoryWarranties, "Run warranty maintenance jobs"},
}

var permissionIndex = func() map[PermissionCode]Permission {
	idx := make(map[PermissionCode]Permission, len(permissionCatalog))
	for _, p := range permissionCatalog {
		idx[p.Code] = p
	}
	return idx
}()

// IsValid reports whether the code is part of the catalog
func (c PermissionCode) IsValid() bool {
	_, ok := permissionIndex[c]
	return ok
}

// String returns the code as a string
func (c PermissionCode) String() string {
	return string(c)
}

// ParsePermissionCode validates a raw string against the catalog
func ParsePermissionCode(raw string) (PermissionCode, error) {
	code := PermissionCode(strings.ToUpper(strings.TrimSpace(raw)))
	if !code.IsValid() {
		return "", shared.NewDomainError("INVALID_PERMISSION_CODE", "Unknown permission code: "+raw)
	}
	return code, nil
}

// ParsePermissionCodes validates a list of raw codes, failing on the first unknown one
func ParsePermissionCodes(raw []string) ([]PermissionCode, error) {
	codes := make([]PermissionCode, 0, len(raw))
	for _, r := range raw {
		code, err := ParsePermissionCode(r)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// PermissionCatalog returns the full permission catalog in declaration order
func PermissionCatalog() []Permission {
	out := make([]Permission, len(permissionCatalog))
	copy(out, permissionCatalog)
	return out
}

// LookupPermission returns the catalog entry for a code
func LookupPermission(code PermissionCode) (Permission, bool) {
	p, ok := permissionIndex[code]
	return p, ok
}

// AllPermissionCodes returns every known code
func AllPermissionCodes() []PermissionCode {
	codes := make([]PermissionCode, len(permissionCatalog))
	for i, p := range permissionCatalog {
		codes[i] = p.Code
	}
	return codes
}

// PermissionSet is a set of permission codes
type PermissionSet map[PermissionCode]struct{}

// NewPermissionSet builds a set from codes
func NewPermissionSet(codes ...PermissionCode) PermissionSet {
	set := make(PermissionSet, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// Has reports membership
func (s PermissionSet) Has(code PermissionCode) bool {
	_, ok := s[code]
	return ok
}

// Add inserts a code
func (s PermissionSet) Add(code PermissionCode) {
	s[code] = struct{}{}
}

// Remove deletes a code
func (s PermissionSet) Remove(code PermissionCode) {
	delete(s, code)
}

// Codes returns the members sorted alphabetically
func (s PermissionSet) Codes() []PermissionCode {
	codes := make([]PermissionCode, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Strings returns the members as sorted strings
func (s PermissionSet) Strings() []string {
	codes := s.Codes()
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
