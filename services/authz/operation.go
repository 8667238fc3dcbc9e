package authz

// Operation names every guarded RPC in the control plane. The catalog below
// is the single source of the minimum role tier per operation; the casbin
// enforcer derives its policy from it.
type Operation string

const (
	// Tenant lifecycle (admin panel)
	OpTenantList          Operation = "tenant.list"
	OpTenantGet           Operation = "tenant.get"
	OpTenantCreate        Operation = "tenant.create"
	OpTenantActivateTrial Operation = "tenant.activate_trial"
	OpTenantActivate      Operation = "tenant.activate"
	OpTenantSuspend       Operation = "tenant.suspend"
	OpTenantReactivate    Operation = "tenant.reactivate"
	OpTenantCancel        Operation = "tenant.cancel"

	// Users and API keys
	OpUserList       Operation = "user.list"
	OpUserCreate     Operation = "user.create"
	OpUserUpdateRole Operation = "user.update_role"
	OpUserDeactivate Operation = "user.deactivate"
	OpUserReactivate Operation = "user.reactivate"
	OpUserUpdate     Operation = "user.update"
	OpAPIKeyList     Operation = "apikey.list"
	OpAPIKeyCreate   Operation = "apikey.create"
	OpAPIKeyRevoke   Operation = "apikey.revoke"

	// Shop data
	OpCustomerList   Operation = "customer.list"
	OpCustomerGet    Operation = "customer.get"
	OpCustomerCreate Operation = "customer.create"
	OpCustomerUpdate Operation = "customer.update"
	OpVehicleList    Operation = "vehicle.list"
	OpVehicleGet     Operation = "vehicle.get"
	OpVehicleCreate  Operation = "vehicle.create"
	OpVehicleUpdate  Operation = "vehicle.update"
	OpCatalogList    Operation = "service.list"
	OpCatalogCreate  Operation = "service.create"
	OpCatalogUpdate  Operation = "service.update"

	// Work orders
	OpOrderList       Operation = "order.list"
	OpOrderGet        Operation = "order.get"
	OpOrderCreate     Operation = "order.create"
	OpOrderAssign     Operation = "order.assign"
	OpOrderTransition Operation = "order.transition"

	// Inspections, payments, appointments
	OpInspectionList   Operation = "inspection.list"
	OpInspectionCreate Operation = "inspection.create"
	OpPaymentList      Operation = "payment.list"
	OpPaymentCreate    Operation = "payment.create"
	OpScheduleList     Operation = "schedule.list"
	OpScheduleBook     Operation = "schedule.book"
)

// MinRole declares the narrowest tier allowed to invoke each operation.
// Operations at RoleMember need membership only.
var MinRole = map[Operation]Role{
	OpTenantList:          RolePlatformAdmin,
	OpTenantGet:           RolePlatformAdmin,
	OpTenantCreate:        RolePlatformAdmin,
	OpTenantActivateTrial: RolePlatformAdmin,
	OpTenantActivate:      RolePlatformAdmin,
	OpTenantSuspend:       RolePlatformAdmin,
	OpTenantReactivate:    RolePlatformAdmin,
	OpTenantCancel:        RolePlatformAdmin,

	OpUserList:       RoleManager,
	OpUserCreate:     RoleOwner,
	OpUserUpdateRole: RoleOwner,
	OpUserDeactivate: RoleOwner,
	OpUserReactivate: RoleOwner,
	OpUserUpdate:     RoleMember,
	OpAPIKeyList:     RoleOwner,
	OpAPIKeyCreate:   RoleOwner,
	OpAPIKeyRevoke:   RoleOwner,

	OpCustomerList:   RoleMember,
	OpCustomerGet:    RoleMember,
	OpCustomerCreate: RoleMember,
	OpCustomerUpdate: RoleMember,
	OpVehicleList:    RoleMember,
	OpVehicleGet:     RoleMember,
	OpVehicleCreate:  RoleMember,
	OpVehicleUpdate:  RoleMember,
	OpCatalogList:    RoleMember,
	OpCatalogCreate:  RoleManager,
	OpCatalogUpdate:  RoleManager,

	OpOrderList:       RoleMember,
	OpOrderGet:        RoleMember,
	OpOrderCreate:     RoleMember,
	OpOrderAssign:     RoleManager,
	OpOrderTransition: RoleMember,

	OpInspectionList:   RoleMember,
	OpInspectionCreate: RoleMember,
	OpPaymentList:      RoleMember,
	OpPaymentCreate:    RoleManager,
	OpScheduleList:     RoleMember,
	OpScheduleBook:     RoleMember,
}

// TenantScoped reports whether the operation acts on a tenant's own data and
// therefore goes through the tenant-status gate. Tenant lifecycle operations
// belong to the platform admin panel and are exempt.
func (op Operation) TenantScoped() bool {
	return MinRole[op] != RolePlatformAdmin
}
