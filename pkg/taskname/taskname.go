package taskname

const (
	// Tenant tasks
	TenantProvisioningCatalog = "tenant:provisioning:catalog"

	// Order tasks
	OrderCompleted = "order:completed"
)
