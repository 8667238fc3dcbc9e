package rediskey

import "fmt"

// Key prefixes shared across the control plane and the task worker.
const (
	TenantPrefix   = "tenant"
	SessionPrefix  = "session"
	SequencePrefix = "seq"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildTenantIDKey returns "tenant:{tenantID}"
func BuildTenantIDKey(tenantID string) string {
	return NamespaceKey(TenantPrefix, tenantID)
}

// BuildSessionKey returns "session:{sessionID}"
func BuildSessionKey(sessionID string) string {
	return NamespaceKey(SessionPrefix, sessionID)
}

// BuildUserSessionsKey returns "session:user:{userID}", the set of live
// session IDs belonging to one user.
func BuildUserSessionsKey(userID string) string {
	return NamespaceKey(SessionPrefix, "user:"+userID)
}

// BuildSequenceKey returns "seq:{name}"
func BuildSequenceKey(name string) string {
	return NamespaceKey(SequencePrefix, name)
}
