package authz

import (
	"fmt"

	"autocare-controlplane/pkg/errutil"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// rbacModel is a plain role-inheritance RBAC model: a request passes when
// the caller's role is, or inherits, the tier the operation is declared at.
const rbacModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj
`

// Enforcer answers role-tier checks for the operation catalog.
type Enforcer struct {
	enforcer *casbin.Enforcer
}

// NewEnforcer builds the casbin enforcer from the operation catalog. The
// grouping chain platform_admin -> owner -> manager -> member encodes the
// nested tiers, so a broader role passes every narrower policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	groupings := [][2]Role{
		{RolePlatformAdmin, RoleOwner},
		{RoleOwner, RoleManager},
		{RoleManager, RoleMember},
	}
	for _, g := range groupings {
		if _, err := e.AddGroupingPolicy(string(g[0]), string(g[1])); err != nil {
			return nil, err
		}
	}

	for op, min := range MinRole {
		if _, err := e.AddPolicy(string(min), string(op)); err != nil {
			return nil, err
		}
	}

	return &Enforcer{enforcer: e}, nil
}

// Authorize returns a categorical forbidden error when the actor's role is
// below the tier required by op. Unknown operations never pass.
func (e *Enforcer) Authorize(actor Actor, op Operation) error {
	if !actor.Role.Valid() {
		return errutil.Forbidden(fmt.Sprintf("role %q is not permitted to %s", actor.Role, op), nil)
	}

	ok, err := e.enforcer.Enforce(string(actor.Role), string(op))
	if err != nil {
		return errutil.Internal("failed to evaluate access policy", err)
	}

	if !ok {
		return errutil.Forbidden(fmt.Sprintf("role %q is not permitted to %s", actor.Role, op), nil)
	}

	return nil
}
