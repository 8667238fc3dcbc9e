package authz

import (
	"context"
	"strings"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// TenantStateGuard is implemented by the tenant service; it rejects callers
// whose tenant is not in an operational state.
type TenantStateGuard interface {
	EnsureOperational(ctx context.Context, tenantID string) error
}

// Guard bundles the per-request access checks every route goes through:
// session authentication, the tenant-status gate, and the role-tier check.
type Guard struct {
	sessions *session.Store
	enforcer *Enforcer
	gate     TenantStateGuard
}

type GuardParams struct {
	fx.In
	Sessions *session.Store
	Enforcer *Enforcer
	Gate     TenantStateGuard
}

func NewGuard(p GuardParams) *Guard {
	return &Guard{
		sessions: p.Sessions,
		enforcer: p.Enforcer,
		gate:     p.Gate,
	}
}

// SessionCookie is the fallback cookie checked when no Authorization header
// is present. The auth login route sets it.
const SessionCookie = "ac_session"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}

	return ""
}

// Authenticate resolves the session token into an Actor on the request
// context. Requests without a valid session are rejected outright.
func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			_ = c.Error(errutil.Unauthorized("authentication required", nil))
			c.Abort()
			return
		}

		sess, err := g.sessions.Resolve(c.Request.Context(), token)
		if err != nil || sess == nil {
			_ = c.Error(errutil.Unauthorized("session is invalid or expired", nil))
			c.Abort()
			return
		}

		actor := Actor{
			UserID:   sess.UserID,
			TenantID: sess.TenantID,
			Role:     Role(sess.Role),
		}

		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// Require gates a route on the operation's declared tier plus, for
// tenant-scoped operations, the caller tenant's account status. Platform
// administrators carry no tenant and bypass the status gate.
func (g *Guard) Require(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		actor, ok := ActorFromContext(ctx)
		if !ok {
			_ = c.Error(errutil.Unauthorized("authentication required", nil))
			c.Abort()
			return
		}

		if op.TenantScoped() && !actor.IsPlatformAdmin() {
			if err := g.gate.EnsureOperational(ctx, actor.TenantID); err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
		}

		if err := g.enforcer.Authorize(actor, op); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Next()
	}
}
