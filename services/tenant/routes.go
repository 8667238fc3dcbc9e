package tenant

import (
	"net/http"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the tenant lifecycle endpoints. All of them belong to
// the platform admin panel, so the guard never applies the tenant-status gate
// here.
func RegisterRoutes(engine *gin.Engine, guard *authz.Guard, svc *Service) {
	g := engine.Group("/v1/tenants", guard.Authenticate())

	g.GET("", guard.Require(authz.OpTenantList), func(c *gin.Context) {
		var req ListTenantsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid query parameters", err))
			return
		}

		resp, err := svc.ListTenants(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("", guard.Require(authz.OpTenantCreate), func(c *gin.Context) {
		var req CreateTenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}

		resp, err := svc.CreateTenant(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	})

	g.GET("/:tenant_id", guard.Require(authz.OpTenantGet), func(c *gin.Context) {
		resp, err := svc.GetTenant(c.Request.Context(), &GetTenantRequest{TenantID: c.Param("tenant_id")})
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("/:tenant_id/activate-trial", guard.Require(authz.OpTenantActivateTrial), func(c *gin.Context) {
		var req ActivateTrialRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}
		req.TenantID = c.Param("tenant_id")

		resp, err := svc.ActivateTrial(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("/:tenant_id/activate", guard.Require(authz.OpTenantActivate), func(c *gin.Context) {
		resp, err := svc.Activate(c.Request.Context(), &ActivateRequest{TenantID: c.Param("tenant_id")})
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("/:tenant_id/suspend", guard.Require(authz.OpTenantSuspend), func(c *gin.Context) {
		var req SuspendRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}
		req.TenantID = c.Param("tenant_id")

		resp, err := svc.Suspend(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("/:tenant_id/reactivate", guard.Require(authz.OpTenantReactivate), func(c *gin.Context) {
		resp, err := svc.Reactivate(c.Request.Context(), &ReactivateRequest{TenantID: c.Param("tenant_id")})
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("/:tenant_id/cancel", guard.Require(authz.OpTenantCancel), func(c *gin.Context) {
		resp, err := svc.Cancel(c.Request.Context(), &CancelRequest{TenantID: c.Param("tenant_id")})
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})
}
