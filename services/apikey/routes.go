package apikey

import (
	"net/http"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(engine *gin.Engine, guard *authz.Guard, svc *Service) {
	g := engine.Group("/v1/api-keys", guard.Authenticate())

	g.GET("", guard.Require(authz.OpAPIKeyList), func(c *gin.Context) {
		resp, err := svc.ListKeys(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("", guard.Require(authz.OpAPIKeyCreate), func(c *gin.Context) {
		var req CreateKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}

		resp, err := svc.CreateKey(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	})

	g.POST("/:key_id/revoke", guard.Require(authz.OpAPIKeyRevoke), func(c *gin.Context) {
		resp, err := svc.RevokeKey(c.Request.Context(), &RevokeKeyRequest{KeyID: c.Param("key_id")})
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})
}
