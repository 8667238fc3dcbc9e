package auth

import (
	"net/http"
	"strings"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(engine *gin.Engine, guard *authz.Guard, svc *Service) {
	g := engine.Group("/v1/auth")

	g.POST("/login", func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}

		resp, err := svc.Login(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.SetCookie(authz.SessionCookie, resp.Token, 0, "/", "", false, true)
		c.JSON(http.StatusOK, resp)
	})

	g.POST("/logout", func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			if cookie, err := c.Cookie(authz.SessionCookie); err == nil {
				token = cookie
			}
		}

		if err := svc.Logout(c.Request.Context(), token); err != nil {
			_ = c.Error(errutil.Internal("failed to logout", err))
			return
		}

		c.SetCookie(authz.SessionCookie, "", -1, "/", "", false, true)
		c.Status(http.StatusNoContent)
	})

	g.GET("/me", guard.Authenticate(), func(c *gin.Context) {
		resp, err := svc.Me(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})
}
