package inspection

import (
	"net/http"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(engine *gin.Engine, guard *authz.Guard, svc *Service) {
	g := engine.Group("/v1/inspections", guard.Authenticate())

	g.GET("", guard.Require(authz.OpInspectionList), func(c *gin.Context) {
		var req ListInspectionsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid query parameters", err))
			return
		}

		resp, err := svc.ListInspections(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("", guard.Require(authz.OpInspectionCreate), func(c *gin.Context) {
		var req CreateInspectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}

		resp, err := svc.CreateInspection(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	})
}
