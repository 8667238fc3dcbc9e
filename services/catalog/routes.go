package catalog

import (
	"net/http"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(engine *gin.Engine, guard *authz.Guard, svc *Service) {
	g := engine.Group("/v1/services", guard.Authenticate())

	g.GET("", guard.Require(authz.OpCatalogList), func(c *gin.Context) {
		var req ListItemsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid query parameters", err))
			return
		}

		resp, err := svc.ListItems(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("", guard.Require(authz.OpCatalogCreate), func(c *gin.Context) {
		var req CreateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}

		resp, err := svc.CreateItem(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	})

	g.PATCH("/:service_id", guard.Require(authz.OpCatalogUpdate), func(c *gin.Context) {
		var req UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}
		req.ServiceID = c.Param("service_id")

		resp, err := svc.UpdateItem(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})
}
