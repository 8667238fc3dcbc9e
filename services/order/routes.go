package order

import (
	"net/http"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(engine *gin.Engine, guard *authz.Guard, svc *Service) {
	g := engine.Group("/v1/orders", guard.Authenticate())

	g.GET("", guard.Require(authz.OpOrderList), func(c *gin.Context) {
		var req ListOrdersRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid query parameters", err))
			return
		}

		resp, err := svc.ListOrders(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("", guard.Require(authz.OpOrderCreate), func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}

		resp, err := svc.CreateOrder(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	})

	g.GET("/:order_id", guard.Require(authz.OpOrderGet), func(c *gin.Context) {
		resp, err := svc.GetOrder(c.Request.Context(), &GetOrderRequest{OrderID: c.Param("order_id")})
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("/:order_id/assign", guard.Require(authz.OpOrderAssign), func(c *gin.Context) {
		var req AssignOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}
		req.OrderID = c.Param("order_id")

		resp, err := svc.AssignOrder(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("/:order_id/transition", guard.Require(authz.OpOrderTransition), func(c *gin.Context) {
		var req TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}
		req.OrderID = c.Param("order_id")

		resp, err := svc.Transition(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})
}
