package customer

import (
	"net/http"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(engine *gin.Engine, guard *authz.Guard, svc *Service) {
	g := engine.Group("/v1/customers", guard.Authenticate())

	g.GET("", guard.Require(authz.OpCustomerList), func(c *gin.Context) {
		var req ListCustomersRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid query parameters", err))
			return
		}

		resp, err := svc.ListCustomers(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("", guard.Require(authz.OpCustomerCreate), func(c *gin.Context) {
		var req CreateCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}

		resp, err := svc.CreateCustomer(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	})

	g.GET("/:customer_id", guard.Require(authz.OpCustomerGet), func(c *gin.Context) {
		resp, err := svc.GetCustomer(c.Request.Context(), &GetCustomerRequest{CustomerID: c.Param("customer_id")})
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.PATCH("/:customer_id", guard.Require(authz.OpCustomerUpdate), func(c *gin.Context) {
		var req UpdateCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}
		req.CustomerID = c.Param("customer_id")

		resp, err := svc.UpdateCustomer(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})
}
