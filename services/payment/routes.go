package payment

import (
	"net/http"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(engine *gin.Engine, guard *authz.Guard, svc *Service) {
	g := engine.Group("/v1/payments", guard.Authenticate())

	g.GET("", guard.Require(authz.OpPaymentList), func(c *gin.Context) {
		var req ListPaymentsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid query parameters", err))
			return
		}

		resp, err := svc.ListPayments(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("", guard.Require(authz.OpPaymentCreate), func(c *gin.Context) {
		var req CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}

		resp, err := svc.CreatePayment(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	})
}
