package vehicle

import (
	"net/http"

	"autocare-controlplane/pkg/errutil"
	"autocare-controlplane/services/authz"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(engine *gin.Engine, guard *authz.Guard, svc *Service) {
	g := engine.Group("/v1/vehicles", guard.Authenticate())

	g.GET("", guard.Require(authz.OpVehicleList), func(c *gin.Context) {
		var req ListVehiclesRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid query parameters", err))
			return
		}

		resp, err := svc.ListVehicles(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.POST("", guard.Require(authz.OpVehicleCreate), func(c *gin.Context) {
		var req CreateVehicleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}

		resp, err := svc.CreateVehicle(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	})

	g.GET("/:vehicle_id", guard.Require(authz.OpVehicleGet), func(c *gin.Context) {
		resp, err := svc.GetVehicle(c.Request.Context(), &GetVehicleRequest{VehicleID: c.Param("vehicle_id")})
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	g.PATCH("/:vehicle_id", guard.Require(authz.OpVehicleUpdate), func(c *gin.Context) {
		var req UpdateVehicleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("invalid request body", err))
			return
		}
		req.VehicleID = c.Param("vehicle_id")

		resp, err := svc.UpdateVehicle(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, resp)
	})
}
