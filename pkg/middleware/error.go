package middleware

import (
	"errors"
	"net/http"

	"autocare-controlplane/pkg/errutil"

	"github.com/gin-gonic/gin"
)

// Error renders the last error attached to the context once the handler
// chain has finished. Domain errors carry their own status; anything else
// is reported as an internal error without leaking details.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		var base errutil.BaseError
		if errors.As(last.Err, &base) {
			c.JSON(base.Code.HTTPStatus(), base.JSON())
			return
		}

		c.JSON(http.StatusInternalServerError, errutil.BaseError{
			Code:    errutil.StatusInternal,
			Message: "internal error",
		}.JSON())
	}
}
