// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"opstock/internal/core/apperror"
	"opstock/pkg/logger"
)

// Recovery converts panics into 500 responses. The stack trace goes to the
// log only; the client sees a generic internal error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				recordPanic(c, r)
			}
		}()
		c.Next()
	}
}

func recordPanic(c *gin.Context, r any) {
	logger.Error(c.Request.Context(), "panic recovered",
		"error", r,
		"path", c.Request.URL.Path,
		"stack", string(debug.Stack()),
	)

	appErr := apperror.NewInternal(fmt.Errorf("panic: %v", r)).
		WithDetail("request_id", c.GetString("request_id"))
	_ = c.Error(appErr)
	c.Abort()
}
