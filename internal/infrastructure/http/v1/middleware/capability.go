package middleware

import (
	"github.com/gin-gonic/gin"

	"kasirku/internal/core/apperror"
	appctx "kasirku/internal/core/context"
	"kasirku/internal/core/security"
)

// RequireCapability rejects requests whose user lacks capability c.
// Store owners pass every check.
func RequireCapability(c security.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqCtx := ctx.Request.Context()
		if appctx.GetUser(reqCtx) == nil {
			_ = ctx.Error(apperror.NewUnauthorized("authentication required"))
			ctx.Abort()
			return
		}
		if !appctx.Can(reqCtx, c) {
			_ = ctx.Error(apperror.NewForbidden("insufficient permissions").
				WithDetail("required_capability", c.String()))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
