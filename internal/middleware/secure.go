package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// SecureHeaders applies unrolled/secure response headers. In development the
// HSTS and SSL redirect checks are relaxed.
func SecureHeaders(isProduction bool) gin.HandlerFunc {
	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		IsDevelopment:         !isProduction,
	})
	return func(c *gin.Context) {
		if err := sec.Process(c.Writer, c.Request); err != nil {
			GetLoggerFromCtx(c.Request.Context()).Warn("Request rejected by secure middleware", slog.String("error", err.Error()))
			c.Abort()
			return
		}
		// secure may have issued a redirect
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	}
}
