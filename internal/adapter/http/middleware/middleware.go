package middleware

import (
	"net/http"
	"time"

	"catalystwells-core/internal/core/ports"
	"catalystwells-core/pkg/apperror"
	"catalystwells-core/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys
const (
	CtxUserKey = "session_user"
)

// SessionAuth validates the session cookie and aborts when no valid session
// exists. The validated user lands in the context under CtxUserKey.
func SessionAuth(tokenSvc ports.TokenService, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := sessionFromCookie(c, tokenSvc, cookieName)
		if err != nil {
			response.Error(c, apperror.ErrInvalidSession())
			c.Abort()
			return
		}
		if user == nil {
			response.Error(c, apperror.ErrUnauthorized())
			c.Abort()
			return
		}
		c.Set(CtxUserKey, user)
		c.Next()
	}
}

// OptionalSession resolves the session when present but never aborts.
// The authorization endpoint uses it: an anonymous visitor gets a login
// redirect instead of a 401.
func OptionalSession(tokenSvc ports.TokenService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := sessionFromCookie(c, tokenSvc, cookieName); err == nil && user != nil {
			c.Set(CtxUserKey, user)
		}
		c.Next()
	}
}

func sessionFromCookie(c *gin.Context, tokenSvc ports.TokenService, cookieName string) (*ports.SessionUser, error) {
	token, err := c.Cookie(cookieName)
	if err != nil || token == "" {
		return nil, nil
	}
	return tokenSvc.Validate(token)
}

// SessionUser returns the authenticated user stored by SessionAuth or
// OptionalSession, or nil.
func SessionUser(c *gin.Context) *ports.SessionUser {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*ports.SessionUser)
	if !ok {
		return nil
	}
	return user
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"code":  "INTERNAL_ERROR",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
