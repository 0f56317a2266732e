package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	actorKey        = "actor"
)

// TokenParser turns a bearer token into the caller's identity.
type TokenParser interface {
	Parse(raw string) (model.Actor, error)
}

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger writes one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if actor, ok := actorFrom(c); ok {
			fields = append(fields, zap.Int64("user_id", actor.UserID))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 with the usual error body.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic while handling request",
			zap.String("request_id", requestID(c)),
			zap.Any("panic", recovered),
		)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	})
}

// Authenticate requires a valid "Authorization: Bearer <token>" header.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			c.Abort()
			return
		}

		actor, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok || !actor.Admin {
			respondError(c, http.StatusForbidden, "forbidden", "administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
