package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aliskhannn/safeguard-bot/internal/metrics"
	"github.com/aliskhannn/safeguard-bot/internal/service"
)

const userIDKey = "user_id"

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// authRequired rejects requests without a valid bearer token.
func authRequired(tokens *TokenIssuer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			logger.Debug("token rejected", zap.Error(err))
			writeError(c, logger, ErrInvalidToken)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// adminOnly checks the current record, so revoked admins lose access
// before their token expires.
func adminOnly(users UserService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Get(c.Request.Context(), userID(c))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		if !user.IsAdmin {
			writeError(c, logger, service.ErrNotAdmin)
			return
		}
		c.Next()
	}
}

// observe records request latency and logs every request.
func observe(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(elapsed.Seconds())

		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
	}
}
