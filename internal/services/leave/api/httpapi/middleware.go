package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"go.uber.org/zap"
)

const employeeContextKey = "leaveledger.employee"

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if employee, ok := currentEmployee(c); ok {
			fields = append(fields, zap.String("employee_id", employee.ID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", fields...)
			return
		}
		logger.Info("http request", fields...)
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("http handler panic", zap.Any("panic", recovered), zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, wire.Fail(fmt.Errorf("panic: %v", recovered)))
	})
}

// basicAuth resolves the caller from HTTP Basic credentials.
func (h *Handler) basicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			h.unauthorized(c)
			return
		}
		employee, err := h.directory.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeAuthFailed) {
				h.unauthorized(c)
				return
			}
			h.abortWithError(c, err)
			return
		}
		c.Set(employeeContextKey, employee)
		c.Next()
	}
}

func (h *Handler) unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="leaveledger"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, wire.FailWith(apperrors.CodeAuthFailed, "Invalid authentication credentials"))
}

// requireSelf rejects callers acting on another employee's id.
func requireSelf(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		employee, ok := currentEmployee(c)
		if !ok || employee.ID != c.Param("id") {
			c.AbortWithStatusJSON(http.StatusForbidden, wire.FailWith(apperrors.CodeForbidden, message))
			return
		}
		c.Next()
	}
}

func currentEmployee(c *gin.Context) (domain.Employee, bool) {
	value, ok := c.Get(employeeContextKey)
	if !ok {
		return domain.Employee{}, false
	}
	employee, ok := value.(domain.Employee)
	return employee, ok
}
