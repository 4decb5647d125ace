package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
)

// NewRouter registers every route on a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	useJSONFieldNames()
	router := gin.New()
	router.Use(requestLogger(h.logger), recovery(h.logger))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, wire.FailWith(apperrors.CodeNotFound, "Route not found"))
	})

	router.GET("/health", h.Health)

	employees := router.Group("/employees")
	{
		employees.POST("", h.CreateEmployee)
		employees.GET("", h.ListEmployees)
		employees.GET("/me", h.basicAuth(), h.Me)

		self := employees.Group("/:id", h.basicAuth())
		self.POST("/reset-password", requireSelf("You can only reset your own password"), h.ResetPassword)
		self.POST("/initialize", requireSelf("You can only manage your own leaves"), h.InitializeBalance)
		self.GET("/leave-balance", requireSelf("You can only view your own leave balance"), h.LeaveBalance)
		self.POST("/apply-leave", requireSelf("You can only apply leave for yourself"), h.ApplyLeave)
		self.POST("/credit-leave", requireSelf("You can only credit leave to your own account"), h.CreditLeave)
		self.GET("/leave-requests", requireSelf("You can only view your own leave requests"), h.LeaveRequests)
	}
	return router
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, wire.OK(gin.H{"status": "ok"}))
}
