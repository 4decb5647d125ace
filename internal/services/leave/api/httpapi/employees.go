package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/louisbranch/leaveledger/internal/services/leave/directory"
)

type createEmployeeBody struct {
	ID         string `json:"id" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department"`
}

type resetPasswordBody struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// CreateEmployee registers a new employee with the default balance.
func (h *Handler) CreateEmployee(c *gin.Context) {
	var body createEmployeeBody
	if !h.bind(c, &body) {
		return
	}
	employee, err := h.directory.Create(c.Request.Context(), directory.CreateInput{
		ID:         body.ID,
		Username:   body.Username,
		Credential: body.Password,
		Name:       body.Name,
		Email:      body.Email,
		Department: body.Department,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusCreated, wire.EmployeePayload{Employee: wire.BuildEmployee(employee)})
}

// ListEmployees returns active employees.
func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.directory.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	dtos := wire.BuildEmployees(employees)
	h.ok(c, http.StatusOK, wire.EmployeeListPayload{Count: len(dtos), Employees: dtos})
}

// Me returns the authenticated employee.
func (h *Handler) Me(c *gin.Context) {
	employee, _ := currentEmployee(c)
	h.ok(c, http.StatusOK, wire.EmployeePayload{Employee: wire.BuildEmployee(employee)})
}

// ResetPassword overwrites the caller's credential.
func (h *Handler) ResetPassword(c *gin.Context) {
	var body resetPasswordBody
	if !h.bind(c, &body) {
		return
	}
	if err := h.directory.ResetCredential(c.Request.Context(), c.Param("id"), body.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusOK, wire.MessagePayload{Message: "Password updated successfully"})
}
