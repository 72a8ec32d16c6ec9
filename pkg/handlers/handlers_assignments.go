package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AssignmentInput is the request body for creating an assignment
type AssignmentInput struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	ShiftID    string `json:"shift_id" binding:"required"`
}

// CreateAssignment handles POST /assignments
func (h *Handler) CreateAssignment(c *gin.Context) {
	var input AssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	assignment, err := h.Engine.CreateAssignment(c.Request.Context(), input.EmployeeID, input.ShiftID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// DeleteAssignment handles DELETE /assignments/:id
func (h *Handler) DeleteAssignment(c *gin.Context) {
	if err := h.Engine.DeleteAssignment(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FillInput bounds an auto-fill run
type FillInput struct {
	From time.Time `json:"from" binding:"required"`
	To   time.Time `json:"to" binding:"required"`
}

// FillOpenShifts handles POST /schedule/fill
func (h *Handler) FillOpenShifts(c *gin.Context) {
	var input FillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.To.After(input.From) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be after from"})
		return
	}
	report, err := h.Engine.FillOpenShifts(c.Request.Context(), input.From, input.To)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ReassignInput names the new target; empty fields keep the current value
type ReassignInput struct {
	NewEmployeeID string `json:"new_employee_id"`
	NewShiftID    string `json:"new_shift_id"`
}

// Reassign handles POST /assignments/:id/reassign
func (h *Handler) Reassign(c *gin.Context) {
	var input ReassignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.NewEmployeeID == "" && input.NewShiftID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new_employee_id or new_shift_id is required"})
		return
	}
	assignment, err := h.Engine.Reassign(c.Request.Context(), c.Param("id"), input.NewEmployeeID, input.NewShiftID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}
