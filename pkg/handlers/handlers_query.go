package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
		return time.Time{}, time.Time{}, false
	}
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be after from"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// GetEmployee handles GET /employees/:id
func (h *Handler) GetEmployee(c *gin.Context) {
	employee, err := h.Query.EmployeeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// ListEmployees handles GET /employees
func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.Query.ListEmployees(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": employees})
}

// GetShift handles GET /shifts/:id
func (h *Handler) GetShift(c *gin.Context) {
	shift, err := h.Query.ShiftByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// ListShifts handles GET /shifts
func (h *Handler) ListShifts(c *gin.Context) {
	shifts, err := h.Query.ListShifts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shifts": shifts})
}

// EmployeeAssignments handles GET /employees/:id/assignments?from=&to=
func (h *Handler) EmployeeAssignments(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	details, err := h.Query.AssignmentsForEmployee(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": details})
}

// OpenShifts handles GET /shifts/open?from=&to=&role=
func (h *Handler) OpenShifts(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	open, err := h.Query.OpenShifts(c.Request.Context(), from, to, c.Query("role"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"open_shifts": open})
}

// DayAssignments handles GET /assignments/day?date=2026-03-02
func (h *Handler) DayAssignments(c *gin.Context) {
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	details, err := h.Query.AssignmentsForDay(c.Request.Context(), day)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": details})
}

// MonthlyOverview handles GET /overview?year=2026&month=3
func (h *Handler) MonthlyOverview(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be 1-12"})
		return
	}
	summaries, err := h.Query.MonthlyOverview(c.Request.Context(), year, time.Month(month))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": summaries})
}
