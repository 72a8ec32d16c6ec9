package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/shiftboard-go/pkg/interval"
	"github.com/arnavshah/shiftboard-go/pkg/models"
	"github.com/arnavshah/shiftboard-go/pkg/schedule"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Engine *schedule.Engine
	Query  *schedule.QueryService
	Logger *zap.Logger
}

// respondError translates core error kinds into HTTP responses. The core
// never sees HTTP; this is the whole adapter-side error policy.
func (h *Handler) respondError(c *gin.Context, err error) {
	var doubleBooking *schedule.DoubleBookingError
	var shiftEdit *schedule.ShiftEditError
	var refIntegrity *schedule.ReferentialIntegrityError

	switch {
	case errors.Is(err, schedule.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &doubleBooking):
		c.JSON(http.StatusConflict, gin.H{"error": doubleBooking.Error(), "conflicts": doubleBooking.Conflicts})
	case errors.Is(err, schedule.ErrShiftFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &refIntegrity):
		c.JSON(http.StatusConflict, gin.H{"error": refIntegrity.Error(), "active_assignments": refIntegrity.ActiveAssignments})
	case errors.As(err, &shiftEdit):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": shiftEdit.Error(), "invalid_assignments": shiftEdit.Invalid})
	case errors.Is(err, schedule.ErrOutsideAvailability), errors.Is(err, schedule.ErrMaxHoursExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, interval.ErrInvalidInterval), errors.Is(err, schedule.ErrInvalidHeadcount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// EmployeeInput is the request body for creating or updating an employee
type EmployeeInput struct {
	Name           string              `json:"name" binding:"required"`
	MaxWeeklyHours float64             `json:"max_weekly_hours"`
	Availability   []AvailabilityInput `json:"availability"`
}

// AvailabilityInput is one weekly availability window
type AvailabilityInput struct {
	Weekday     int `json:"weekday"`
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

func (in EmployeeInput) windows() []models.AvailabilityWindow {
	windows := make([]models.AvailabilityWindow, len(in.Availability))
	for i, w := range in.Availability {
		windows[i] = models.AvailabilityWindow{
			Weekday:     w.Weekday,
			StartMinute: w.StartMinute,
			EndMinute:   w.EndMinute,
		}
	}
	return windows
}

// CreateEmployee handles POST /employees
func (h *Handler) CreateEmployee(c *gin.Context) {
	var input EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	employee, err := h.Engine.CreateEmployee(c.Request.Context(), input.Name, input.MaxWeeklyHours, input.windows())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// UpdateEmployee handles PUT /employees/:id
func (h *Handler) UpdateEmployee(c *gin.Context) {
	var input EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	employee, err := h.Engine.UpdateEmployee(c.Request.Context(), c.Param("id"), input.Name, input.MaxWeeklyHours, input.windows())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee handles DELETE /employees/:id?cascade=true
func (h *Handler) DeleteEmployee(c *gin.Context) {
	cascade := c.Query("cascade") == "true"
	if err := h.Engine.DeleteEmployee(c.Request.Context(), c.Param("id"), cascade); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ShiftInput is the request body for creating a shift. A nil Headcount means
// the field was omitted and defaults to 1; an explicit 0 is rejected.
type ShiftInput struct {
	Start     time.Time `json:"start" binding:"required"`
	End       time.Time `json:"end" binding:"required"`
	Headcount *int      `json:"headcount"`
	Role      string    `json:"role"`
}

// CreateShift handles POST /shifts
func (h *Handler) CreateShift(c *gin.Context) {
	var input ShiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	headcount := 1
	if input.Headcount != nil {
		headcount = *input.Headcount
	}
	shift, err := h.Engine.CreateShift(c.Request.Context(), input.Start, input.End, headcount, input.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// EditShiftWindow handles PUT /shifts/:id/window
func (h *Handler) EditShiftWindow(c *gin.Context) {
	var input struct {
		Start time.Time `json:"start" binding:"required"`
		End   time.Time `json:"end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	shift, err := h.Engine.EditShiftWindow(c.Request.Context(), c.Param("id"), input.Start, input.End)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

// DeleteShift handles DELETE /shifts/:id?cascade=true
func (h *Handler) DeleteShift(c *gin.Context) {
	cascade := c.Query("cascade") == "true"
	if err := h.Engine.DeleteShift(c.Request.Context(), c.Param("id"), cascade); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
