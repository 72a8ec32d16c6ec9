package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shiftboard-go/pkg/interval"
)

// ValidateAssignment handles the dry-run validation request: it reports
// whether a proposed assignment would conflict without committing anything.
func (h *Handler) ValidateAssignment(c *gin.Context) {
	var input AssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	shift, err := h.Query.ShiftByID(ctx, input.ShiftID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	conflicts, err := h.Engine.Detector().FindConflicts(ctx, input.EmployeeID,
		interval.Interval{Start: shift.Start, End: shift.End}, "")
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":     len(conflicts) == 0,
		"conflicts": conflicts,
	})
}
