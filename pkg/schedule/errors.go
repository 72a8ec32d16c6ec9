package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arnavshah/shiftboard-go/pkg/interval"
	"github.com/arnavshah/shiftboard-go/pkg/store"
)

// ErrNotFound mirrors the store sentinel so callers only import this package.
var ErrNotFound = store.ErrNotFound

var (
	// ErrShiftFull is returned when a shift already has headcount assignments.
	ErrShiftFull = errors.New("shift is at full headcount")
	// ErrOutsideAvailability is returned when a shift falls outside every
	// availability window the employee declared for that weekday.
	ErrOutsideAvailability = errors.New("shift is outside employee availability")
	// ErrMaxHoursExceeded is returned when an assignment would push an
	// employee past their weekly hours cap.
	ErrMaxHoursExceeded = errors.New("assignment exceeds employee weekly hours cap")
	// ErrInvalidHeadcount is returned for shifts with headcount < 1.
	ErrInvalidHeadcount = errors.New("shift headcount must be at least 1")
)

// Conflict identifies an existing assignment that overlaps a candidate interval.
type Conflict struct {
	AssignmentID string            `json:"assignment_id"`
	ShiftID      string            `json:"shift_id"`
	Interval     interval.Interval `json:"interval"`
}

// DoubleBookingError reports that an employee already holds one or more
// assignments overlapping the candidate interval.
type DoubleBookingError struct {
	EmployeeID string
	Conflicts  []Conflict
}

func (e *DoubleBookingError) Error() string {
	ids := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		ids[i] = c.AssignmentID
	}
	return fmt.Sprintf("employee %s is already booked by assignment(s) %s",
		e.EmployeeID, strings.Join(ids, ", "))
}

// InvalidAssignment records why an existing assignment would break under a
// proposed shift window change.
type InvalidAssignment struct {
	AssignmentID string `json:"assignment_id"`
	EmployeeID   string `json:"employee_id"`
	Reason       string `json:"reason"`
}

// ShiftEditError reports that changing a shift's window would invalidate
// existing assignments. No mutation was applied.
type ShiftEditError struct {
	ShiftID string
	Invalid []InvalidAssignment
}

func (e *ShiftEditError) Error() string {
	ids := make([]string, len(e.Invalid))
	for i, ia := range e.Invalid {
		ids[i] = ia.AssignmentID
	}
	return fmt.Sprintf("editing shift %s would invalidate assignment(s) %s",
		e.ShiftID, strings.Join(ids, ", "))
}

// ReferentialIntegrityError reports a delete that would orphan active
// assignments without an explicit cascade.
type ReferentialIntegrityError struct {
	Kind              string // "employee" or "shift"
	ID                string
	ActiveAssignments int
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %s has %d active assignment(s); pass cascade to delete them",
		e.Kind, e.ID, e.ActiveAssignments)
}
