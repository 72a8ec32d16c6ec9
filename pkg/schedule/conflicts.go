package schedule

import (
	"context"
	"fmt"

	"github.com/arnavshah/shiftboard-go/pkg/interval"
	"github.com/arnavshah/shiftboard-go/pkg/models"
	"github.com/arnavshah/shiftboard-go/pkg/store"
)

// Detector finds assignments of an employee that overlap a candidate
// interval. It is separate from the engine so the same check serves both
// new-assignment validation and re-validation when a shift window changes.
type Detector struct {
	store store.Store
}

// NewDetector creates a Detector over the given store.
func NewDetector(st store.Store) *Detector {
	return &Detector{store: st}
}

// FindConflicts resolves every assignment held by the employee to its shift's
// interval and returns those overlapping the candidate. excludeAssignmentID
// skips the assignment being edited in place; pass "" for new assignments.
// An empty result means the candidate is conflict-free.
func (d *Detector) FindConflicts(ctx context.Context, employeeID string, candidate interval.Interval, excludeAssignmentID string) ([]Conflict, error) {
	assignments, err := d.store.ListAssignmentsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("find conflicts: %w", err)
	}

	shifts := make(map[string]*models.Shift)
	var conflicts []Conflict
	for _, a := range assignments {
		if a.ID == excludeAssignmentID {
			continue
		}
		shift, ok := shifts[a.ShiftID]
		if !ok {
			shift, err = d.store.GetShift(ctx, a.ShiftID)
			if err != nil {
				return nil, fmt.Errorf("find conflicts: resolve shift %s: %w", a.ShiftID, err)
			}
			shifts[a.ShiftID] = shift
		}
		held := interval.Interval{Start: shift.Start, End: shift.End}
		if held.Overlaps(candidate) {
			conflicts = append(conflicts, Conflict{
				AssignmentID: a.ID,
				ShiftID:      a.ShiftID,
				Interval:     held,
			})
		}
	}
	return conflicts, nil
}
