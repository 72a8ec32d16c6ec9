package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shiftboard-go/pkg/models"
)

// FillReport summarizes one auto-fill run.
type FillReport struct {
	Filled   []models.Assignment `json:"filled"`
	Unfilled []UnfilledShift     `json:"unfilled"`
}

// UnfilledShift explains why open slots on a shift could not be staffed.
type UnfilledShift struct {
	ShiftID string   `json:"shift_id"`
	Open    int      `json:"open"`
	Reasons []string `json:"reasons"`
}

// FillOpenShifts greedily staffs every open shift in [from, to). For each
// open slot the least-loaded eligible employee (fewest scheduled hours in the
// shift's week) is tried first; every placement goes through the same
// validation as CreateAssignment, so a fill run can never violate an
// invariant. Shifts that stay short-handed are reported with the rule
// failures seen while trying.
func (e *Engine) FillOpenShifts(ctx context.Context, from, to time.Time) (*FillReport, error) {
	shifts, err := e.store.ListShiftsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	employees, err := e.store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	report := &FillReport{}
	for _, shift := range shifts {
		count, err := e.store.CountAssignmentsForShift(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		open := shift.Headcount - int(count)
		if open <= 0 {
			continue
		}

		candidates, err := e.rankByWeeklyLoad(ctx, employees, shift.Start)
		if err != nil {
			return nil, err
		}

		fullCount := 0
		overlapCount := 0
		unavailableCount := 0
		maxHoursCount := 0

		for _, candidate := range candidates {
			if open == 0 {
				break
			}
			assignment, err := e.CreateAssignment(ctx, candidate.ID, shift.ID)
			if err == nil {
				report.Filled = append(report.Filled, *assignment)
				open--
				continue
			}
			var doubleBooking *DoubleBookingError
			switch {
			case errors.Is(err, ErrShiftFull):
				fullCount++
			case errors.As(err, &doubleBooking):
				overlapCount++
			case errors.Is(err, ErrOutsideAvailability):
				unavailableCount++
			case errors.Is(err, ErrMaxHoursExceeded):
				maxHoursCount++
			default:
				return nil, err
			}
		}

		if open > 0 {
			var reasons []string
			if overlapCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d employees had overlapping shifts", overlapCount))
			}
			if unavailableCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d employees were unavailable", unavailableCount))
			}
			if maxHoursCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d employees were at max weekly hours", maxHoursCount))
			}
			if fullCount > 0 {
				reasons = append(reasons, "shift filled up during the run")
			}
			if len(reasons) == 0 {
				reasons = append(reasons, "no employees to try")
			}
			report.Unfilled = append(report.Unfilled, UnfilledShift{
				ShiftID: shift.ID,
				Open:    open,
				Reasons: reasons,
			})
		}
	}

	e.logger.Info("auto-fill run complete",
		zap.Int("filled", len(report.Filled)),
		zap.Int("unfilled_shifts", len(report.Unfilled)))
	return report, nil
}

type rankedEmployee struct {
	ID    string
	hours float64
	name  string
}

// rankByWeeklyLoad orders employees by scheduled hours in the week holding
// ref, fewest first, so repeated fills spread load evenly. Name breaks ties
// to keep runs deterministic.
func (e *Engine) rankByWeeklyLoad(ctx context.Context, employees []models.Employee, ref time.Time) ([]rankedEmployee, error) {
	ranked := make([]rankedEmployee, 0, len(employees))
	for _, emp := range employees {
		hours, err := e.weeklyHours(ctx, emp.ID, ref, "")
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, rankedEmployee{ID: emp.ID, hours: hours, name: emp.Name})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].hours != ranked[j].hours {
			return ranked[i].hours < ranked[j].hours
		}
		return ranked[i].name < ranked[j].name
	})
	return ranked, nil
}
