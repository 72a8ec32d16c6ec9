package schedule

import (
	"context"
	"time"

	"github.com/arnavshah/shiftboard-go/pkg/interval"
	"github.com/arnavshah/shiftboard-go/pkg/models"
	"github.com/arnavshah/shiftboard-go/pkg/store"
)

// QueryService builds read-side views by composing store reads. It never
// mutates and needs no conflict checks or locks; it sees whatever the store
// has committed.
type QueryService struct {
	store    store.Store
	location *time.Location
}

// NewQueryService creates a QueryService. loc may be nil for time.Local.
func NewQueryService(st store.Store, loc *time.Location) *QueryService {
	if loc == nil {
		loc = time.Local
	}
	return &QueryService{store: st, location: loc}
}

// AssignmentDetail pairs an assignment with its resolved shift.
type AssignmentDetail struct {
	Assignment models.Assignment `json:"assignment"`
	Shift      models.Shift      `json:"shift"`
}

// OpenShift is a shift with fewer assignments than its headcount.
type OpenShift struct {
	Shift    models.Shift `json:"shift"`
	Assigned int          `json:"assigned"`
	Open     int          `json:"open"`
}

// EmployeeMonthlySummary aggregates one employee's scheduled load for a month.
type EmployeeMonthlySummary struct {
	EmployeeID  string  `json:"employee_id"`
	Name        string  `json:"name"`
	Assignments int     `json:"assignments"`
	Hours       float64 `json:"hours"`
}

// EmployeeByID returns one employee with availability windows loaded.
func (q *QueryService) EmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	return q.store.GetEmployee(ctx, id)
}

// ListEmployees returns all employees.
func (q *QueryService) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	return q.store.ListEmployees(ctx)
}

// ShiftByID returns one shift.
func (q *QueryService) ShiftByID(ctx context.Context, id string) (*models.Shift, error) {
	return q.store.GetShift(ctx, id)
}

// ListShifts returns all shifts ordered by start.
func (q *QueryService) ListShifts(ctx context.Context) ([]models.Shift, error) {
	return q.store.ListShifts(ctx)
}

// AssignmentsForEmployee returns the employee's assignments whose shifts
// overlap [from, to), sorted by the store's shift ordering.
func (q *QueryService) AssignmentsForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]AssignmentDetail, error) {
	if _, err := q.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	assignments, err := q.store.ListAssignmentsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	window := interval.Interval{Start: from, End: to}

	details := make([]AssignmentDetail, 0, len(assignments))
	for _, a := range assignments {
		shift, err := q.store.GetShift(ctx, a.ShiftID)
		if err != nil {
			return nil, err
		}
		held := interval.Interval{Start: shift.Start, End: shift.End}
		if held.Overlaps(window) {
			details = append(details, AssignmentDetail{Assignment: a, Shift: *shift})
		}
	}
	return details, nil
}

// OpenShifts returns shifts in [from, to) still needing staff, optionally
// filtered by role.
func (q *QueryService) OpenShifts(ctx context.Context, from, to time.Time, role string) ([]OpenShift, error) {
	shifts, err := q.store.ListShiftsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	open := make([]OpenShift, 0, len(shifts))
	for _, shift := range shifts {
		if role != "" && shift.Role != role {
			continue
		}
		count, err := q.store.CountAssignmentsForShift(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		if int(count) < shift.Headcount {
			open = append(open, OpenShift{
				Shift:    shift,
				Assigned: int(count),
				Open:     shift.Headcount - int(count),
			})
		}
	}
	return open, nil
}

// AssignmentsForDay returns every assignment whose shift overlaps the
// calendar day containing t, in the service's location.
func (q *QueryService) AssignmentsForDay(ctx context.Context, t time.Time) ([]AssignmentDetail, error) {
	dayStart := startOfDay(t, q.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	shifts, err := q.store.ListShiftsInRange(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	var details []AssignmentDetail
	for _, shift := range shifts {
		assignments, err := q.store.ListAssignmentsForShift(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range assignments {
			details = append(details, AssignmentDetail{Assignment: a, Shift: shift})
		}
	}
	return details, nil
}

// MonthlyOverview returns per-employee assignment counts and scheduled hours
// for the given month. Employees with nothing scheduled are included with
// zero counts so the roster stays visible.
func (q *QueryService) MonthlyOverview(ctx context.Context, year int, month time.Month) ([]EmployeeMonthlySummary, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, q.location)
	monthEnd := monthStart.AddDate(0, 1, 0)

	employees, err := q.store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := q.store.ListShiftsInRange(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[string]*EmployeeMonthlySummary, len(employees))
	summaries := make([]EmployeeMonthlySummary, len(employees))
	for i, emp := range employees {
		summaries[i] = EmployeeMonthlySummary{EmployeeID: emp.ID, Name: emp.Name}
		byEmployee[emp.ID] = &summaries[i]
	}

	for _, shift := range shifts {
		assignments, err := q.store.ListAssignmentsForShift(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		hours := shift.End.Sub(shift.Start).Hours()
		for _, a := range assignments {
			if s, ok := byEmployee[a.EmployeeID]; ok {
				s.Assignments++
				s.Hours += hours
			}
		}
	}
	return summaries, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
