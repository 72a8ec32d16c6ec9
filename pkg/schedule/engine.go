package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnavshah/shiftboard-go/pkg/interval"
	"github.com/arnavshah/shiftboard-go/pkg/models"
	"github.com/arnavshah/shiftboard-go/pkg/store"
)

// Config controls which policies the engine enforces.
type Config struct {
	// EnforceAvailability rejects assignments outside the employee's declared
	// weekly windows. Organizations that don't collect availability turn this off.
	EnforceAvailability bool
	// EnforceMaxHours rejects assignments that push an employee past their
	// weekly hours cap (employees with a zero cap are never limited).
	EnforceMaxHours bool
	// Location resolves a shift's instant to a weekday and clock time for
	// availability checks. Defaults to time.Local.
	Location *time.Location
}

// Engine orchestrates all schedule mutation. Every create/update/delete of an
// assignment goes through here so the no-double-booking, capacity and
// availability invariants are enforced in one place.
type Engine struct {
	store    store.Store
	detector *Detector
	logger   *zap.Logger
	cfg      Config
	locks    *keyedMutex
}

// NewEngine creates an Engine over the given store.
func NewEngine(st store.Store, logger *zap.Logger, cfg Config) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    st,
		detector: NewDetector(st),
		logger:   logger,
		cfg:      cfg,
		locks:    newKeyedMutex(),
	}
}

// Detector exposes the engine's conflict detector for read-side validation
// (e.g. a dry-run check before submitting an assignment).
func (e *Engine) Detector() *Detector {
	return e.detector
}

// CreateEmployee validates availability windows and persists a new employee.
func (e *Engine) CreateEmployee(ctx context.Context, name string, maxWeeklyHours float64, availability []models.AvailabilityWindow) (*models.Employee, error) {
	if err := validateWindows(availability); err != nil {
		return nil, err
	}
	employee := &models.Employee{
		ID:             uuid.NewString(),
		Name:           name,
		MaxWeeklyHours: maxWeeklyHours,
		Availability:   availability,
	}
	if err := e.store.CreateEmployee(ctx, employee); err != nil {
		e.logger.Error("create employee failed", zap.Error(err))
		return nil, err
	}
	e.logger.Info("employee created", zap.String("employee_id", employee.ID))
	return employee, nil
}

// UpdateEmployee replaces an employee's name, cap and availability windows.
func (e *Engine) UpdateEmployee(ctx context.Context, id, name string, maxWeeklyHours float64, availability []models.AvailabilityWindow) (*models.Employee, error) {
	if err := validateWindows(availability); err != nil {
		return nil, err
	}
	unlock := e.locks.lockAll(employeeKey(id))
	defer unlock()

	employee, err := e.store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	employee.Name = name
	employee.MaxWeeklyHours = maxWeeklyHours
	employee.Availability = availability
	for i := range employee.Availability {
		employee.Availability[i].EmployeeID = id
	}
	if err := e.store.UpdateEmployee(ctx, employee); err != nil {
		e.logger.Error("update employee failed", zap.String("employee_id", id), zap.Error(err))
		return nil, err
	}
	return employee, nil
}

// DeleteEmployee removes an employee. Deleting one with active assignments
// requires cascadeAssignments; otherwise the call fails so data loss is
// always an explicit caller choice.
func (e *Engine) DeleteEmployee(ctx context.Context, id string, cascadeAssignments bool) error {
	unlock := e.locks.lockAll(employeeKey(id))
	defer unlock()

	if _, err := e.store.GetEmployee(ctx, id); err != nil {
		return err
	}
	assignments, err := e.store.ListAssignmentsForEmployee(ctx, id)
	if err != nil {
		return err
	}
	if len(assignments) > 0 {
		if !cascadeAssignments {
			return &ReferentialIntegrityError{Kind: "employee", ID: id, ActiveAssignments: len(assignments)}
		}
		if err := e.store.DeleteAssignmentsForEmployee(ctx, id); err != nil {
			e.logger.Error("cascade delete assignments failed", zap.String("employee_id", id), zap.Error(err))
			return err
		}
	}
	if err := e.store.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	e.logger.Info("employee deleted", zap.String("employee_id", id), zap.Int("cascaded_assignments", len(assignments)))
	return nil
}

// CreateShift validates the time window and headcount and persists a new shift.
func (e *Engine) CreateShift(ctx context.Context, start, end time.Time, headcount int, role string) (*models.Shift, error) {
	if _, err := interval.New(start, end); err != nil {
		return nil, err
	}
	if headcount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHeadcount, headcount)
	}
	shift := &models.Shift{
		ID:        uuid.NewString(),
		Start:     start,
		End:       end,
		Headcount: headcount,
		Role:      role,
	}
	if err := e.store.CreateShift(ctx, shift); err != nil {
		e.logger.Error("create shift failed", zap.Error(err))
		return nil, err
	}
	e.logger.Info("shift created", zap.String("shift_id", shift.ID), zap.Time("start", start), zap.Time("end", end))
	return shift, nil
}

// DeleteShift removes a shift, with the same explicit cascade policy as
// DeleteEmployee.
func (e *Engine) DeleteShift(ctx context.Context, id string, cascadeAssignments bool) error {
	unlock := e.locks.lockAll(shiftKey(id))
	defer unlock()

	if _, err := e.store.GetShift(ctx, id); err != nil {
		return err
	}
	assignments, err := e.store.ListAssignmentsForShift(ctx, id)
	if err != nil {
		return err
	}
	if len(assignments) > 0 {
		if !cascadeAssignments {
			return &ReferentialIntegrityError{Kind: "shift", ID: id, ActiveAssignments: len(assignments)}
		}
		if err := e.store.DeleteAssignmentsForShift(ctx, id); err != nil {
			e.logger.Error("cascade delete assignments failed", zap.String("shift_id", id), zap.Error(err))
			return err
		}
	}
	return e.store.DeleteShift(ctx, id)
}

// EditShiftWindow changes a shift's time window. Every existing assignment on
// the shift is re-checked against the new window; if any would become invalid
// the whole edit is rejected and nothing is written. Validation and commit
// hold the shift lock and every assignee's employee lock, so a concurrent
// CreateAssignment for an assignee cannot validate against the old window
// while the edit is in flight.
func (e *Engine) EditShiftWindow(ctx context.Context, shiftID string, start, end time.Time) (*models.Shift, error) {
	newWindow, err := interval.New(start, end)
	if err != nil {
		return nil, err
	}
	for {
		shift, retry, err := e.editShiftWindowLocked(ctx, shiftID, newWindow)
		if err != nil || !retry {
			return shift, err
		}
	}
}

func (e *Engine) editShiftWindowLocked(ctx context.Context, shiftID string, newWindow interval.Interval) (*models.Shift, bool, error) {
	// The assignee set has to be read before locking so the employee keys can
	// go into the same sorted lockAll batch as the shift key.
	assignments, err := e.store.ListAssignmentsForShift(ctx, shiftID)
	if err != nil {
		return nil, false, err
	}
	keys := make([]string, 0, len(assignments)+1)
	keys = append(keys, shiftKey(shiftID))
	lockedEmployees := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		keys = append(keys, employeeKey(a.EmployeeID))
		lockedEmployees[a.EmployeeID] = true
	}
	unlock := e.locks.lockAll(keys...)
	defer unlock()

	shift, err := e.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, false, err
	}
	// Re-read under the locks. An assignment for an unlocked employee may
	// have slipped in before we held the shift key; if so, retry with the new
	// set. Once the shift key is held the set is stable, since every
	// CreateAssignment on this shift takes the same key.
	assignments, err = e.store.ListAssignmentsForShift(ctx, shiftID)
	if err != nil {
		return nil, false, err
	}
	for _, a := range assignments {
		if !lockedEmployees[a.EmployeeID] {
			return nil, true, nil
		}
	}

	var invalid []InvalidAssignment
	for _, a := range assignments {
		conflicts, err := e.detector.FindConflicts(ctx, a.EmployeeID, newWindow, a.ID)
		if err != nil {
			return nil, false, err
		}
		if len(conflicts) > 0 {
			invalid = append(invalid, InvalidAssignment{
				AssignmentID: a.ID,
				EmployeeID:   a.EmployeeID,
				Reason:       (&DoubleBookingError{EmployeeID: a.EmployeeID, Conflicts: conflicts}).Error(),
			})
			continue
		}
		if e.cfg.EnforceAvailability {
			employee, err := e.store.GetEmployee(ctx, a.EmployeeID)
			if err != nil {
				return nil, false, err
			}
			if !e.withinAvailability(employee, newWindow) {
				invalid = append(invalid, InvalidAssignment{
					AssignmentID: a.ID,
					EmployeeID:   a.EmployeeID,
					Reason:       ErrOutsideAvailability.Error(),
				})
			}
		}
	}
	if len(invalid) > 0 {
		return nil, false, &ShiftEditError{ShiftID: shiftID, Invalid: invalid}
	}

	shift.Start = newWindow.Start
	shift.End = newWindow.End
	if err := e.store.UpdateShift(ctx, shift); err != nil {
		e.logger.Error("update shift failed", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, false, err
	}
	e.logger.Info("shift window edited", zap.String("shift_id", shiftID),
		zap.Time("start", newWindow.Start), zap.Time("end", newWindow.End),
		zap.Int("revalidated_assignments", len(assignments)))
	return shift, false, nil
}

// CreateAssignment assigns an employee to a shift after running the full
// validation sequence: existence, double-booking, capacity, availability and
// weekly hours cap. Validation and commit happen under per-employee and
// per-shift locks so concurrent calls cannot both pass the same check.
func (e *Engine) CreateAssignment(ctx context.Context, employeeID, shiftID string) (*models.Assignment, error) {
	unlock := e.locks.lockAll(employeeKey(employeeID), shiftKey(shiftID))
	defer unlock()

	employee, err := e.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	shift, err := e.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	window := interval.Interval{Start: shift.Start, End: shift.End}

	if err := e.validate(ctx, employee, shift, window, ""); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		ShiftID:    shiftID,
	}
	if err := e.store.CreateAssignment(ctx, assignment); err != nil {
		e.logger.Error("create assignment failed",
			zap.String("employee_id", employeeID), zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}
	e.logger.Info("assignment created", zap.String("assignment_id", assignment.ID),
		zap.String("employee_id", employeeID), zap.String("shift_id", shiftID))
	return assignment, nil
}

// DeleteAssignment removes an assignment. Absence is an error, not a no-op.
func (e *Engine) DeleteAssignment(ctx context.Context, id string) error {
	assignment, err := e.store.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	unlock := e.locks.lockAll(employeeKey(assignment.EmployeeID), shiftKey(assignment.ShiftID))
	defer unlock()

	if err := e.store.DeleteAssignment(ctx, id); err != nil {
		return err
	}
	e.logger.Info("assignment deleted", zap.String("assignment_id", id))
	return nil
}

// Reassign moves an assignment to a new employee and/or shift. Empty ids keep
// the current value. All validation runs against the new target before any
// write, so a rejected reassignment leaves the original untouched.
func (e *Engine) Reassign(ctx context.Context, assignmentID, newEmployeeID, newShiftID string) (*models.Assignment, error) {
	current, err := e.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	targetEmployeeID := current.EmployeeID
	if newEmployeeID != "" {
		targetEmployeeID = newEmployeeID
	}
	targetShiftID := current.ShiftID
	if newShiftID != "" {
		targetShiftID = newShiftID
	}
	if targetEmployeeID == current.EmployeeID && targetShiftID == current.ShiftID {
		return current, nil
	}

	unlock := e.locks.lockAll(
		employeeKey(current.EmployeeID), employeeKey(targetEmployeeID),
		shiftKey(current.ShiftID), shiftKey(targetShiftID),
	)
	defer unlock()

	employee, err := e.store.GetEmployee(ctx, targetEmployeeID)
	if err != nil {
		return nil, err
	}
	shift, err := e.store.GetShift(ctx, targetShiftID)
	if err != nil {
		return nil, err
	}
	window := interval.Interval{Start: shift.Start, End: shift.End}

	// The assignment being moved is excluded from its own conflict and
	// capacity checks so in-place edits don't collide with themselves.
	if err := e.validate(ctx, employee, shift, window, assignmentID); err != nil {
		return nil, err
	}

	if err := e.store.DeleteAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	replacement := &models.Assignment{
		ID:         uuid.NewString(),
		EmployeeID: targetEmployeeID,
		ShiftID:    targetShiftID,
	}
	if err := e.store.CreateAssignment(ctx, replacement); err != nil {
		// Validation already passed; a failure here is a store fault. Put the
		// original back so readers never see a half-applied reassignment.
		if restoreErr := e.store.CreateAssignment(ctx, current); restoreErr != nil {
			e.logger.Error("reassign rollback failed",
				zap.String("assignment_id", assignmentID), zap.Error(restoreErr))
		}
		return nil, err
	}
	e.logger.Info("assignment reassigned", zap.String("old_assignment_id", assignmentID),
		zap.String("assignment_id", replacement.ID),
		zap.String("employee_id", targetEmployeeID), zap.String("shift_id", targetShiftID))
	return replacement, nil
}

// validate runs the full pre-write rule sequence for placing employee on
// shift. excludeAssignmentID ignores the assignment being moved, if any.
func (e *Engine) validate(ctx context.Context, employee *models.Employee, shift *models.Shift, window interval.Interval, excludeAssignmentID string) error {
	conflicts, err := e.detector.FindConflicts(ctx, employee.ID, window, excludeAssignmentID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &DoubleBookingError{EmployeeID: employee.ID, Conflicts: conflicts}
	}

	taken, err := e.shiftOccupancy(ctx, shift.ID, excludeAssignmentID)
	if err != nil {
		return err
	}
	if taken >= shift.Headcount {
		return fmt.Errorf("%w: shift %s has %d of %d slot(s) filled",
			ErrShiftFull, shift.ID, taken, shift.Headcount)
	}

	if e.cfg.EnforceAvailability && !e.withinAvailability(employee, window) {
		return fmt.Errorf("%w: employee %s, shift %s", ErrOutsideAvailability, employee.ID, shift.ID)
	}

	if e.cfg.EnforceMaxHours && employee.MaxWeeklyHours > 0 {
		scheduled, err := e.weeklyHours(ctx, employee.ID, window.Start, excludeAssignmentID)
		if err != nil {
			return err
		}
		if scheduled+window.Hours() > employee.MaxWeeklyHours {
			return fmt.Errorf("%w: %.1fh scheduled, shift adds %.1fh, cap is %.1fh",
				ErrMaxHoursExceeded, scheduled, window.Hours(), employee.MaxWeeklyHours)
		}
	}
	return nil
}

// shiftOccupancy counts assignments on a shift, ignoring the one being moved.
func (e *Engine) shiftOccupancy(ctx context.Context, shiftID, excludeAssignmentID string) (int, error) {
	assignments, err := e.store.ListAssignmentsForShift(ctx, shiftID)
	if err != nil {
		return 0, err
	}
	taken := 0
	for _, a := range assignments {
		if a.ID == excludeAssignmentID {
			continue
		}
		taken++
	}
	return taken, nil
}

// withinAvailability reports whether the window fits entirely inside one of
// the employee's declared windows for that weekday. An employee with no
// declared windows at all is treated as unrestricted.
func (e *Engine) withinAvailability(employee *models.Employee, window interval.Interval) bool {
	if len(employee.Availability) == 0 {
		return true
	}
	weekday := int(window.Weekday(e.cfg.Location))
	startMin, endMin := window.ClockRange(e.cfg.Location)
	if endMin <= startMin {
		// Spans midnight; no single-day window can contain it.
		return false
	}
	for _, w := range employee.Availability {
		if w.Weekday == weekday && startMin >= w.StartMinute && endMin <= w.EndMinute {
			return true
		}
	}
	return false
}

// weeklyHours sums the hours of the employee's shifts in the week containing
// ref (weeks start Monday in the engine's location).
func (e *Engine) weeklyHours(ctx context.Context, employeeID string, ref time.Time, excludeAssignmentID string) (float64, error) {
	weekStart := startOfWeek(ref, e.cfg.Location)
	weekEnd := weekStart.AddDate(0, 0, 7)

	assignments, err := e.store.ListAssignmentsForEmployee(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, a := range assignments {
		if a.ID == excludeAssignmentID {
			continue
		}
		shift, err := e.store.GetShift(ctx, a.ShiftID)
		if err != nil {
			return 0, err
		}
		s := shift.Start.In(e.cfg.Location)
		if !s.Before(weekStart) && s.Before(weekEnd) {
			total += shift.End.Sub(shift.Start).Hours()
		}
	}
	return total, nil
}

func startOfWeek(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, -offset)
}

func validateWindows(windows []models.AvailabilityWindow) error {
	for _, w := range windows {
		if w.Weekday < 0 || w.Weekday > 6 {
			return fmt.Errorf("%w: weekday %d out of range", interval.ErrInvalidInterval, w.Weekday)
		}
		if w.StartMinute < 0 || w.EndMinute > 24*60 || w.EndMinute <= w.StartMinute {
			return fmt.Errorf("%w: window %d-%d", interval.ErrInvalidInterval, w.StartMinute, w.EndMinute)
		}
	}
	return nil
}
