package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arnavshah/shiftboard-go/pkg/models"
	"github.com/arnavshah/shiftboard-go/pkg/store"
)

// monday is 2026-03-02, used as the anchor for all shift fixtures.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	engine := NewEngine(st, zap.NewNop(), Config{
		EnforceAvailability: true,
		EnforceMaxHours:     true,
		Location:            time.UTC,
	})
	return engine, st
}

// mondayNineToFive is availability Mon 09:00-17:00.
var mondayNineToFive = []models.AvailabilityWindow{
	{Weekday: int(time.Monday), StartMinute: 9 * 60, EndMinute: 17 * 60},
}

func mustEmployee(t *testing.T, e *Engine, name string, maxHours float64, availability []models.AvailabilityWindow) *models.Employee {
	t.Helper()
	employee, err := e.CreateEmployee(context.Background(), name, maxHours, availability)
	if err != nil {
		t.Fatalf("CreateEmployee(%s): %v", name, err)
	}
	return employee
}

func mustShift(t *testing.T, e *Engine, startHour, endHour, headcount int) *models.Shift {
	t.Helper()
	shift, err := e.CreateShift(context.Background(),
		monday.Add(time.Duration(startHour)*time.Hour),
		monday.Add(time.Duration(endHour)*time.Hour),
		headcount, "")
	if err != nil {
		t.Fatalf("CreateShift(%d-%d): %v", startHour, endHour, err)
	}
	return shift
}

func TestCreateAssignmentBackToBack(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)
	s2 := mustShift(t, engine, 13, 17, 1)

	if _, err := engine.CreateAssignment(ctx, alice.ID, s1.ID); err != nil {
		t.Fatalf("Expected assignment to s1 to succeed, got %v", err)
	}
	// s2 starts exactly when s1 ends; that must not count as a conflict.
	if _, err := engine.CreateAssignment(ctx, alice.ID, s2.ID); err != nil {
		t.Fatalf("Expected back-to-back assignment to s2 to succeed, got %v", err)
	}
}

func TestCreateAssignmentShiftFull(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	bob := mustEmployee(t, engine, "bob", 0, mondayNineToFive)
	s3 := mustShift(t, engine, 9, 12, 1)

	if _, err := engine.CreateAssignment(ctx, bob.ID, s3.ID); err != nil {
		t.Fatalf("Expected bob's assignment to succeed, got %v", err)
	}
	if _, err := engine.CreateAssignment(ctx, alice.ID, s3.ID); !errors.Is(err, ErrShiftFull) {
		t.Errorf("Expected ErrShiftFull, got %v", err)
	}
}

func TestCreateAssignmentDoubleBooking(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)
	s4 := mustShift(t, engine, 10, 11, 1)

	held, err := engine.CreateAssignment(ctx, alice.ID, s1.ID)
	if err != nil {
		t.Fatalf("Expected assignment to s1 to succeed, got %v", err)
	}

	_, err = engine.CreateAssignment(ctx, alice.ID, s4.ID)
	var doubleBooking *DoubleBookingError
	if !errors.As(err, &doubleBooking) {
		t.Fatalf("Expected DoubleBookingError, got %v", err)
	}
	if len(doubleBooking.Conflicts) != 1 || doubleBooking.Conflicts[0].AssignmentID != held.ID {
		t.Errorf("Expected conflict listing assignment %s, got %+v", held.ID, doubleBooking.Conflicts)
	}
}

func TestCreateAssignmentOutsideAvailability(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)

	// Tuesday shift; alice only declared Monday.
	tuesday, err := engine.CreateShift(ctx, monday.AddDate(0, 0, 1).Add(9*time.Hour),
		monday.AddDate(0, 0, 1).Add(13*time.Hour), 1, "")
	if err != nil {
		t.Fatalf("CreateShift: %v", err)
	}
	if _, err := engine.CreateAssignment(ctx, alice.ID, tuesday.ID); !errors.Is(err, ErrOutsideAvailability) {
		t.Errorf("Expected ErrOutsideAvailability for other weekday, got %v", err)
	}

	// Monday but starting before the window opens.
	early := mustShift(t, engine, 8, 12, 1)
	if _, err := engine.CreateAssignment(ctx, alice.ID, early.ID); !errors.Is(err, ErrOutsideAvailability) {
		t.Errorf("Expected ErrOutsideAvailability for too-early shift, got %v", err)
	}

	// An employee with no declared windows is unrestricted.
	carol := mustEmployee(t, engine, "carol", 0, nil)
	if _, err := engine.CreateAssignment(ctx, carol.ID, early.ID); err != nil {
		t.Errorf("Expected unrestricted employee to be assignable, got %v", err)
	}
}

func TestCreateAssignmentNotFound(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, nil)
	s1 := mustShift(t, engine, 9, 13, 1)

	if _, err := engine.CreateAssignment(ctx, "missing", s1.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing employee, got %v", err)
	}
	if _, err := engine.CreateAssignment(ctx, alice.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing shift, got %v", err)
	}
}

func TestCreateAssignmentRejectionLeavesStoreUnchanged(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)
	s4 := mustShift(t, engine, 10, 11, 1)

	if _, err := engine.CreateAssignment(ctx, alice.ID, s1.ID); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	before, err := st.ListAssignmentsForEmployee(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListAssignmentsForEmployee: %v", err)
	}

	if _, err := engine.CreateAssignment(ctx, alice.ID, s4.ID); err == nil {
		t.Fatal("Expected conflicting assignment to be rejected")
	}

	after, err := st.ListAssignmentsForEmployee(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListAssignmentsForEmployee: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("Expected assignment set unchanged after rejection: before=%d after=%d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("Assignment %d changed after rejected call", i)
		}
	}
}

func TestCreateAssignmentMaxWeeklyHours(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 6, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)  // 4h
	s2 := mustShift(t, engine, 13, 17, 1) // 4h, same week

	if _, err := engine.CreateAssignment(ctx, alice.ID, s1.ID); err != nil {
		t.Fatalf("Expected first 4h shift to fit under the 6h cap, got %v", err)
	}
	if _, err := engine.CreateAssignment(ctx, alice.ID, s2.ID); !errors.Is(err, ErrMaxHoursExceeded) {
		t.Errorf("Expected ErrMaxHoursExceeded, got %v", err)
	}

	// Next Monday is a fresh week.
	nextWeek, err := engine.CreateShift(ctx, monday.AddDate(0, 0, 7).Add(9*time.Hour),
		monday.AddDate(0, 0, 7).Add(13*time.Hour), 1, "")
	if err != nil {
		t.Fatalf("CreateShift: %v", err)
	}
	if _, err := engine.CreateAssignment(ctx, alice.ID, nextWeek.ID); err != nil {
		t.Errorf("Expected next week's shift to fit, got %v", err)
	}
}

func TestDeleteAssignment(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)

	assignment, err := engine.CreateAssignment(ctx, alice.ID, s1.ID)
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	if err := engine.DeleteAssignment(ctx, assignment.ID); err != nil {
		t.Fatalf("DeleteAssignment: %v", err)
	}
	if err := engine.DeleteAssignment(ctx, assignment.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReassign(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	bob := mustEmployee(t, engine, "bob", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)

	assignment, err := engine.CreateAssignment(ctx, alice.ID, s1.ID)
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	moved, err := engine.Reassign(ctx, assignment.ID, bob.ID, "")
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if moved.EmployeeID != bob.ID || moved.ShiftID != s1.ID {
		t.Errorf("Expected assignment moved to bob on s1, got %+v", moved)
	}
	if err := engine.DeleteAssignment(ctx, assignment.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected original assignment id to be gone after reassign, got %v", err)
	}
}

func TestReassignRejectedLeavesOriginal(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	bob := mustEmployee(t, engine, "bob", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)
	s4 := mustShift(t, engine, 10, 11, 1)

	// bob already busy 10-11, so moving his s4 slot... set up: alice on s1,
	// bob on s4; moving bob's assignment to s1 must fail (s1 full) and leave
	// bob's original untouched.
	if _, err := engine.CreateAssignment(ctx, alice.ID, s1.ID); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	bobAssignment, err := engine.CreateAssignment(ctx, bob.ID, s4.ID)
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	if _, err := engine.Reassign(ctx, bobAssignment.ID, "", s1.ID); !errors.Is(err, ErrShiftFull) {
		t.Fatalf("Expected ErrShiftFull, got %v", err)
	}

	current, err := st.GetAssignment(ctx, bobAssignment.ID)
	if err != nil {
		t.Fatalf("Expected original assignment to survive, got %v", err)
	}
	if current.ShiftID != s4.ID || current.EmployeeID != bob.ID {
		t.Errorf("Original assignment mutated: %+v", current)
	}
}

func TestEditShiftWindowWouldInvalidate(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)
	s2 := mustShift(t, engine, 13, 17, 1)

	s1Assignment, err := engine.CreateAssignment(ctx, alice.ID, s1.ID)
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	if _, err := engine.CreateAssignment(ctx, alice.ID, s2.ID); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	// Stretching s1 to 14:00 would overlap alice's s2 assignment, so her s1
	// assignment becomes invalid under the new window.
	_, err = engine.EditShiftWindow(ctx, s1.ID, monday.Add(9*time.Hour), monday.Add(14*time.Hour))
	var editErr *ShiftEditError
	if !errors.As(err, &editErr) {
		t.Fatalf("Expected ShiftEditError, got %v", err)
	}
	if len(editErr.Invalid) != 1 || editErr.Invalid[0].AssignmentID != s1Assignment.ID {
		t.Errorf("Expected the s1 assignment %s flagged, got %+v", s1Assignment.ID, editErr.Invalid)
	}

	// Store state for s1 must be unchanged.
	unchanged, err := st.GetShift(ctx, s1.ID)
	if err != nil {
		t.Fatalf("GetShift: %v", err)
	}
	if !unchanged.End.Equal(monday.Add(13 * time.Hour)) {
		t.Errorf("Expected s1 end unchanged at 13:00, got %v", unchanged.End)
	}
}

func TestEditShiftWindowSuccess(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)
	if _, err := engine.CreateAssignment(ctx, alice.ID, s1.ID); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	// Shrinking within availability keeps the assignment valid.
	edited, err := engine.EditShiftWindow(ctx, s1.ID, monday.Add(10*time.Hour), monday.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("EditShiftWindow: %v", err)
	}
	if !edited.Start.Equal(monday.Add(10*time.Hour)) || !edited.End.Equal(monday.Add(12*time.Hour)) {
		t.Errorf("Expected window 10:00-12:00, got %v-%v", edited.Start, edited.End)
	}
}

func TestEditShiftWindowAvailabilityRecheck(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)
	if _, err := engine.CreateAssignment(ctx, alice.ID, s1.ID); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	// Moving the shift to start 08:00 leaves alice's 09:00 window.
	_, err := engine.EditShiftWindow(ctx, s1.ID, monday.Add(8*time.Hour), monday.Add(12*time.Hour))
	var editErr *ShiftEditError
	if !errors.As(err, &editErr) {
		t.Fatalf("Expected ShiftEditError for availability break, got %v", err)
	}
}

func TestDeleteEmployeeCascadePolicy(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, mondayNineToFive)
	s1 := mustShift(t, engine, 9, 13, 1)
	if _, err := engine.CreateAssignment(ctx, alice.ID, s1.ID); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	err := engine.DeleteEmployee(ctx, alice.ID, false)
	var refErr *ReferentialIntegrityError
	if !errors.As(err, &refErr) {
		t.Fatalf("Expected ReferentialIntegrityError without cascade, got %v", err)
	}
	if refErr.ActiveAssignments != 1 {
		t.Errorf("Expected 1 active assignment reported, got %d", refErr.ActiveAssignments)
	}

	if err := engine.DeleteEmployee(ctx, alice.ID, true); err != nil {
		t.Fatalf("Expected cascade delete to succeed, got %v", err)
	}
	remaining, err := st.ListAssignmentsForShift(ctx, s1.ID)
	if err != nil {
		t.Fatalf("ListAssignmentsForShift: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected cascade to remove assignments, %d left", len(remaining))
	}
}

func TestCreateShiftValidation(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.CreateShift(ctx, monday.Add(13*time.Hour), monday.Add(9*time.Hour), 1, ""); err == nil {
		t.Error("Expected reversed window to be rejected")
	}
	if _, err := engine.CreateShift(ctx, monday.Add(9*time.Hour), monday.Add(13*time.Hour), 0, ""); !errors.Is(err, ErrInvalidHeadcount) {
		t.Errorf("Expected ErrInvalidHeadcount, got %v", err)
	}
}

func TestUpdateEmployeeRejectsBadWindows(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, nil)

	bad := []models.AvailabilityWindow{{Weekday: 9, StartMinute: 0, EndMinute: 60}}
	if _, err := engine.UpdateEmployee(ctx, alice.ID, "alice", 0, bad); err == nil {
		t.Error("Expected out-of-range weekday to be rejected")
	}
	reversed := []models.AvailabilityWindow{{Weekday: 1, StartMinute: 600, EndMinute: 540}}
	if _, err := engine.UpdateEmployee(ctx, alice.ID, "alice", 0, reversed); err == nil {
		t.Error("Expected reversed window to be rejected")
	}
}

// flakyStore fails the next CreateAssignment to exercise rollback paths.
type flakyStore struct {
	*store.MemoryStore
	failNext bool
}

func (s *flakyStore) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	if s.failNext {
		s.failNext = false
		return errors.New("store unavailable")
	}
	return s.MemoryStore.CreateAssignment(ctx, a)
}

func TestReassignRollbackKeepsOriginal(t *testing.T) {
	st := &flakyStore{MemoryStore: store.NewMemoryStore()}
	engine := NewEngine(st, zap.NewNop(), Config{Location: time.UTC})
	ctx := context.Background()

	alice := mustEmployee(t, engine, "alice", 0, nil)
	bob := mustEmployee(t, engine, "bob", 0, nil)
	shift := mustShift(t, engine, 9, 13, 1)

	assignment, err := engine.CreateAssignment(ctx, alice.ID, shift.ID)
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	before, err := st.GetAssignment(ctx, assignment.ID)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}

	st.failNext = true
	if _, err := engine.Reassign(ctx, assignment.ID, bob.ID, ""); err == nil {
		t.Fatal("Expected the reassign to fail on the store fault")
	}

	restored, err := st.GetAssignment(ctx, assignment.ID)
	if err != nil {
		t.Fatalf("original assignment not restored: %v", err)
	}
	if restored.EmployeeID != alice.ID {
		t.Errorf("restored employee = %s, want %s", restored.EmployeeID, alice.ID)
	}
	if !restored.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("restore changed CreatedAt: %v != %v", restored.CreatedAt, before.CreatedAt)
	}
}
