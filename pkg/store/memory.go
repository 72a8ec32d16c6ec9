package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/arnavshah/shiftboard-go/pkg/models"
)

// MemoryStore is a map-backed Store used in tests and for running the server
// without a database. All methods are safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	employees   map[string]models.Employee
	shifts      map[string]models.Shift
	assignments map[string]models.Assignment
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees:   make(map[string]models.Employee),
		shifts:      make(map[string]models.Shift),
		assignments: make(map[string]models.Assignment),
	}
}

func (s *MemoryStore) GetEmployee(_ context.Context, id string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, fmt.Errorf("get employee: %w", ErrNotFound)
	}
	return &e, nil
}

func (s *MemoryStore) ListEmployees(_ context.Context) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	employees := make([]models.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].Name < employees[j].Name })
	return employees, nil
}

func (s *MemoryStore) CreateEmployee(_ context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	s.employees[employee.ID] = *employee
	return nil
}

func (s *MemoryStore) UpdateEmployee(_ context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[employee.ID]; !ok {
		return fmt.Errorf("update employee: %w", ErrNotFound)
	}
	employee.UpdatedAt = time.Now()
	s.employees[employee.ID] = *employee
	return nil
}

func (s *MemoryStore) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return fmt.Errorf("delete employee: %w", ErrNotFound)
	}
	delete(s.employees, id)
	return nil
}

func (s *MemoryStore) GetShift(_ context.Context, id string) (*models.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shifts[id]
	if !ok {
		return nil, fmt.Errorf("get shift: %w", ErrNotFound)
	}
	return &sh, nil
}

func (s *MemoryStore) ListShifts(_ context.Context) ([]models.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shifts := make([]models.Shift, 0, len(s.shifts))
	for _, sh := range s.shifts {
		shifts = append(shifts, sh)
	}
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].Start.Before(shifts[j].Start) })
	return shifts, nil
}

func (s *MemoryStore) ListShiftsInRange(_ context.Context, from, to time.Time) ([]models.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var shifts []models.Shift
	for _, sh := range s.shifts {
		if sh.Start.Before(to) && sh.End.After(from) {
			shifts = append(shifts, sh)
		}
	}
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].Start.Before(shifts[j].Start) })
	return shifts, nil
}

func (s *MemoryStore) CreateShift(_ context.Context, shift *models.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	shift.CreatedAt = now
	shift.UpdatedAt = now
	s.shifts[shift.ID] = *shift
	return nil
}

func (s *MemoryStore) UpdateShift(_ context.Context, shift *models.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[shift.ID]; !ok {
		return fmt.Errorf("update shift: %w", ErrNotFound)
	}
	shift.UpdatedAt = time.Now()
	s.shifts[shift.ID] = *shift
	return nil
}

func (s *MemoryStore) DeleteShift(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[id]; !ok {
		return fmt.Errorf("delete shift: %w", ErrNotFound)
	}
	delete(s.shifts, id)
	return nil
}

func (s *MemoryStore) GetAssignment(_ context.Context, id string) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, fmt.Errorf("get assignment: %w", ErrNotFound)
	}
	return &a, nil
}

func (s *MemoryStore) ListAssignmentsForEmployee(_ context.Context, employeeID string) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var assignments []models.Assignment
	for _, a := range s.assignments {
		if a.EmployeeID == employeeID {
			assignments = append(assignments, a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (s *MemoryStore) ListAssignmentsForShift(_ context.Context, shiftID string) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var assignments []models.Assignment
	for _, a := range s.assignments {
		if a.ShiftID == shiftID {
			assignments = append(assignments, a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (s *MemoryStore) CountAssignmentsForShift(_ context.Context, shiftID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, a := range s.assignments {
		if a.ShiftID == shiftID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CreateAssignment(_ context.Context, assignment *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A non-zero CreatedAt is kept as-is, matching gorm, so a restored row
	// keeps its original timestamp.
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now()
	}
	s.assignments[assignment.ID] = *assignment
	return nil
}

func (s *MemoryStore) DeleteAssignment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[id]; !ok {
		return fmt.Errorf("delete assignment: %w", ErrNotFound)
	}
	delete(s.assignments, id)
	return nil
}

func (s *MemoryStore) DeleteAssignmentsForEmployee(_ context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.assignments {
		if a.EmployeeID == employeeID {
			delete(s.assignments, id)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteAssignmentsForShift(_ context.Context, shiftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.assignments {
		if a.ShiftID == shiftID {
			delete(s.assignments, id)
		}
	}
	return nil
}
