package store

import (
	"context"
	"errors"
	"time"

	"github.com/arnavshah/shiftboard-go/pkg/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary for the scheduling core. All mutation in
// the engine is funneled through this interface so it can be backed by gorm
// in production and by an in-memory map in tests.
type Store interface {
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	UpdateEmployee(ctx context.Context, employee *models.Employee) error
	DeleteEmployee(ctx context.Context, id string) error

	GetShift(ctx context.Context, id string) (*models.Shift, error)
	ListShifts(ctx context.Context) ([]models.Shift, error)
	ListShiftsInRange(ctx context.Context, from, to time.Time) ([]models.Shift, error)
	CreateShift(ctx context.Context, shift *models.Shift) error
	UpdateShift(ctx context.Context, shift *models.Shift) error
	DeleteShift(ctx context.Context, id string) error

	GetAssignment(ctx context.Context, id string) (*models.Assignment, error)
	ListAssignmentsForEmployee(ctx context.Context, employeeID string) ([]models.Assignment, error)
	ListAssignmentsForShift(ctx context.Context, shiftID string) ([]models.Assignment, error)
	CountAssignmentsForShift(ctx context.Context, shiftID string) (int64, error)
	CreateAssignment(ctx context.Context, assignment *models.Assignment) error
	DeleteAssignment(ctx context.Context, id string) error
	DeleteAssignmentsForEmployee(ctx context.Context, employeeID string) error
	DeleteAssignmentsForShift(ctx context.Context, shiftID string) error
}
