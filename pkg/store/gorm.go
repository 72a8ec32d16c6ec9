package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/arnavshah/shiftboard-go/pkg/models"
)

// GormStore implements Store on top of a gorm connection (sqlite or postgres).
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore wraps an already-open gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func wrapErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *GormStore) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	var employee models.Employee
	err := s.db.WithContext(ctx).Preload("Availability").First(&employee, "id = ?", id).Error
	if err != nil {
		return nil, wrapErr("get employee", err)
	}
	return &employee, nil
}

func (s *GormStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	err := s.db.WithContext(ctx).Preload("Availability").Order("name").Find(&employees).Error
	if err != nil {
		return nil, wrapErr("list employees", err)
	}
	return employees, nil
}

func (s *GormStore) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	if err := s.db.WithContext(ctx).Create(employee).Error; err != nil {
		return wrapErr("create employee", err)
	}
	return nil
}

func (s *GormStore) UpdateEmployee(ctx context.Context, employee *models.Employee) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Availability windows are replaced wholesale on update.
		if err := tx.Where("employee_id = ?", employee.ID).
			Delete(&models.AvailabilityWindow{}).Error; err != nil {
			return err
		}
		return tx.Save(employee).Error
	})
	if err != nil {
		return wrapErr("update employee", err)
	}
	return nil
}

func (s *GormStore) DeleteEmployee(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Select("Availability").Delete(&models.Employee{ID: id})
	if res.Error != nil {
		return wrapErr("delete employee", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete employee: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) GetShift(ctx context.Context, id string) (*models.Shift, error) {
	var shift models.Shift
	if err := s.db.WithContext(ctx).First(&shift, "id = ?", id).Error; err != nil {
		return nil, wrapErr("get shift", err)
	}
	return &shift, nil
}

func (s *GormStore) ListShifts(ctx context.Context) ([]models.Shift, error) {
	var shifts []models.Shift
	if err := s.db.WithContext(ctx).Order("start").Find(&shifts).Error; err != nil {
		return nil, wrapErr("list shifts", err)
	}
	return shifts, nil
}

func (s *GormStore) ListShiftsInRange(ctx context.Context, from, to time.Time) ([]models.Shift, error) {
	var shifts []models.Shift
	err := s.db.WithContext(ctx).
		Where("start < ? AND \"end\" > ?", to, from).
		Order("start").
		Find(&shifts).Error
	if err != nil {
		return nil, wrapErr("list shifts in range", err)
	}
	return shifts, nil
}

func (s *GormStore) CreateShift(ctx context.Context, shift *models.Shift) error {
	if err := s.db.WithContext(ctx).Create(shift).Error; err != nil {
		return wrapErr("create shift", err)
	}
	return nil
}

func (s *GormStore) UpdateShift(ctx context.Context, shift *models.Shift) error {
	if err := s.db.WithContext(ctx).Save(shift).Error; err != nil {
		return wrapErr("update shift", err)
	}
	return nil
}

func (s *GormStore) DeleteShift(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Shift{}, "id = ?", id)
	if res.Error != nil {
		return wrapErr("delete shift", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete shift: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) GetAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := s.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, wrapErr("get assignment", err)
	}
	return &assignment, nil
}

func (s *GormStore) ListAssignmentsForEmployee(ctx context.Context, employeeID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Find(&assignments).Error
	if err != nil {
		return nil, wrapErr("list assignments for employee", err)
	}
	return assignments, nil
}

func (s *GormStore) ListAssignmentsForShift(ctx context.Context, shiftID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Find(&assignments).Error
	if err != nil {
		return nil, wrapErr("list assignments for shift", err)
	}
	return assignments, nil
}

func (s *GormStore) CountAssignmentsForShift(ctx context.Context, shiftID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("shift_id = ?", shiftID).
		Count(&count).Error
	if err != nil {
		return 0, wrapErr("count assignments for shift", err)
	}
	return count, nil
}

func (s *GormStore) CreateAssignment(ctx context.Context, assignment *models.Assignment) error {
	if err := s.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return wrapErr("create assignment", err)
	}
	return nil
}

func (s *GormStore) DeleteAssignment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Assignment{}, "id = ?", id)
	if res.Error != nil {
		return wrapErr("delete assignment", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete assignment: %w", ErrNotFound)
	}
	return nil
}

func (s *GormStore) DeleteAssignmentsForEmployee(ctx context.Context, employeeID string) error {
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Delete(&models.Assignment{}).Error
	if err != nil {
		return wrapErr("delete assignments for employee", err)
	}
	return nil
}

func (s *GormStore) DeleteAssignmentsForShift(ctx context.Context, shiftID string) error {
	err := s.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Delete(&models.Assignment{}).Error
	if err != nil {
		return wrapErr("delete assignments for shift", err)
	}
	return nil
}
