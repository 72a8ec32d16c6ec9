package models

import "time"

// Employee represents a person who can be assigned to shifts
type Employee struct {
	ID             string               `gorm:"primaryKey" json:"id"`
	Name           string               `gorm:"not null" json:"name"`
	MaxWeeklyHours float64              `json:"max_weekly_hours"` // 0 means no cap
	Availability   []AvailabilityWindow `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"availability,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// AvailabilityWindow is a recurring weekly window during which an employee
// may be scheduled. Times are minutes since local midnight.
type AvailabilityWindow struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	EmployeeID  string `gorm:"index;not null" json:"employee_id"`
	Weekday     int    `gorm:"not null" json:"weekday"` // time.Weekday numbering, 0 = Sunday
	StartMinute int    `gorm:"not null" json:"start_minute"`
	EndMinute   int    `gorm:"not null" json:"end_minute"`
}

// Shift represents a time-bounded unit of work that needs staffing
type Shift struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Start     time.Time `gorm:"not null;index" json:"start"`
	End       time.Time `gorm:"not null" json:"end"`
	Headcount int       `gorm:"not null;default:1" json:"headcount"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Assignment binds one employee to one shift
type Assignment struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	EmployeeID string    `gorm:"uniqueIndex:idx_employee_shift;index;not null" json:"employee_id"`
	ShiftID    string    `gorm:"uniqueIndex:idx_employee_shift;index;not null" json:"shift_id"`
	CreatedAt  time.Time `json:"created_at"`
}
