package domain

import "context"

// EmployeeChecker answers whether an employee row exists.
type EmployeeChecker interface {
	EmployeeExists(ctx context.Context, id int64) (bool, error)
}

type DepartmentChecker interface {
	DepartmentExists(ctx context.Context, id int64) (bool, error)
}

// ReviewRepository is the review record manager as seen by the app layer.
// Implementations hand out one *Review per row; they are not safe for concurrent use.
type ReviewRepository interface {
	EmployeeChecker

	Create(ctx context.Context, year int, summary string, employeeID int64) (*Review, error)
	FindByID(ctx context.Context, id int64) (*Review, error)
	GetAll(ctx context.Context) ([]*Review, error)
	ForEmployee(ctx context.Context, employeeID int64) ([]*Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, r *Review) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models

type ReviewView struct {
	ID         int64  `json:"id"`
	Year       int    `json:"year"`
	Summary    string `json:"summary"`
	EmployeeID int64  `json:"employee_id"`
}

type ReviewsPage struct {
	Items []ReviewView `json:"items"`
}

// ReviewInput carries caller-supplied fields; nil means the field was absent.
type ReviewInput struct {
	Year       *int    `json:"year"`
	Summary    *string `json:"summary"`
	EmployeeID *int64  `json:"employee_id"`
}
