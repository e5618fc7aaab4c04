package domain

import (
	"context"
	"fmt"
	"strings"
)

// MinReviewYear is the earliest year a review may be filed for.
const MinReviewYear = 2000

// Review is a yearly performance review of one employee.
// Year, summary and employee are only reachable through validating setters;
// ID is zero until the review is saved and again after it is deleted.
type Review struct {
	ID         int64
	year       int
	summary    string
	employeeID int64
}

// NewReview validates every field and returns a transient review.
func NewReview(ctx context.Context, employees EmployeeChecker, year int, summary string, employeeID int64) (*Review, error) {
	r := &Review{}
	if err := r.SetYear(year); err != nil {
		return nil, err
	}
	if err := r.SetSummary(summary); err != nil {
		return nil, err
	}
	if err := r.SetEmployeeID(ctx, employees, employeeID); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Review) Year() int { return r.year }
func (r *Review) Summary() string { return r.summary }
func (r *Review) EmployeeID() int64 { return r.employeeID }
func (r *Review) Persisted() bool { return r.ID != 0 }

func (r *Review) SetYear(year int) error {
	if year < MinReviewYear {
		return invalid("year", fmt.Sprintf("year must be greater than or equal to %d", MinReviewYear))
	}
	r.year = year
	return nil
}

func (r *Review) SetSummary(summary string) error {
	if strings.TrimSpace(summary) == "" {
		return invalid("summary", "summary must be a non-empty string")
	}
	r.summary = summary
	return nil
}

// SetEmployeeID looks the employee up before accepting the value.
// Lookup failures are returned as is; a missing employee is a validation error.
func (r *Review) SetEmployeeID(ctx context.Context, employees EmployeeChecker, id int64) error {
	ok, err := employees.EmployeeExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check employee %d: %w", id, err)
	}
	if !ok {
		return &ValidationError{
			Field: "employee_id",
			Msg:   fmt.Sprintf("employee ID %d does not exist", id),
			cause: ErrUnknownEmployee,
		}
	}
	r.employeeID = id
	return nil
}

// CopyFrom overwrites the mutable fields with o's. The ID is left alone.
func (r *Review) CopyFrom(o *Review) {
	r.year = o.year
	r.summary = o.summary
	r.employeeID = o.employeeID
}

func (r *Review) String() string {
	return fmt.Sprintf("<Review %d: %d, %s, Employee: %d>", r.ID, r.year, r.summary, r.employeeID)
}
