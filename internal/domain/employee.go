package domain

import (
	"context"
	"fmt"
	"strings"
)

type Department struct {
	ID       int64
	name     string
	location string
}

func NewDepartment(name, location string) (*Department, error) {
	d := &Department{}
	if err := d.SetName(name); err != nil {
		return nil, err
	}
	if err := d.SetLocation(location); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Department) Name() string { return d.name }
func (d *Department) Location() string { return d.location }

func (d *Department) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "name must be a non-empty string")
	}
	d.name = name
	return nil
}

func (d *Department) SetLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return invalid("location", "location must be a non-empty string")
	}
	d.location = location
	return nil
}

func (d *Department) CopyFrom(o *Department) {
	d.name = o.name
	d.location = o.location
}

func (d *Department) String() string {
	return fmt.Sprintf("<Department %d: %s, %s>", d.ID, d.name, d.location)
}

type Employee struct {
	ID           int64
	name         string
	jobTitle     string
	departmentID int64
}

func NewEmployee(ctx context.Context, departments DepartmentChecker, name, jobTitle string, departmentID int64) (*Employee, error) {
	e := &Employee{}
	if err := e.SetName(name); err != nil {
		return nil, err
	}
	if err := e.SetJobTitle(jobTitle); err != nil {
		return nil, err
	}
	if err := e.SetDepartmentID(ctx, departments, departmentID); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Employee) Name() string { return e.name }
func (e *Employee) JobTitle() string { return e.jobTitle }
func (e *Employee) DepartmentID() int64 { return e.departmentID }

func (e *Employee) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "name must be a non-empty string")
	}
	e.name = name
	return nil
}

func (e *Employee) SetJobTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return invalid("job_title", "job title must be a non-empty string")
	}
	e.jobTitle = title
	return nil
}

func (e *Employee) SetDepartmentID(ctx context.Context, departments DepartmentChecker, id int64) error {
	ok, err := departments.DepartmentExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check department %d: %w", id, err)
	}
	if !ok {
		return &ValidationError{
			Field: "department_id",
			Msg:   fmt.Sprintf("department ID %d does not exist", id),
			cause: ErrUnknownDepartment,
		}
	}
	e.departmentID = id
	return nil
}

func (e *Employee) CopyFrom(o *Employee) {
	e.name = o.name
	e.jobTitle = o.jobTitle
	e.departmentID = o.departmentID
}

func (e *Employee) String() string {
	return fmt.Sprintf("<Employee %d: %s, %s, Department ID: %d>", e.ID, e.name, e.jobTitle, e.departmentID)
}
