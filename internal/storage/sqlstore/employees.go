package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"hr_reviews/internal/domain"
)

const (
	departmentsTable = "departments"
	employeesTable   = "employees"
)

type Departments struct {
	s     *Store
	cache *identityMap[domain.Department]
}

func (d *Departments) CreateTable(ctx context.Context) error {
	_, err := d.s.exec(ctx, departmentsTable, "create_table", createDepartmentsSQL(d.s.dialect))
	return err
}

func (d *Departments) DropTable(ctx context.Context) error {
	if _, err := d.s.exec(ctx, departmentsTable, "drop_table", dropDepartmentsSQL); err != nil {
		return err
	}
	d.cache.clear()
	return nil
}

func (d *Departments) DepartmentExists(ctx context.Context, id int64) (bool, error) {
	return d.s.exists(ctx, departmentsTable, departmentExistsSQL, id)
}

func (d *Departments) Create(ctx context.Context, name, location string) (*domain.Department, error) {
	dep, err := domain.NewDepartment(name, location)
	if err != nil {
		return nil, err
	}
	if err := d.Save(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

func (d *Departments) Save(ctx context.Context, dep *domain.Department) error {
	id, err := d.s.insert(ctx, departmentsTable, insertDepartmentSQL, dep.Name(), dep.Location())
	if err != nil {
		return err
	}
	dep.ID = id
	d.cache.put(id, dep)
	return nil
}

func (d *Departments) FindByID(ctx context.Context, id int64) (*domain.Department, error) {
	all, err := d.load(ctx, "find_by_id", selectDepartmentsSQL+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("department %d: %w", id, domain.ErrNotFound)
	}
	return all[0], nil
}

func (d *Departments) GetAll(ctx context.Context) ([]*domain.Department, error) {
	return d.load(ctx, "get_all", selectDepartmentsSQL)
}

func (d *Departments) Delete(ctx context.Context, dep *domain.Department) error {
	if dep.ID == 0 {
		return fmt.Errorf("delete department: %w", domain.ErrNotPersisted)
	}
	if _, err := d.s.exec(ctx, departmentsTable, "delete", deleteDepartmentSQL, dep.ID); err != nil {
		return err
	}
	d.cache.evict(dep.ID)
	dep.ID = 0
	return nil
}

func (d *Departments) load(ctx context.Context, op, query string, args ...any) ([]*domain.Department, error) {
	var out []*domain.Department
	err := d.s.queryAll(ctx, departmentsTable, op, query, func(rows *sql.Rows) error {
		var (
			id             int64
			name, location sql.NullString
		)
		if err := rows.Scan(&id, &name, &location); err != nil {
			return err
		}
		fresh, err := domain.NewDepartment(name.String, location.String)
		if err != nil {
			return fmt.Errorf("department %d: %w", id, err)
		}
		if cached, ok := d.cache.get(id); ok {
			cached.CopyFrom(fresh)
			out = append(out, cached)
			return nil
		}
		fresh.ID = id
		d.cache.put(id, fresh)
		out = append(out, fresh)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type Employees struct {
	s     *Store
	cache *identityMap[domain.Employee]
}

type employeeRow struct {
	id             int64
	name, jobTitle sql.NullString
	departmentID   sql.NullInt64
}

func (e *Employees) CreateTable(ctx context.Context) error {
	_, err := e.s.exec(ctx, employeesTable, "create_table", createEmployeesSQL(e.s.dialect))
	return err
}

func (e *Employees) DropTable(ctx context.Context) error {
	if _, err := e.s.exec(ctx, employeesTable, "drop_table", dropEmployeesSQL); err != nil {
		return err
	}
	e.cache.clear()
	return nil
}

func (e *Employees) EmployeeExists(ctx context.Context, id int64) (bool, error) {
	return e.s.exists(ctx, employeesTable, employeeExistsSQL, id)
}

func (e *Employees) Create(ctx context.Context, name, jobTitle string, departmentID int64) (*domain.Employee, error) {
	emp, err := domain.NewEmployee(ctx, e.s.departments, name, jobTitle, departmentID)
	if err != nil {
		return nil, err
	}
	if err := e.Save(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

func (e *Employees) Save(ctx context.Context, emp *domain.Employee) error {
	id, err := e.s.insert(ctx, employeesTable, insertEmployeeSQL, emp.Name(), emp.JobTitle(), emp.DepartmentID())
	if err != nil {
		return err
	}
	emp.ID = id
	e.cache.put(id, emp)
	return nil
}

func (e *Employees) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	all, err := e.load(ctx, "find_by_id", selectEmployeesSQL+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("employee %d: %w", id, domain.ErrNotFound)
	}
	return all[0], nil
}

func (e *Employees) GetAll(ctx context.Context) ([]*domain.Employee, error) {
	return e.load(ctx, "get_all", selectEmployeesSQL)
}

// Delete removes the employee row only; reviews pointing at it are left as
// they are (see StaleRefPolicy).
func (e *Employees) Delete(ctx context.Context, emp *domain.Employee) error {
	if emp.ID == 0 {
		return fmt.Errorf("delete employee: %w", domain.ErrNotPersisted)
	}
	if _, err := e.s.exec(ctx, employeesTable, "delete", deleteEmployeeSQL, emp.ID); err != nil {
		return err
	}
	e.cache.evict(emp.ID)
	emp.ID = 0
	return nil
}

// load scans first and validates afterwards: the department check needs the
// connection the result set is holding.
func (e *Employees) load(ctx context.Context, op, query string, args ...any) ([]*domain.Employee, error) {
	var rows []employeeRow
	err := e.s.queryAll(ctx, employeesTable, op, query, func(r *sql.Rows) error {
		var row employeeRow
		if err := r.Scan(&row.id, &row.name, &row.jobTitle, &row.departmentID); err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Employee, 0, len(rows))
	for _, row := range rows {
		fresh, err := domain.NewEmployee(ctx, e.s.departments, row.name.String, row.jobTitle.String, row.departmentID.Int64)
		if err != nil {
			return nil, fmt.Errorf("employee %d: %w", row.id, err)
		}
		if cached, ok := e.cache.get(row.id); ok {
			cached.CopyFrom(fresh)
			out = append(out, cached)
			continue
		}
		fresh.ID = row.id
		e.cache.put(row.id, fresh)
		out = append(out, fresh)
	}
	return out, nil
}
