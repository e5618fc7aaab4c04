package sqlstore

import "fmt"

// Dialects only differ in DDL; every DML statement below uses `?` placeholders,
// which both drivers accept.

func createDepartmentsSQL(d Dialect) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS departments (
  id       %s,
  name     TEXT,
  location TEXT
)`, d.primaryKey())
}

func createEmployeesSQL(d Dialect) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS employees (
  id            %s,
  name          TEXT,
  job_title     TEXT,
  department_id INTEGER,
  FOREIGN KEY (department_id) REFERENCES departments(id)
)`, d.primaryKey())
}

func createReviewsSQL(d Dialect) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS reviews (
  id          %s,
  year        INT,
  summary     TEXT,
  employee_id INTEGER,
  FOREIGN KEY (employee_id) REFERENCES employees(id)
)`, d.primaryKey())
}

const (
	dropDepartmentsSQL = `DROP TABLE IF EXISTS departments`
	dropEmployeesSQL   = `DROP TABLE IF EXISTS employees`
	dropReviewsSQL     = `DROP TABLE IF EXISTS reviews`
)

// -----------------------------------------------------------------------------
// departments
// -----------------------------------------------------------------------------

const insertDepartmentSQL = `
INSERT INTO departments (name, location)
VALUES (?, ?)
`

const selectDepartmentsSQL = `SELECT id, name, location FROM departments`

const departmentExistsSQL = `SELECT id FROM departments WHERE id = ?`

const deleteDepartmentSQL = `DELETE FROM departments WHERE id = ?`

// -----------------------------------------------------------------------------
// employees
// -----------------------------------------------------------------------------

const insertEmployeeSQL = `
INSERT INTO employees (name, job_title, department_id)
VALUES (?, ?, ?)
`

const selectEmployeesSQL = `SELECT id, name, job_title, department_id FROM employees`

const employeeExistsSQL = `SELECT id FROM employees WHERE id = ?`

const deleteEmployeeSQL = `DELETE FROM employees WHERE id = ?`

// -----------------------------------------------------------------------------
// reviews
// -----------------------------------------------------------------------------

const insertReviewSQL = `
INSERT INTO reviews (year, summary, employee_id)
VALUES (?, ?, ?)
`

// No ORDER BY: rows come back in the engine's native order.
const selectReviewsSQL = `SELECT id, year, summary, employee_id FROM reviews`

const updateReviewSQL = `
UPDATE reviews
SET year = ?, summary = ?, employee_id = ?
WHERE id = ?
`

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`
