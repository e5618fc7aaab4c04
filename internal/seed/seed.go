// Package seed loads a small HR dataset through the record managers, so every
// row goes through the same validation as API writes.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"hr_reviews/internal/storage/sqlstore"
)

type Dataset struct {
	Departments []Department `json:"departments"`
	Employees   []Employee   `json:"employees"`
	Reviews     []Review     `json:"reviews"`
}

type Department struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Employee and Review refer to their parents by name.
type Employee struct {
	Name       string `json:"name"`
	JobTitle   string `json:"job_title"`
	Department string `json:"department"`
}

type Review struct {
	Employee string `json:"employee"`
	Year     int    `json:"year"`
	Summary  string `json:"summary"`
}

type Counts struct{ Departments, Employees, Reviews int }

func Decode(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode seed: %w", err)
	}
	return ds, nil
}

// Default is the sample data used when no seed file is given.
func Default() Dataset {
	return Dataset{
		Departments: []Department{
			{Name: "Payroll", Location: "Building A, 5th Floor"},
			{Name: "Human Resources", Location: "Building C, East Wing"},
		},
		Employees: []Employee{
			{Name: "Amir", JobTitle: "Accountant", Department: "Payroll"},
			{Name: "Bola", JobTitle: "Manager", Department: "Payroll"},
			{Name: "Charlie", JobTitle: "Manager", Department: "Human Resources"},
			{Name: "Dani", JobTitle: "Benefits Coordinator", Department: "Human Resources"},
		},
		Reviews: []Review{
			{Employee: "Amir", Year: 2023, Summary: "Efficient worker"},
			{Employee: "Bola", Year: 2022, Summary: "Good work ethic"},
			{Employee: "Bola", Year: 2023, Summary: "Excellent communication skills"},
			{Employee: "Charlie", Year: 2022, Summary: "Expert knowledge of HR policies"},
			{Employee: "Dani", Year: 2023, Summary: "Great performance"},
		},
	}
}

// Apply creates the schema (dropping it first when reset is set) and inserts
// ds. It stops at the first invalid record.
func Apply(ctx context.Context, st *sqlstore.Store, ds Dataset, reset bool) (Counts, error) {
	var n Counts
	if reset {
		if err := st.DropSchema(ctx); err != nil {
			return n, err
		}
	}
	if err := st.CreateSchema(ctx); err != nil {
		return n, err
	}

	deps := make(map[string]int64, len(ds.Departments))
	for _, d := range ds.Departments {
		dep, err := st.Departments().Create(ctx, d.Name, d.Location)
		if err != nil {
			return n, fmt.Errorf("department %q: %w", d.Name, err)
		}
		deps[d.Name] = dep.ID
		n.Departments++
	}

	emps := make(map[string]int64, len(ds.Employees))
	for _, e := range ds.Employees {
		depID, ok := deps[e.Department]
		if !ok {
			return n, fmt.Errorf("employee %q: department %q is not in the dataset", e.Name, e.Department)
		}
		emp, err := st.Employees().Create(ctx, e.Name, e.JobTitle, depID)
		if err != nil {
			return n, fmt.Errorf("employee %q: %w", e.Name, err)
		}
		emps[e.Name] = emp.ID
		n.Employees++
	}

	for _, r := range ds.Reviews {
		empID, ok := emps[r.Employee]
		if !ok {
			return n, fmt.Errorf("review %q: employee %q is not in the dataset", r.Summary, r.Employee)
		}
		rv, err := st.Reviews().Create(ctx, r.Year, r.Summary, empID)
		if err != nil {
			return n, fmt.Errorf("review for %q: %w", r.Employee, err)
		}
		log.Debug().Str("review", rv.String()).Msg("seeded")
		n.Reviews++
	}
	return n, nil
}
