//go:build integration || !unit

package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/rs/zerolog"

	"hr_reviews/internal/domain"
	"hr_reviews/internal/storage/sqlstore"
)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hr",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hr")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sqlstore.Open(sqlstore.MySQL, dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStore_MySQL_ReviewLifecycle(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()
	st := sqlstore.New(db, sqlstore.MySQL, sqlstore.WithLogger(zerolog.Nop()))

	// twice: DDL must be idempotent
	for i := 0; i < 2; i++ {
		if err := st.CreateSchema(ctx); err != nil {
			t.Fatalf("CreateSchema: %v", err)
		}
	}

	dep, err := st.Departments().Create(ctx, "Payroll", "Building A")
	if err != nil {
		t.Fatalf("department: %v", err)
	}
	emp, err := st.Employees().Create(ctx, "Lee", "Manager", dep.ID)
	if err != nil {
		t.Fatalf("employee: %v", err)
	}

	r, err := st.Reviews().Create(ctx, 2023, "Great performance", emp.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID != 1 {
		t.Fatalf("expected first id 1, got %d", r.ID)
	}
	if _, err := st.Reviews().Create(ctx, 2023, "x", 999); !errors.Is(err, domain.ErrUnknownEmployee) {
		t.Fatalf("expected ErrUnknownEmployee, got %v", err)
	}

	_ = r.SetSummary("Outstanding")
	if err := st.Reviews().Update(ctx, r); err != nil {
		t.Fatalf("Update: %v", err)
	}
	st.Reset()
	got, err := st.Reviews().FindByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Summary() != "Outstanding" {
		t.Fatalf("update not visible: %s", got)
	}

	if err := st.Reviews().Delete(ctx, got); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Reviews().FindByID(ctx, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := st.DropSchema(ctx); err != nil {
			t.Fatalf("DropSchema: %v", err)
		}
	}
}
