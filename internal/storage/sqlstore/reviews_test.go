package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"hr_reviews/internal/domain"
	"hr_reviews/internal/storage/sqlstore"
)

// ---------- helpers ----------

type fixture struct {
	db    *sql.DB
	store *sqlstore.Store
	emp   *domain.Employee
}

func newFixture(t *testing.T, opts ...sqlstore.Option) *fixture {
	t.Helper()
	db, err := sqlstore.Open(sqlstore.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	opts = append([]sqlstore.Option{sqlstore.WithLogger(zerolog.Nop())}, opts...)
	st := sqlstore.New(db, sqlstore.SQLite, opts...)
	ctx := context.Background()
	if err := st.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	dep, err := st.Departments().Create(ctx, "Payroll", "Building A, 5th Floor")
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	emp, err := st.Employees().Create(ctx, "Lee", "Manager", dep.ID)
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return &fixture{db: db, store: st, emp: emp}
}

func countReviews(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// ---------- tests ----------

func TestCreate_FirstInsertAndIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviews := f.store.Reviews()

	r, err := reviews.Create(ctx, 2023, "Great performance", f.emp.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID != 1 || r.Year() != 2023 || r.Summary() != "Great performance" || r.EmployeeID() != f.emp.ID {
		t.Fatalf("unexpected review: %s", r)
	}

	got, err := reviews.FindByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != r {
		t.Fatalf("expected the same object from the identity map")
	}
	if cached, ok := reviews.Cached(r.ID); !ok || cached != r {
		t.Fatalf("review not registered in identity map")
	}
}

func TestCreate_RejectsInvalidInputWithoutWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviews := f.store.Reviews()

	cases := []struct {
		name     string
		year     int
		summary  string
		emp      int64
		sentinel error
	}{
		{"year 1999", 1999, "x", f.emp.ID, domain.ErrValidation},
		{"empty summary", 2023, "", f.emp.ID, domain.ErrValidation},
		{"whitespace summary", 2023, "   ", f.emp.ID, domain.ErrValidation},
		{"unknown employee", 2023, "x", 999, domain.ErrUnknownEmployee},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := reviews.Create(ctx, tc.year, tc.summary, tc.emp)
			if r != nil || !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got review=%v err=%v", tc.sentinel, r, err)
			}
		})
	}
	if n := countReviews(t, f.db); n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
	if reviews.CacheLen() != 0 {
		t.Fatalf("identity map should be empty, has %d", reviews.CacheLen())
	}
}

func TestSchema_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviews := f.store.Reviews()

	r, err := reviews.Create(ctx, 2022, "Steady", f.emp.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := reviews.CreateTable(ctx); err != nil {
		t.Fatalf("second CreateTable: %v", err)
	}
	if _, err := reviews.FindByID(ctx, r.ID); err != nil {
		t.Fatalf("data lost after CreateTable: %v", err)
	}

	if err := reviews.DropTable(ctx); err != nil {
		t.Fatalf("DropTable: %v", err)
	}
	if err := reviews.DropTable(ctx); err != nil {
		t.Fatalf("second DropTable: %v", err)
	}
	if reviews.CacheLen() != 0 {
		t.Fatalf("DropTable should clear the identity map")
	}
}

func TestUpdate_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviews := f.store.Reviews()

	r, err := reviews.Create(ctx, 2021, "Needs improvement", f.emp.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.SetYear(2024); err != nil {
		t.Fatalf("SetYear: %v", err)
	}
	if err := r.SetSummary("Much improved"); err != nil {
		t.Fatalf("SetSummary: %v", err)
	}
	if err := reviews.Update(ctx, r); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// a fresh session reads from storage, not from the object we mutated
	f.store.Reset()
	got, err := reviews.FindByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == r {
		t.Fatalf("expected a new object after Reset")
	}
	if got.Year() != 2024 || got.Summary() != "Much improved" {
		t.Fatalf("update not persisted: %s", got)
	}
}

func TestFindByID_RefreshesCachedObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviews := f.store.Reviews()

	r, err := reviews.Create(ctx, 2023, "Original", f.emp.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// local edit that is never written
	_ = r.SetSummary("Local only")

	if _, err := f.db.Exec(`UPDATE reviews SET summary = ?, year = ? WHERE id = ?`, "From storage", 2025, r.ID); err != nil {
		t.Fatalf("raw update: %v", err)
	}
	got, err := reviews.FindByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != r {
		t.Fatalf("expected the cached object")
	}
	if r.Summary() != "From storage" || r.Year() != 2025 {
		t.Fatalf("older reference did not see the reread row: %s", r)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviews := f.store.Reviews()

	r, err := reviews.Create(ctx, 2023, "Bye", f.emp.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := r.ID
	if err := reviews.Delete(ctx, r); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if r.ID != 0 || r.Persisted() {
		t.Fatalf("id should be cleared, got %d", r.ID)
	}
	if _, ok := reviews.Cached(id); ok {
		t.Fatalf("deleted review still in identity map")
	}
	if _, err := reviews.FindByID(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := reviews.Delete(ctx, r); !errors.Is(err, domain.ErrNotPersisted) {
		t.Fatalf("second Delete: expected ErrNotPersisted, got %v", err)
	}
	if err := reviews.Update(ctx, r); !errors.Is(err, domain.ErrNotPersisted) {
		t.Fatalf("Update after Delete: expected ErrNotPersisted, got %v", err)
	}
}

func TestGetAllAndForEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviews := f.store.Reviews()

	other, err := f.store.Employees().Create(ctx, "Sasha", "Benefits Coordinator", f.emp.DepartmentID())
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	a, _ := reviews.Create(ctx, 2022, "Good", f.emp.ID)
	b, _ := reviews.Create(ctx, 2023, "Better", f.emp.ID)
	c, _ := reviews.Create(ctx, 2023, "Fine", other.ID)

	all, err := reviews.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(all))
	}
	seen := map[*domain.Review]bool{}
	for _, r := range all {
		seen[r] = true
	}
	if !seen[a] || !seen[b] || !seen[c] {
		t.Fatalf("GetAll should return the cached objects")
	}

	mine, err := reviews.ForEmployee(ctx, f.emp.ID)
	if err != nil {
		t.Fatalf("ForEmployee: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 reviews for employee, got %d", len(mine))
	}
	for _, r := range mine {
		if r.EmployeeID() != f.emp.ID {
			t.Fatalf("foreign review in result: %s", r)
		}
	}
}

func TestSave_TwiceInsertsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviews := f.store.Reviews()

	r, err := reviews.Create(ctx, 2023, "Twice", f.emp.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	first := r.ID
	if err := reviews.Save(ctx, r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if r.ID == first {
		t.Fatalf("expected a new id on second save")
	}
	if n := countReviews(t, f.db); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

func TestStaleEmployeeReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.store.Reviews().Create(ctx, 2023, "Orphaned soon", f.emp.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := r.ID
	if err := f.store.Employees().Delete(ctx, f.emp); err != nil {
		t.Fatalf("delete employee: %v", err)
	}

	t.Run("strict", func(t *testing.T) {
		if _, err := f.store.Reviews().FindByID(ctx, id); !errors.Is(err, domain.ErrUnknownEmployee) {
			t.Fatalf("expected ErrUnknownEmployee, got %v", err)
		}
		if _, err := f.store.Reviews().GetAll(ctx); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error from GetAll, got %v", err)
		}
	})

	t.Run("tolerate", func(t *testing.T) {
		st := sqlstore.New(f.db, sqlstore.SQLite,
			sqlstore.WithLogger(zerolog.Nop()),
			sqlstore.WithStaleRefs(sqlstore.StaleRefsTolerate))
		got, err := st.Reviews().FindByID(ctx, id)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if got.Summary() != "Orphaned soon" {
			t.Fatalf("unexpected review: %s", got)
		}
		// writes still enforce the reference
		if err := got.SetEmployeeID(ctx, st.Reviews(), got.EmployeeID()); !errors.Is(err, domain.ErrUnknownEmployee) {
			t.Fatalf("expected ErrUnknownEmployee on assignment, got %v", err)
		}
	})
}

func TestFindByID_NullColumnIsValidationError(t *testing.T) {
	f := newFixture(t)
	res, err := f.db.Exec(`INSERT INTO reviews (year, summary, employee_id) VALUES (NULL, 'x', ?)`, f.emp.ID)
	if err != nil {
		t.Fatalf("raw insert: %v", err)
	}
	id, _ := res.LastInsertId()
	_, err = f.store.Reviews().FindByID(context.Background(), id)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "year" {
		t.Fatalf("expected year validation error, got %v", err)
	}
}

func TestEvictAndReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviews := f.store.Reviews()

	r, _ := reviews.Create(ctx, 2023, "Cached", f.emp.ID)
	if !reviews.Evict(r.ID) {
		t.Fatalf("Evict should report a removed entry")
	}
	if reviews.Evict(r.ID) {
		t.Fatalf("second Evict should be a no-op")
	}
	got, err := reviews.FindByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == r {
		t.Fatalf("evicted object must not come back")
	}

	f.store.Reset()
	if reviews.CacheLen() != 0 {
		t.Fatalf("Reset left %d entries", reviews.CacheLen())
	}
}
