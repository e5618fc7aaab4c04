package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"hr_reviews/internal/domain"
)

const reviewsTable = "reviews"

// Reviews is the review record manager of a Store.
type Reviews struct {
	s     *Store
	cache *identityMap[domain.Review]
}

var _ domain.ReviewRepository = (*Reviews)(nil)

type reviewRow struct {
	id         int64
	year       sql.NullInt64
	summary    sql.NullString
	employeeID sql.NullInt64
}

func (r *Reviews) CreateTable(ctx context.Context) error {
	if _, err := r.s.exec(ctx, reviewsTable, "create_table", createReviewsSQL(r.s.dialect)); err != nil {
		return err
	}
	r.s.log.Debug().Str("table", reviewsTable).Msg("table ready")
	return nil
}

// DropTable drops the table and forgets every cached review.
func (r *Reviews) DropTable(ctx context.Context) error {
	if _, err := r.s.exec(ctx, reviewsTable, "drop_table", dropReviewsSQL); err != nil {
		return err
	}
	r.cache.clear()
	r.s.log.Debug().Str("table", reviewsTable).Msg("table dropped")
	return nil
}

// EmployeeExists is the reference check used when validating employee_id.
func (r *Reviews) EmployeeExists(ctx context.Context, id int64) (bool, error) {
	return r.s.employees.EmployeeExists(ctx, id)
}

// Create validates the fields and saves the new review in one step.
func (r *Reviews) Create(ctx context.Context, year int, summary string, employeeID int64) (*domain.Review, error) {
	rv, err := domain.NewReview(ctx, r, year, summary, employeeID)
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// Save inserts rv as a new row and registers it under the generated ID.
// Saving an already persisted review inserts a second row.
func (r *Reviews) Save(ctx context.Context, rv *domain.Review) error {
	id, err := r.s.insert(ctx, reviewsTable, insertReviewSQL, rv.Year(), rv.Summary(), rv.EmployeeID())
	if err != nil {
		return err
	}
	rv.ID = id
	r.cache.put(id, rv)
	r.s.log.Debug().Int64("id", id).Int64("employee_id", rv.EmployeeID()).Msg("review saved")
	return nil
}

// FindByID returns domain.ErrNotFound when no row matches.
func (r *Reviews) FindByID(ctx context.Context, id int64) (*domain.Review, error) {
	rows, err := r.selectRows(ctx, "find_by_id", selectReviewsSQL+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	return r.materialize(ctx, rows[0])
}

// GetAll returns every review in storage order.
func (r *Reviews) GetAll(ctx context.Context) ([]*domain.Review, error) {
	rows, err := r.selectRows(ctx, "get_all", selectReviewsSQL)
	if err != nil {
		return nil, err
	}
	return r.materializeAll(ctx, rows)
}

// ForEmployee returns the reviews written for one employee.
func (r *Reviews) ForEmployee(ctx context.Context, employeeID int64) ([]*domain.Review, error) {
	rows, err := r.selectRows(ctx, "for_employee", selectReviewsSQL+" WHERE employee_id = ?", employeeID)
	if err != nil {
		return nil, err
	}
	return r.materializeAll(ctx, rows)
}

// Update writes every field of rv to its row. A row deleted behind the
// session's back makes this a no-op.
func (r *Reviews) Update(ctx context.Context, rv *domain.Review) error {
	if !rv.Persisted() {
		return fmt.Errorf("update review: %w", domain.ErrNotPersisted)
	}
	_, err := r.s.exec(ctx, reviewsTable, "update", updateReviewSQL, rv.Year(), rv.Summary(), rv.EmployeeID(), rv.ID)
	return err
}

// Delete removes the row, evicts rv from the identity map and clears its ID.
func (r *Reviews) Delete(ctx context.Context, rv *domain.Review) error {
	if !rv.Persisted() {
		return fmt.Errorf("delete review: %w", domain.ErrNotPersisted)
	}
	if _, err := r.s.exec(ctx, reviewsTable, "delete", deleteReviewSQL, rv.ID); err != nil {
		return err
	}
	r.cache.evict(rv.ID)
	r.s.log.Debug().Int64("id", rv.ID).Msg("review deleted")
	rv.ID = 0
	return nil
}

// Cached returns the session's object for id without touching storage.
func (r *Reviews) Cached(id int64) (*domain.Review, bool) { return r.cache.get(id) }

// Evict drops id from the identity map; the row is left alone.
func (r *Reviews) Evict(id int64) bool { return r.cache.evict(id) }

func (r *Reviews) CacheLen() int { return r.cache.len() }

func (r *Reviews) selectRows(ctx context.Context, op, query string, args ...any) ([]reviewRow, error) {
	var out []reviewRow
	err := r.s.queryAll(ctx, reviewsTable, op, query, func(rows *sql.Rows) error {
		var row reviewRow
		if err := rows.Scan(&row.id, &row.year, &row.summary, &row.employeeID); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	}, args...)
	return out, err
}

func (r *Reviews) materializeAll(ctx context.Context, rows []reviewRow) ([]*domain.Review, error) {
	out := make([]*domain.Review, 0, len(rows))
	for _, row := range rows {
		rv, err := r.materialize(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, nil
}

// materialize reconciles a row with the identity map. The row is validated
// like any other input; a cached object is only overwritten once the whole
// row has passed.
func (r *Reviews) materialize(ctx context.Context, row reviewRow) (*domain.Review, error) {
	fresh, err := r.fromRow(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("review %d: %w", row.id, err)
	}
	if cached, ok := r.cache.get(row.id); ok {
		cached.CopyFrom(fresh)
		return cached, nil
	}
	fresh.ID = row.id
	r.cache.put(row.id, fresh)
	return fresh, nil
}

func (r *Reviews) fromRow(ctx context.Context, row reviewRow) (*domain.Review, error) {
	if !row.year.Valid {
		return nil, &domain.ValidationError{Field: "year", Msg: "year must be an integer"}
	}
	if !row.summary.Valid {
		return nil, &domain.ValidationError{Field: "summary", Msg: "summary must be a non-empty string"}
	}
	if !row.employeeID.Valid {
		return nil, &domain.ValidationError{Field: "employee_id", Msg: "employee ID must be an integer"}
	}
	var employees domain.EmployeeChecker = r
	if r.s.staleRefs == StaleRefsTolerate {
		employees = staleTolerant{inner: r, s: r.s, reviewID: row.id}
	}
	return domain.NewReview(ctx, employees, int(row.year.Int64), row.summary.String, row.employeeID.Int64)
}

// staleTolerant accepts references to missing employees and logs them.
type staleTolerant struct {
	inner    domain.EmployeeChecker
	s        *Store
	reviewID int64
}

func (t staleTolerant) EmployeeExists(ctx context.Context, id int64) (bool, error) {
	ok, err := t.inner.EmployeeExists(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		t.s.log.Warn().
			Int64("review_id", t.reviewID).
			Int64("employee_id", id).
			Msg("review references a missing employee")
	}
	return true, nil
}
