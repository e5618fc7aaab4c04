package app

import (
	"hr_reviews/internal/domain"
)

func toView(r *domain.Review) domain.ReviewView {
	return domain.ReviewView{
		ID:         r.ID,
		Year:       r.Year(),
		Summary:    r.Summary(),
		EmployeeID: r.EmployeeID(),
	}
}

func toPage(rs []*domain.Review) domain.ReviewsPage {
	out := domain.ReviewsPage{Items: make([]domain.ReviewView, 0, len(rs))}
	for _, r := range rs {
		out.Items = append(out.Items, toView(r))
	}
	return out
}

// requireAll checks that a create request carries every field. Values are
// validated later by the domain constructor.
func requireAll(in domain.ReviewInput) (int, string, int64, error) {
	switch {
	case in.Year == nil:
		return 0, "", 0, &domain.ValidationError{Field: "year", Msg: "year must be an integer"}
	case in.Summary == nil:
		return 0, "", 0, &domain.ValidationError{Field: "summary", Msg: "summary must be a non-empty string"}
	case in.EmployeeID == nil:
		return 0, "", 0, &domain.ValidationError{Field: "employee_id", Msg: "employee ID must be an integer"}
	}
	return *in.Year, *in.Summary, *in.EmployeeID, nil
}
