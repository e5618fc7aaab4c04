package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hr_reviews/internal/domain"
)

// ReviewService fronts a review repository for concurrent callers.
// The repository is single-threaded, so every call holds a weight-1 semaphore
// for its whole duration; waiting honours ctx.
type ReviewService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
	sem      *semaphore.Weighted
}

func NewReviewService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *ReviewService {
	return &ReviewService{repo: r, cache: c, cacheTTL: ttl, sem: semaphore.NewWeighted(1)}
}

func (s *ReviewService) lock(ctx context.Context) (func(), error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { s.sem.Release(1) }, nil
}

func (s *ReviewService) Create(ctx context.Context, in domain.ReviewInput) (domain.ReviewView, error) {
	year, summary, empID, err := requireAll(in)
	if err != nil {
		return domain.ReviewView{}, err
	}
	unlock, err := s.lock(ctx)
	if err != nil {
		return domain.ReviewView{}, err
	}
	defer unlock()

	r, err := s.repo.Create(ctx, year, summary, empID)
	if err != nil {
		return domain.ReviewView{}, err
	}
	v := toView(r)
	s.cacheSet(ctx, v)
	return v, nil
}

// Get is a read-through: redis first, then the repository.
func (s *ReviewService) Get(ctx context.Context, id int64) (domain.ReviewView, error) {
	var v domain.ReviewView
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, reviewKey(id), &v); ok {
			return v, nil
		}
	}
	unlock, err := s.lock(ctx)
	if err != nil {
		return domain.ReviewView{}, err
	}
	defer unlock()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.ReviewView{}, err
	}
	v = toView(r)
	s.cacheSet(ctx, v)
	return v, nil
}

func (s *ReviewService) List(ctx context.Context) (domain.ReviewsPage, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer unlock()

	rs, err := s.repo.GetAll(ctx)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	return toPage(rs), nil
}

func (s *ReviewService) ListForEmployee(ctx context.Context, employeeID int64) (domain.ReviewsPage, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer unlock()

	ok, err := s.repo.EmployeeExists(ctx, employeeID)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	if !ok {
		return domain.ReviewsPage{}, fmt.Errorf("employee %d: %w", employeeID, domain.ErrNotFound)
	}
	rs, err := s.repo.ForEmployee(ctx, employeeID)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	return toPage(rs), nil
}

// Update applies the present fields of in. The candidate is validated in full
// before the session's object is touched, so a rejected update leaves it as it was.
func (s *ReviewService) Update(ctx context.Context, id int64, in domain.ReviewInput) (domain.ReviewView, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return domain.ReviewView{}, err
	}
	defer unlock()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.ReviewView{}, err
	}
	year, summary, empID := r.Year(), r.Summary(), r.EmployeeID()
	if in.Year != nil {
		year = *in.Year
	}
	if in.Summary != nil {
		summary = *in.Summary
	}
	if in.EmployeeID != nil {
		empID = *in.EmployeeID
	}
	candidate, err := domain.NewReview(ctx, s.repo, year, summary, empID)
	if err != nil {
		return domain.ReviewView{}, err
	}
	r.CopyFrom(candidate)
	if err := s.repo.Update(ctx, r); err != nil {
		return domain.ReviewView{}, err
	}
	s.invalidate(ctx, id)
	return toView(r), nil
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, r); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ReviewService) cacheSet(ctx context.Context, v domain.ReviewView) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, reviewKey(v.ID), v, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Int64("id", v.ID).Msg("cache set failed")
	}
}

func (s *ReviewService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, reviewKey(id)); err != nil {
		log.Warn().Err(err).Int64("id", id).Msg("cache invalidation failed")
	}
}

func reviewKey(id int64) string { return fmt.Sprintf("review:%d", id) }
