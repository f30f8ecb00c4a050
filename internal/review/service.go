package review

import (
	"context"
	"errors"

	"github.com/sakthiish12/TodayAtSG/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("event already reviewed by this user")
	ErrNotOwner        = errors.New("review belongs to another user")
)

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

const reviewColumns = `
	r.id, r.user_id, r.event_id, r.rating, r.comment,
	r.is_verified, r.is_reported, r.report_count,
	u.first_name || ' ' || u.last_name,
	r.created_at, r.updated_at`

// Create stores one review per user per event. The unique constraint
// turns a second attempt into ErrAlreadyReviewed.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return Review{}, errors.New("rating must be between 1 and 5")
	}

	r := Review{
		ID:      uuid.NewString(),
		UserID:  userID,
		EventID: req.EventID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO reviews (id, user_id, event_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, r.ID, r.UserID, r.EventID, r.Rating, r.Comment)
	if err := row.Scan(&r.CreatedAt, &r.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Review{}, ErrAlreadyReviewed
		}
		return Review{}, err
	}
	return r, nil
}

// ListByEvent returns an event's reviews, newest first.
func (s *Service) ListByEvent(ctx context.Context, eventID string, page, perPage int) ([]Review, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.collect(ctx, "SELECT"+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`, eventID, perPage, (page-1)*perPage)
}

// ListByUser returns everything one user has written.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Review, error) {
	return s.collect(ctx, "SELECT"+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`, userID)
}

func (s *Service) collect(ctx context.Context, query string, args ...any) ([]Review, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		err := rows.Scan(&r.ID, &r.UserID, &r.EventID, &r.Rating, &r.Comment,
			&r.IsVerified, &r.IsReported, &r.ReportCount,
			&r.AuthorName, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// EventStats aggregates ratings into an average and a star histogram.
func (s *Service) EventStats(ctx context.Context, eventID string) (Stats, error) {
	rows, err := s.db.Query(ctx, `
		SELECT rating, COUNT(*)
		FROM reviews
		WHERE event_id = $1
		GROUP BY rating
	`, eventID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	stats := Stats{EventID: eventID, Histogram: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return Stats{}, err
		}
		stats.Histogram[rating] = count
		stats.ReviewCount += count
		sum += rating * count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	if stats.ReviewCount > 0 {
		stats.AvgRating = float64(sum) / float64(stats.ReviewCount)
	}
	return stats, nil
}

// Update edits the caller's own review.
func (s *Service) Update(ctx context.Context, userID, reviewID string, req UpdateRequest) (Review, error) {
	var r Review
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, event_id, rating, comment, is_verified, is_reported, report_count, created_at, updated_at
		FROM reviews WHERE id = $1
	`, reviewID)
	err := row.Scan(&r.ID, &r.UserID, &r.EventID, &r.Rating, &r.Comment,
		&r.IsVerified, &r.IsReported, &r.ReportCount, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Review{}, ErrNotFound
	}
	if r.UserID != userID {
		return Review{}, ErrNotOwner
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return Review{}, errors.New("rating must be between 1 and 5")
		}
		r.Rating = *req.Rating
	}
	if req.Comment != nil {
		r.Comment = *req.Comment
	}

	_, err = s.db.Exec(ctx, `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = now()
		WHERE id = $1
	`, r.ID, r.Rating, r.Comment)
	if err != nil {
		return Review{}, err
	}
	return r, nil
}

// Delete removes the caller's own review.
func (s *Service) Delete(ctx context.Context, userID, reviewID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND user_id = $2`, reviewID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Report flags a review for moderation.
func (s *Service) Report(ctx context.Context, reviewID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE reviews SET is_reported = TRUE, report_count = report_count + 1, updated_at = now()
		WHERE id = $1
	`, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Moderate resolves a reported review: keep clears the flags, remove deletes.
func (s *Service) Moderate(ctx context.Context, reviewID string, remove bool) error {
	var tag pgconn.CommandTag
	var err error
	if remove {
		tag, err = s.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	} else {
		tag, err = s.db.Exec(ctx, `
			UPDATE reviews SET is_reported = FALSE, report_count = 0, is_verified = TRUE, updated_at = now()
			WHERE id = $1
		`, reviewID)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reported lists reviews flagged for moderation, most reported first.
func (s *Service) Reported(ctx context.Context) ([]Review, error) {
	return s.collect(ctx, "SELECT"+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.is_reported
		ORDER BY r.report_count DESC, r.created_at
	`)
}
