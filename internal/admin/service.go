package admin

import (
	"context"
	"errors"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/db"
)

var ErrNotFound = errors.New("user not found")

// UserSummary is the admin's view of an account, without profile
// details the listing does not need.
type UserSummary struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	IsEventOrganizer bool       `json:"is_event_organizer"`
	IsAdmin          bool       `json:"is_admin"`
	IsActive         bool       `json:"is_active"`
	IsVerified       bool       `json:"is_verified"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	LoginCount       int        `json:"login_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DashboardStats summarizes the whole store for the admin landing page.
type DashboardStats struct {
	TotalEvents     int `json:"total_events"`
	PendingEvents   int `json:"pending_events"`
	FeaturedEvents  int `json:"featured_events"`
	ActiveUsers     int `json:"active_users"`
	TotalReviews    int `json:"total_reviews"`
	ReportedReviews int `json:"reported_reviews"`
	TotalViews      int `json:"total_views"`
}

type UserFlagsRequest struct {
	IsActive         *bool `json:"is_active"`
	IsEventOrganizer *bool `json:"is_event_organizer"`
	IsVerified       *bool `json:"is_verified"`
}

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	var st DashboardStats
	row := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM events WHERE is_active),
			(SELECT COUNT(*) FROM events WHERE NOT is_approved AND is_active),
			(SELECT COUNT(*) FROM events WHERE is_featured AND is_active),
			(SELECT COUNT(*) FROM users WHERE is_active),
			(SELECT COUNT(*) FROM reviews),
			(SELECT COUNT(*) FROM reviews WHERE is_reported),
			(SELECT COALESCE(SUM(view_count), 0) FROM events)
	`)
	err := row.Scan(&st.TotalEvents, &st.PendingEvents, &st.FeaturedEvents,
		&st.ActiveUsers, &st.TotalReviews, &st.ReportedReviews, &st.TotalViews)
	if err != nil {
		return DashboardStats{}, err
	}
	return st, nil
}

func (s *Service) ListUsers(ctx context.Context, page, perPage int) ([]UserSummary, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, email, first_name, last_name, is_event_organizer, is_admin,
			is_active, is_verified, last_login, login_count, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserSummary
	for rows.Next() {
		var u UserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName,
			&u.IsEventOrganizer, &u.IsAdmin, &u.IsActive, &u.IsVerified,
			&u.LastLogin, &u.LoginCount, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserFlags flips account toggles. Nil fields keep their value.
func (s *Service) SetUserFlags(ctx context.Context, userID string, req UserFlagsRequest) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET
			is_active = COALESCE($2, is_active),
			is_event_organizer = COALESCE($3, is_event_organizer),
			is_verified = COALESCE($4, is_verified),
			updated_at = now()
		WHERE id = $1
	`, userID, req.IsActive, req.IsEventOrganizer, req.IsVerified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
