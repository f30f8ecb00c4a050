package review

import "time"

type Review struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	EventID     string    `json:"event_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	IsReported  bool      `json:"is_reported"`
	ReportCount int       `json:"report_count"`
	AuthorName  string    `json:"author_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateRequest struct {
	EventID string `json:"event_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type UpdateRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// Stats aggregates an event's reviews, with a 1-5 star histogram.
type Stats struct {
	EventID     string      `json:"event_id"`
	AvgRating   float64     `json:"avg_rating"`
	ReviewCount int         `json:"review_count"`
	Histogram   map[int]int `json:"histogram"`
}
