package event

import "time"

type Event struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	ShortDescription string     `json:"short_description,omitempty"`
	Date             time.Time  `json:"date"`
	Time             string     `json:"time"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	EndTime          *string    `json:"end_time,omitempty"`
	Location         string     `json:"location"`
	Venue            string     `json:"venue,omitempty"`
	Address          string     `json:"address,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	AgeRestrictions  string     `json:"age_restrictions,omitempty"`
	PriceInfo        string     `json:"price_info,omitempty"`
	ExternalURL      string     `json:"external_url,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	CategoryID       int        `json:"category_id"`
	CategorySlug     string     `json:"category_slug"`
	CategoryName     string     `json:"category_name"`
	IsApproved       bool       `json:"is_approved"`
	IsFeatured       bool       `json:"is_featured"`
	Source           string     `json:"source"`
	SubmittedBy      *string    `json:"submitted_by,omitempty"`
	ViewCount        int        `json:"view_count"`
	ClickCount       int        `json:"click_count"`
	AvgRating        float64    `json:"avg_rating"`
	ReviewCount      int        `json:"review_count"`
	DistanceKm       *float64   `json:"distance_km,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ListFilter narrows the public events listing.
type ListFilter struct {
	CategorySlug string
	Search       string
	DateFrom     *time.Time
	DateTo       *time.Time
	FeaturedOnly bool
	Page         int
	PerPage      int
}

type ListResult struct {
	Events  []Event `json:"events"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}

// SubmitRequest is a user- or admin-authored event.
type SubmitRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Date             string   `json:"date"`
	Time             string   `json:"time"`
	EndDate          string   `json:"end_date"`
	EndTime          string   `json:"end_time"`
	Location         string   `json:"location"`
	Venue            string   `json:"venue"`
	Address          string   `json:"address"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	AgeRestrictions  string   `json:"age_restrictions"`
	PriceInfo        string   `json:"price_info"`
	ExternalURL      string   `json:"external_url"`
	ImageURL         string   `json:"image_url"`
	CategoryID       int      `json:"category_id"`
}

type UpdateRequest struct {
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"short_description"`
	Date             *string  `json:"date"`
	Time             *string  `json:"time"`
	Location         *string  `json:"location"`
	Venue            *string  `json:"venue"`
	Address          *string  `json:"address"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	PriceInfo        *string  `json:"price_info"`
	ExternalURL      *string  `json:"external_url"`
	ImageURL         *string  `json:"image_url"`
	CategoryID       *int     `json:"category_id"`
}
