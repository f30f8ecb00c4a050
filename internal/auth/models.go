package auth

import "time"

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	IsEventOrganizer bool       `json:"is_event_organizer"`
	IsAdmin          bool       `json:"is_admin"`
	IsVerified       bool       `json:"is_verified"`
	PreferredLat     *float64   `json:"preferred_lat,omitempty"`
	PreferredLng     *float64   `json:"preferred_lng,omitempty"`
	SearchRadiusKm   int        `json:"preferred_search_radius_km"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	LoginCount       int        `json:"login_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	PhoneNumber      string `json:"phone_number"`
	IsEventOrganizer bool   `json:"is_event_organizer"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateProfileRequest struct {
	FirstName      *string  `json:"first_name"`
	LastName       *string  `json:"last_name"`
	PhoneNumber    *string  `json:"phone_number"`
	PreferredLat   *float64 `json:"preferred_lat"`
	PreferredLng   *float64 `json:"preferred_lng"`
	SearchRadiusKm *int     `json:"preferred_search_radius_km"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
