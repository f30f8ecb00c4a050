package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, q db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     q,
	}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone_number,
	is_event_organizer, is_admin, is_verified,
	preferred_lat, preferred_lng, preferred_search_radius_km,
	last_login, login_count, created_at, updated_at`

func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, TokenResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return User{}, TokenResponse{}, errors.New("valid email required")
	}
	if len(req.Password) < 8 {
		return User{}, TokenResponse{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, TokenResponse{}, err
	}

	user := User{
		ID:               uuid.NewString(),
		Email:            req.Email,
		PasswordHash:     string(hash),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PhoneNumber:      req.PhoneNumber,
		IsEventOrganizer: req.IsEventOrganizer,
		SearchRadiusKm:   10,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone_number, is_event_organizer)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.PhoneNumber, user.IsEventOrganizer)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, user.ID)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userByQuery(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active`, email)
	if err != nil {
		return User{}, TokenResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, TokenResponse{}, ErrInvalidCredentials
	}

	row := s.db.QueryRow(ctx, `
		UPDATE users SET last_login = now(), login_count = login_count + 1, updated_at = now()
		WHERE id = $1
		RETURNING last_login, login_count
	`, user.ID)
	if err := row.Scan(&user.LastLogin, &user.LoginCount); err != nil {
		return User{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, user.ID)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (User, error) {
	return s.userByQuery(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND is_active`, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.PreferredLat != nil {
		user.PreferredLat = req.PreferredLat
	}
	if req.PreferredLng != nil {
		user.PreferredLng = req.PreferredLng
	}
	if req.SearchRadiusKm != nil {
		if *req.SearchRadiusKm < 1 || *req.SearchRadiusKm > 100 {
			return User{}, errors.New("search radius must be between 1 and 100 km")
		}
		user.SearchRadiusKm = *req.SearchRadiusKm
	}

	_, err = s.db.Exec(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, phone_number = $4,
			preferred_lat = $5, preferred_lng = $6, preferred_search_radius_km = $7,
			updated_at = now()
		WHERE id = $1
	`, user.ID, user.FirstName, user.LastName, user.PhoneNumber,
		user.PreferredLat, user.PreferredLng, user.SearchRadiusKm)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new
// hash. Refresh tokens stay valid; access revocation is handled by the
// short access TTL.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, string(hash))
	return err
}

func (s *Service) userByQuery(ctx context.Context, query string, arg any) (User, error) {
	var user User
	row := s.db.QueryRow(ctx, query, arg)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.PhoneNumber, &user.IsEventOrganizer, &user.IsAdmin, &user.IsVerified,
		&user.PreferredLat, &user.PreferredLng, &user.SearchRadiusKm,
		&user.LastLogin, &user.LoginCount, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) GenerateTokens(ctx context.Context, userID string) (TokenResponse, error) {
	access, err := s.signToken(userID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(userID, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, userID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	userID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || userID != claims.UserID || time.Now().After(expiresAt) {
		return "", errors.New("refresh token invalid")
	}
	return claims.UserID, nil
}

// RevokeRefreshToken invalidates one refresh token on logout.
func (s *Service) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	return err
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// IsAdmin consults the stored flag rather than token claims, so
// revoking admin rights takes effect on the next request.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin bool
	row := s.db.QueryRow(ctx, `SELECT is_admin FROM users WHERE id = $1 AND is_active`, userID)
	if err := row.Scan(&isAdmin); err != nil {
		return false, err
	}
	return isAdmin, nil
}

func (s *Service) signToken(userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var userID string
	var expiresAt time.Time
	if err := row.Scan(&userID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return userID, expiresAt, nil
}
