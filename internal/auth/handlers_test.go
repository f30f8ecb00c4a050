package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func authTestApp(t *testing.T) (*fiber.App, pgxmock.PgxPoolIface, *Service) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	svc := NewService("test-secret", mock)
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc, JWTMiddleware("test-secret"))
	return app, mock, svc
}

func jsonRequest(method, target string, body any) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandlersRegisterLoginVerify(t *testing.T) {
	app, mock, _ := authTestApp(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "ada@example.com", pgxmock.AnyArg(), "Ada", "", "", false).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/register", RegisterRequest{
		Email:     "ada@example.com",
		Password:  "password123",
		FirstName: "Ada",
	}))
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: err=%v status=%d", err, resp.StatusCode)
	}

	var registered struct {
		User   User          `json:"user"`
		Tokens TokenResponse `json:"tokens"`
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &registered); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if registered.Tokens.AccessToken == "" {
		t.Fatal("missing access token")
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	lastLogin := time.Now()
	mock.ExpectQuery(`SELECT id, email, password_hash`).
		WithArgs("ada@example.com").
		WillReturnRows(userRow("user-1", "ada@example.com", string(hash), false))
	mock.ExpectQuery(`UPDATE users SET last_login`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"last_login", "login_count"}).AddRow(&lastLogin, 3))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	resp, err = app.Test(jsonRequest(http.MethodPost, "/auth/login", LoginRequest{
		Email:    "ada@example.com",
		Password: "password123",
	}))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("login: err=%v status=%d", err, resp.StatusCode)
	}

	// Verify the freshly minted access token.
	req := httptest.NewRequest(http.MethodGet, "/auth/jwt/verify", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Tokens.AccessToken)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("verify: err=%v status=%d", err, resp.StatusCode)
	}
}

func TestAuthHandlersLoginRejectsBadCredentials(t *testing.T) {
	app, mock, _ := authTestApp(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT id, email, password_hash`).
		WithArgs("ada@example.com").
		WillReturnRows(userRow("user-1", "ada@example.com", string(hash), false))

	resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/login", LoginRequest{
		Email:    "ada@example.com",
		Password: "wrongpassword",
	}))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login: err=%v status=%d", err, resp.StatusCode)
	}
}

func TestAuthHandlersMe(t *testing.T) {
	app, mock, svc := authTestApp(t)

	token, _ := svc.signToken("user-1", accessTokenTTL)

	mock.ExpectQuery(`SELECT id, email, password_hash`).
		WithArgs("user-1").
		WillReturnRows(userRow("user-1", "ada@example.com", "hash", false))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("me: err=%v status=%d", err, resp.StatusCode)
	}

	var user User
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email: %q", user.Email)
	}

	// Without a token the profile is not reachable.
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated me: %d", resp.StatusCode)
	}
}

func TestAuthHandlersLogout(t *testing.T) {
	app, mock, svc := authTestApp(t)

	token, _ := svc.signToken("user-1", accessTokenTTL)

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs("refresh-token-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	req := jsonRequest(http.MethodPost, "/auth/logout", RefreshRequest{RefreshToken: "refresh-token-1"})
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: err=%v status=%d", err, resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
