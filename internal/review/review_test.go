package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
)

func newReviewMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestCreateReview(t *testing.T) {
	mock := newReviewMock(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(pgxmock.AnyArg(), "user-1", "evt-1", 5, "great show").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	svc := NewService(mock)
	r, err := svc.Create(context.Background(), "user-1", CreateRequest{EventID: "evt-1", Rating: 5, Comment: "great show"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.ID == "" || r.Rating != 5 {
		t.Fatalf("review: %+v", r)
	}

	if _, err := svc.Create(context.Background(), "user-1", CreateRequest{EventID: "evt-1", Rating: 6}); err == nil {
		t.Fatal("expected rating validation error")
	}
}

func TestCreateReviewDuplicate(t *testing.T) {
	mock := newReviewMock(t)

	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(pgxmock.AnyArg(), "user-1", "evt-1", 4, "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "unique_user_event_review"})

	svc := NewService(mock)
	_, err := svc.Create(context.Background(), "user-1", CreateRequest{EventID: "evt-1", Rating: 4})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected already reviewed, got %v", err)
	}
}

func TestEventStatsHistogram(t *testing.T) {
	mock := newReviewMock(t)

	mock.ExpectQuery(`SELECT rating, COUNT\(\*\)`).
		WithArgs("evt-1").
		WillReturnRows(pgxmock.NewRows([]string{"rating", "count"}).
			AddRow(5, 3).
			AddRow(4, 1))

	svc := NewService(mock)
	stats, err := svc.EventStats(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ReviewCount != 4 {
		t.Fatalf("count: %d", stats.ReviewCount)
	}
	if stats.AvgRating != 4.75 {
		t.Fatalf("avg: %v", stats.AvgRating)
	}
	if stats.Histogram[5] != 3 || stats.Histogram[1] != 0 {
		t.Fatalf("histogram: %v", stats.Histogram)
	}
}

func TestUpdateReviewOwnership(t *testing.T) {
	mock := newReviewMock(t)

	now := time.Now()
	reviewCols := []string{"id", "user_id", "event_id", "rating", "comment",
		"is_verified", "is_reported", "report_count", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT id, user_id, event_id`).
		WithArgs("rev-1").
		WillReturnRows(pgxmock.NewRows(reviewCols).
			AddRow("rev-1", "someone-else", "evt-1", 3, "", false, false, 0, now, now))

	svc := NewService(mock)
	rating := 4
	_, err := svc.Update(context.Background(), "user-1", "rev-1", UpdateRequest{Rating: &rating})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}

	mock.ExpectQuery(`SELECT id, user_id, event_id`).
		WithArgs("rev-1").
		WillReturnRows(pgxmock.NewRows(reviewCols).
			AddRow("rev-1", "user-1", "evt-1", 3, "ok", false, false, 0, now, now))
	mock.ExpectExec(`UPDATE reviews SET rating`).
		WithArgs("rev-1", 4, "ok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := svc.Update(context.Background(), "user-1", "rev-1", UpdateRequest{Rating: &rating})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Rating != 4 {
		t.Fatalf("rating: %d", updated.Rating)
	}
}

func TestDeleteReview(t *testing.T) {
	mock := newReviewMock(t)

	mock.ExpectExec(`DELETE FROM reviews WHERE id`).
		WithArgs("rev-1", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	svc := NewService(mock)
	if err := svc.Delete(context.Background(), "user-1", "rev-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Deleting someone else's review affects no rows.
	mock.ExpectExec(`DELETE FROM reviews WHERE id`).
		WithArgs("rev-2", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	if err := svc.Delete(context.Background(), "user-1", "rev-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReportAndModerate(t *testing.T) {
	mock := newReviewMock(t)
	svc := NewService(mock)

	mock.ExpectExec(`UPDATE reviews SET is_reported = TRUE`).
		WithArgs("rev-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	if err := svc.Report(context.Background(), "rev-1"); err != nil {
		t.Fatalf("report: %v", err)
	}

	mock.ExpectExec(`UPDATE reviews SET is_reported = FALSE`).
		WithArgs("rev-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	if err := svc.Moderate(context.Background(), "rev-1", false); err != nil {
		t.Fatalf("moderate keep: %v", err)
	}

	mock.ExpectExec(`DELETE FROM reviews WHERE id`).
		WithArgs("rev-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := svc.Moderate(context.Background(), "rev-1", true); err != nil {
		t.Fatalf("moderate remove: %v", err)
	}
}

func authStub(c *fiber.Ctx) error {
	c.Locals("user_id", "user-1")
	return c.Next()
}

func TestReviewRoutes(t *testing.T) {
	mock := newReviewMock(t)
	svc := NewService(mock)

	app := fiber.New()
	RegisterRoutes(app.Group("/reviews"), svc, authStub)
	RegisterAdminRoutes(app.Group("/admin/reviews", authStub), svc)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(pgxmock.AnyArg(), "user-1", "evt-1", 5, "superb").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	payload, _ := json.Marshal(CreateRequest{EventID: "evt-1", Rating: 5, Comment: "superb"})
	req := httptest.NewRequest(http.MethodPost, "/reviews/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: err=%v status=%d", err, resp.StatusCode)
	}

	// Second attempt conflicts.
	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(pgxmock.AnyArg(), "user-1", "evt-1", 5, "superb").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	req = httptest.NewRequest(http.MethodPost, "/reviews/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status: %d", resp.StatusCode)
	}

	moderate, _ := json.Marshal(map[string]string{"action": "remove"})
	mock.ExpectExec(`DELETE FROM reviews WHERE id`).
		WithArgs("rev-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	req = httptest.NewRequest(http.MethodPost, "/admin/reviews/rev-1/moderate", bytes.NewReader(moderate))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("moderate status: %d", resp.StatusCode)
	}
}
