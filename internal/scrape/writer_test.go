package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

func sampleRecord() Record {
	return Record{
		Title:        "Jazz Night",
		Date:         time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Time:         "20:00:00",
		Location:     "Marina Bay Sands, Singapore",
		Venue:        "Sands Theatre",
		CategorySlug: "concerts",
		Tags:         []string{"jazz", "evening"},
		Source:       "marinabaysands",
		ExternalID:   "abc123def4567890",
	}
}

// anyArgs returns n pgxmock.AnyArg matchers; pgxmock requires the
// expected argument count to match even when values are not asserted.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func expectUpsert(mock pgxmock.PgxPoolIface, inserted bool) {
	mock.ExpectQuery(`SELECT id FROM categories WHERE slug`).
		WithArgs("concerts").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))

	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(anyArgs(20)...).
		WillReturnRows(pgxmock.NewRows([]string{"id", "inserted"}).AddRow("evt-1", inserted))

	for _, tag := range []string{"jazz", "evening"} {
		mock.ExpectQuery(`INSERT INTO tags`).
			WithArgs(tag).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(`INSERT INTO event_tags`).
			WithArgs("evt-1", 7).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
}

func TestWriterInsertThenUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	w := NewWriter(mock)
	rec := sampleRecord()

	expectUpsert(mock, true)
	inserted, err := w.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if !inserted {
		t.Fatal("expected insert on first save")
	}

	// Same batch again: the upsert refreshes the existing row.
	expectUpsert(mock, false)
	inserted, err = w.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if inserted {
		t.Fatal("expected update on second save")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWriterUnknownCategory(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id FROM categories WHERE slug`).
		WithArgs("concerts").
		WillReturnError(errors.New("no rows in result set"))

	w := NewWriter(mock)
	_, err = w.Save(context.Background(), sampleRecord())

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if pe.Title != "Jazz Night" {
		t.Fatalf("title: %q", pe.Title)
	}
}

func TestWriterWrapsInsertFailure(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id FROM categories WHERE slug`).
		WithArgs("concerts").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(`INSERT INTO events`).WithArgs(anyArgs(20)...).WillReturnError(dbErr)

	w := NewWriter(mock)
	_, err = w.Save(context.Background(), sampleRecord())

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !errors.Is(err, dbErr) {
		t.Fatal("expected wrapped database error")
	}
}
