package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sakthiish12/TodayAtSG/internal/db"
	"github.com/sakthiish12/TodayAtSG/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("event not found")
	ErrNotOwner = errors.New("not the event owner")
)

const defaultPerPage = 20
const maxPerPage = 100

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

const eventColumns = `
	e.id, e.title, e.description, e.short_description,
	e.date, e.time::text, e.end_date, e.end_time::text,
	e.location, e.venue, e.address, e.latitude, e.longitude,
	e.age_restrictions, e.price_info, e.external_url, e.image_url,
	e.category_id, c.slug, c.name,
	e.is_approved, e.is_featured, e.source, e.submitted_by,
	e.view_count, e.click_count,
	(SELECT COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE event_id = e.id),
	(SELECT COUNT(*) FROM reviews WHERE event_id = e.id),
	e.created_at, e.updated_at`

const eventFrom = ` FROM events e JOIN categories c ON c.id = e.category_id`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.ShortDescription,
		&e.Date, &e.Time, &e.EndDate, &e.EndTime,
		&e.Location, &e.Venue, &e.Address, &e.Latitude, &e.Longitude,
		&e.AgeRestrictions, &e.PriceInfo, &e.ExternalURL, &e.ImageURL,
		&e.CategoryID, &e.CategorySlug, &e.CategoryName,
		&e.IsApproved, &e.IsFeatured, &e.Source, &e.SubmittedBy,
		&e.ViewCount, &e.ClickCount,
		&e.AvgRating, &e.ReviewCount,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (s *Service) collectEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// List returns approved, active events matching the filter, newest date last.
func (s *Service) List(ctx context.Context, f ListFilter) (ListResult, error) {
	where := []string{"e.is_approved", "e.is_active"}
	var args []any

	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d)", len(args), len(args)))
	}
	if f.DateFrom != nil {
		args = append(args, *f.DateFrom)
		where = append(where, fmt.Sprintf("e.date >= $%d", len(args)))
	}
	if f.DateTo != nil {
		args = append(args, *f.DateTo)
		where = append(where, fmt.Sprintf("e.date <= $%d", len(args)))
	}
	if f.FeaturedOnly {
		where = append(where, "e.is_featured")
	}

	whereSQL := " WHERE " + strings.Join(where, " AND ")

	var total int
	row := s.db.QueryRow(ctx, "SELECT COUNT(*)"+eventFrom+whereSQL, args...)
	if err := row.Scan(&total); err != nil {
		return ListResult{}, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	args = append(args, perPage, (page-1)*perPage)
	query := "SELECT" + eventColumns + eventFrom + whereSQL +
		fmt.Sprintf(" ORDER BY e.date, e.time LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	events, err := s.collectEvents(ctx, query, args...)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Events: events, Total: total, Page: page, PerPage: perPage}, nil
}

// Get loads one event and counts the view.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	row := s.db.QueryRow(ctx, "SELECT"+eventColumns+eventFrom+" WHERE e.id = $1 AND e.is_active", id)
	e, err := scanEvent(row)
	if err != nil {
		return Event{}, ErrNotFound
	}

	if _, err := s.db.Exec(ctx, `UPDATE events SET view_count = view_count + 1 WHERE id = $1`, id); err != nil {
		return Event{}, err
	}
	e.ViewCount++
	return e, nil
}

// Nearby returns upcoming approved events within radiusKm, closest first.
// A bounding box narrows the query; the haversine distance decides.
func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]Event, error) {
	if !geo.InSingapore(lat, lng) {
		return nil, errors.New("coordinates outside Singapore")
	}
	if radiusKm <= 0 {
		radiusKm = 10
	}
	if limit < 1 || limit > maxPerPage {
		limit = defaultPerPage
	}

	minLat, maxLat, minLng, maxLng := geo.BoundingBox(lat, lng, radiusKm)
	events, err := s.collectEvents(ctx, "SELECT"+eventColumns+eventFrom+`
		WHERE e.is_approved AND e.is_active
		  AND e.date >= CURRENT_DATE
		  AND e.latitude BETWEEN $1 AND $2
		  AND e.longitude BETWEEN $3 AND $4
	`, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}

	var nearby []Event
	for _, e := range events {
		if e.Latitude == nil || e.Longitude == nil {
			continue
		}
		d := geo.HaversineKm(lat, lng, *e.Latitude, *e.Longitude)
		if d > radiusKm {
			continue
		}
		dist := d
		e.DistanceKm = &dist
		nearby = append(nearby, e)
	}
	sort.Slice(nearby, func(i, j int) bool { return *nearby[i].DistanceKm < *nearby[j].DistanceKm })

	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

func (s *Service) Featured(ctx context.Context, limit int) ([]Event, error) {
	if limit < 1 || limit > maxPerPage {
		limit = 10
	}
	return s.collectEvents(ctx, "SELECT"+eventColumns+eventFrom+`
		WHERE e.is_approved AND e.is_active AND e.is_featured AND e.date >= CURRENT_DATE
		ORDER BY e.date, e.time
		LIMIT $1
	`, limit)
}

// Tags returns the slugs attached to an event.
func (s *Service) Tags(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t.slug FROM tags t
		JOIN event_tags et ON et.tag_id = t.id
		WHERE et.event_id = $1
		ORDER BY t.slug
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		tags = append(tags, slug)
	}
	return tags, rows.Err()
}

func (s *Service) TrackClick(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `UPDATE events SET click_count = click_count + 1 WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Submit stores a new event. User submissions wait for admin approval;
// admin-authored events go live immediately.
func (s *Service) Submit(ctx context.Context, userID string, req SubmitRequest, source string) (Event, error) {
	if err := validateSubmit(req); err != nil {
		return Event{}, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return Event{}, errors.New("date must be YYYY-MM-DD")
	}

	approved := source == "admin"
	id := uuid.NewString()

	_, err = s.db.Exec(ctx, `
		INSERT INTO events (
			id, title, description, short_description, date, time, end_date, end_time,
			location, venue, address, latitude, longitude,
			age_restrictions, price_info, external_url, image_url,
			category_id, is_approved, source, submitted_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`, id, req.Title, req.Description, req.ShortDescription, date, req.Time,
		nullDate(req.EndDate), nullString(req.EndTime),
		req.Location, req.Venue, req.Address, req.Latitude, req.Longitude,
		req.AgeRestrictions, req.PriceInfo, req.ExternalURL, req.ImageURL,
		req.CategoryID, approved, source, nullString(userID))
	if err != nil {
		return Event{}, err
	}

	row := s.db.QueryRow(ctx, "SELECT"+eventColumns+eventFrom+" WHERE e.id = $1", id)
	return scanEvent(row)
}

func validateSubmit(req SubmitRequest) error {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if req.Date == "" {
		missing = append(missing, "date")
	}
	if req.Time == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(req.Location) == "" {
		missing = append(missing, "location")
	}
	if req.CategoryID == 0 {
		missing = append(missing, "category_id")
	}
	if len(missing) > 0 {
		return errors.New("missing required fields: " + strings.Join(missing, ", "))
	}
	if req.Latitude != nil && req.Longitude != nil && !geo.InSingapore(*req.Latitude, *req.Longitude) {
		return errors.New("coordinates outside Singapore")
	}
	return nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Event, error) {
	row := s.db.QueryRow(ctx, "SELECT"+eventColumns+eventFrom+" WHERE e.id = $1 AND e.is_active", id)
	e, err := scanEvent(row)
	if err != nil {
		return Event{}, ErrNotFound
	}

	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.ShortDescription != nil {
		e.ShortDescription = *req.ShortDescription
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return Event{}, errors.New("date must be YYYY-MM-DD")
		}
		e.Date = date
	}
	if req.Time != nil {
		e.Time = *req.Time
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.Venue != nil {
		e.Venue = *req.Venue
	}
	if req.Address != nil {
		e.Address = *req.Address
	}
	if req.Latitude != nil && req.Longitude != nil {
		if !geo.InSingapore(*req.Latitude, *req.Longitude) {
			return Event{}, errors.New("coordinates outside Singapore")
		}
		e.Latitude, e.Longitude = req.Latitude, req.Longitude
	}
	if req.PriceInfo != nil {
		e.PriceInfo = *req.PriceInfo
	}
	if req.ExternalURL != nil {
		e.ExternalURL = *req.ExternalURL
	}
	if req.ImageURL != nil {
		e.ImageURL = *req.ImageURL
	}
	if req.CategoryID != nil {
		e.CategoryID = *req.CategoryID
	}

	_, err = s.db.Exec(ctx, `
		UPDATE events SET title = $2, description = $3, short_description = $4,
			date = $5, time = $6, location = $7, venue = $8, address = $9,
			latitude = $10, longitude = $11, price_info = $12,
			external_url = $13, image_url = $14, category_id = $15,
			updated_at = now()
		WHERE id = $1
	`, e.ID, e.Title, e.Description, e.ShortDescription,
		e.Date, e.Time, e.Location, e.Venue, e.Address,
		e.Latitude, e.Longitude, e.PriceInfo,
		e.ExternalURL, e.ImageURL, e.CategoryID)
	if err != nil {
		return Event{}, err
	}
	return e, nil
}

// UpdateOwn lets a submitter edit their own event.
func (s *Service) UpdateOwn(ctx context.Context, id, userID string, req UpdateRequest) (Event, error) {
	if err := s.requireOwner(ctx, id, userID); err != nil {
		return Event{}, err
	}
	return s.Update(ctx, id, req)
}

// DeleteOwn lets a submitter withdraw their own event.
func (s *Service) DeleteOwn(ctx context.Context, id, userID string) error {
	if err := s.requireOwner(ctx, id, userID); err != nil {
		return err
	}
	return s.Delete(ctx, id)
}

func (s *Service) requireOwner(ctx context.Context, id, userID string) error {
	var submittedBy *string
	row := s.db.QueryRow(ctx, `SELECT submitted_by FROM events WHERE id = $1 AND is_active`, id)
	if err := row.Scan(&submittedBy); err != nil {
		return ErrNotFound
	}
	if submittedBy == nil || *submittedBy != userID {
		return ErrNotOwner
	}
	return nil
}

// Delete deactivates the event; rows stay for dedup history.
func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `UPDATE events SET is_active = FALSE, updated_at = now() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Approve(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `UPDATE events SET is_approved = TRUE, updated_at = now() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reject deactivates an unapproved event.
func (s *Service) Reject(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE events SET is_active = FALSE, updated_at = now()
		WHERE id = $1 AND is_active AND NOT is_approved
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) SetFeatured(ctx context.Context, id string, featured bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE events SET is_featured = $2, updated_at = now() WHERE id = $1 AND is_active`, id, featured)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Pending lists events awaiting approval, oldest submission first.
func (s *Service) Pending(ctx context.Context) ([]Event, error) {
	return s.collectEvents(ctx, "SELECT"+eventColumns+eventFrom+`
		WHERE e.is_active AND NOT e.is_approved
		ORDER BY e.created_at
	`)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return &d
	}
	return nil
}
