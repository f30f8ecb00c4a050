package scrape

import (
	"context"

	"github.com/sakthiish12/TodayAtSG/internal/db"

	"github.com/google/uuid"
)

// Writer persists normalized records. Scraped events land unapproved
// and stay hidden from public listings until an admin approves them.
type Writer struct {
	db db.Querier
}

func NewWriter(q db.Querier) *Writer {
	return &Writer{db: q}
}

// Save upserts rec keyed by (scraped_from, external_id) and reports
// whether a new row was inserted. Re-running the same source batch
// touches updated_at and last_scraped but creates nothing new.
func (w *Writer) Save(ctx context.Context, rec Record) (inserted bool, err error) {
	var categoryID int
	err = w.db.QueryRow(ctx, `SELECT id FROM categories WHERE slug = $1`, rec.CategorySlug).Scan(&categoryID)
	if err != nil {
		return false, &PersistenceError{Title: rec.Title, Err: err}
	}

	var eventID string
	err = w.db.QueryRow(ctx, `
		INSERT INTO events (
			id, title, description, short_description,
			date, time, end_date, end_time,
			location, venue, address, latitude, longitude,
			age_restrictions, price_info, external_url, image_url,
			category_id, is_approved, source, scraped_from, external_id, last_scraped
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,FALSE,'scraped',$19,$20,now()
		)
		ON CONFLICT (scraped_from, external_id) WHERE scraped_from IS NOT NULL AND external_id IS NOT NULL
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			short_description = EXCLUDED.short_description,
			date = EXCLUDED.date,
			time = EXCLUDED.time,
			end_date = EXCLUDED.end_date,
			end_time = EXCLUDED.end_time,
			location = EXCLUDED.location,
			venue = EXCLUDED.venue,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			age_restrictions = EXCLUDED.age_restrictions,
			price_info = EXCLUDED.price_info,
			external_url = EXCLUDED.external_url,
			image_url = EXCLUDED.image_url,
			category_id = EXCLUDED.category_id,
			last_scraped = now(),
			updated_at = now()
		RETURNING id, (xmax = 0) AS inserted
	`,
		uuid.NewString(), rec.Title, rec.Description, rec.ShortDescription,
		rec.Date, rec.Time, rec.EndDate, nullIfEmpty(rec.EndTime),
		rec.Location, rec.Venue, rec.Address, rec.Latitude, rec.Longitude,
		rec.AgeRestrictions, rec.PriceInfo, rec.ExternalURL, rec.ImageURL,
		categoryID, rec.Source, rec.ExternalID,
	).Scan(&eventID, &inserted)
	if err != nil {
		return false, &PersistenceError{Title: rec.Title, Err: err}
	}

	if err := w.saveTags(ctx, eventID, rec.Tags); err != nil {
		return inserted, &PersistenceError{Title: rec.Title, Err: err}
	}
	return inserted, nil
}

func (w *Writer) saveTags(ctx context.Context, eventID string, tags []string) error {
	for _, tag := range tags {
		var tagID int
		err := w.db.QueryRow(ctx, `
			INSERT INTO tags (name, slug) VALUES ($1, $1)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, tag).Scan(&tagID)
		if err != nil {
			return err
		}
		_, err = w.db.Exec(ctx, `
			INSERT INTO event_tags (event_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, eventID, tagID)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
