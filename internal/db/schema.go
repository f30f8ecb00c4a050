package db

import "context"

// Schema statements run at API startup. CREATE IF NOT EXISTS keeps them
// safe to re-run; ordering matters for the foreign keys.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		is_event_organizer BOOLEAN NOT NULL DEFAULT FALSE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		preferred_lat DOUBLE PRECISION,
		preferred_lng DOUBLE PRECISION,
		preferred_search_radius_km INT NOT NULL DEFAULT 10,
		last_login TIMESTAMPTZ,
		login_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		slug TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		sort_order INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		short_description VARCHAR(500) NOT NULL DEFAULT '',
		date DATE NOT NULL,
		time TIME NOT NULL,
		end_date DATE,
		end_time TIME,
		location VARCHAR(255) NOT NULL,
		venue VARCHAR(255) NOT NULL DEFAULT '',
		address VARCHAR(500) NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		age_restrictions VARCHAR(50) NOT NULL DEFAULT '',
		price_info VARCHAR(200) NOT NULL DEFAULT '',
		external_url VARCHAR(500) NOT NULL DEFAULT '',
		image_url VARCHAR(500) NOT NULL DEFAULT '',
		category_id INT NOT NULL REFERENCES categories(id),
		is_approved BOOLEAN NOT NULL DEFAULT FALSE,
		is_featured BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		source VARCHAR(100) NOT NULL DEFAULT 'user_submission',
		submitted_by UUID REFERENCES users(id),
		scraped_from VARCHAR(100),
		external_id VARCHAR(100),
		last_scraped TIMESTAMPTZ,
		view_count INT NOT NULL DEFAULT 0,
		click_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT events_source_check CHECK (source IN ('user_submission','scraped','admin'))
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS events_scrape_key ON events (scraped_from, external_id)
		WHERE scraped_from IS NOT NULL AND external_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS events_date_idx ON events (date)`,
	`CREATE INDEX IF NOT EXISTS events_latlng_idx ON events (latitude, longitude)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id SERIAL PRIMARY KEY,
		name VARCHAR(50) UNIQUE NOT NULL,
		slug VARCHAR(50) UNIQUE NOT NULL,
		color TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS event_tags (
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		tag_id INT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (event_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		event_id UUID REFERENCES events(id),
		provider_intent_id TEXT UNIQUE NOT NULL,
		amount_cents INT NOT NULL CHECK (amount_cents >= 0),
		currency TEXT NOT NULL DEFAULT 'SGD',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT payments_status_check CHECK (status IN ('pending','succeeded','failed','waived'))
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		is_reported BOOLEAN NOT NULL DEFAULT FALSE,
		report_count INT NOT NULL DEFAULT 0 CHECK (report_count >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT unique_user_event_review UNIQUE (user_id, event_id)
	)`,
}

// The fixed category set. Seeded once; ON CONFLICT keeps restarts quiet.
var seedCategories = []struct {
	Name string
	Slug string
	Sort int
}{
	{"Concerts", "concerts", 1},
	{"Sports", "sports", 2},
	{"Festivals", "festivals", 3},
	{"Exhibitions", "exhibitions", 4},
	{"Workshops", "workshops", 5},
	{"Family", "family", 6},
	{"Food & Drink", "food", 7},
	{"Nightlife", "nightlife", 8},
	{"Theatre", "theatre", 9},
	{"Business", "business", 10},
	{"General", "general", 11},
}

func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	for _, c := range seedCategories {
		_, err := q.Exec(ctx, `
			INSERT INTO categories (name, slug, sort_order)
			VALUES ($1,$2,$3)
			ON CONFLICT (slug) DO NOTHING
		`, c.Name, c.Slug, c.Sort)
		if err != nil {
			return err
		}
	}
	return nil
}
