package tag

import (
	"context"
	"errors"
	"strings"

	"github.com/sakthiish12/TodayAtSG/internal/db"
)

var ErrNotFound = errors.New("tag not found")

type Tag struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Color      string `json:"color,omitempty"`
	EventCount int    `json:"event_count"`
}

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

// List returns tags ordered by how many live events carry them. A
// non-empty search narrows by name substring.
func (s *Service) List(ctx context.Context, search string, limit int) ([]Tag, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT t.id, t.name, t.slug, t.color, COUNT(et.event_id)
		FROM tags t
		LEFT JOIN event_tags et ON et.tag_id = t.id
		LEFT JOIN events e ON e.id = et.event_id AND e.is_approved AND e.is_active
		WHERE $1 = '' OR t.name ILIKE '%' || $1 || '%'
		GROUP BY t.id, t.name, t.slug, t.color
		ORDER BY COUNT(et.event_id) DESC, t.slug
		LIMIT $2
	`, search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Color, &t.EventCount); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Service) Create(ctx context.Context, name, color string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, errors.New("name is required")
	}

	t := Tag{Name: name, Slug: slugify(name), Color: color}
	row := s.db.QueryRow(ctx, `
		INSERT INTO tags (name, slug, color) VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET color = EXCLUDED.color
		RETURNING id
	`, t.Name, t.Slug, t.Color)
	if err := row.Scan(&t.ID); err != nil {
		return Tag{}, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, slug string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tags WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// EventIDs lists the active, approved events carrying a tag slug.
func (s *Service) EventIDs(ctx context.Context, slug string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT e.id
		FROM events e
		JOIN event_tags et ON et.event_id = e.id
		JOIN tags t ON t.id = et.tag_id
		WHERE t.slug = $1 AND e.is_approved AND e.is_active
		ORDER BY e.date, e.time
	`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
