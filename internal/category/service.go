package category

import (
	"context"
	"errors"
	"strings"

	"github.com/sakthiish12/TodayAtSG/internal/db"
)

var ErrNotFound = errors.New("category not found")

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	SortOrder   int    `json:"sort_order"`
	EventCount  int    `json:"event_count"`
}

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

const categoryColumns = `
	c.id, c.name, c.slug, c.description, c.icon, c.color, c.sort_order,
	(SELECT COUNT(*) FROM events e WHERE e.category_id = c.id AND e.is_approved AND e.is_active AND e.date >= CURRENT_DATE)`

// List returns every category with its upcoming-event count.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	rows, err := s.db.Query(ctx, "SELECT"+categoryColumns+" FROM categories c ORDER BY c.sort_order")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.Color, &c.SortOrder, &c.EventCount); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	row := s.db.QueryRow(ctx, "SELECT"+categoryColumns+" FROM categories c WHERE c.slug = $1", slug)
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.Color, &c.SortOrder, &c.EventCount)
	if err != nil {
		return Category{}, ErrNotFound
	}
	return c, nil
}

type UpsertRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sort_order"`
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return Category{}, errors.New("name is required")
	}
	if req.Slug == "" {
		req.Slug = Slugify(req.Name)
	}

	c := Category{Name: req.Name, Slug: req.Slug, Description: req.Description,
		Icon: req.Icon, Color: req.Color, SortOrder: req.SortOrder}
	row := s.db.QueryRow(ctx, `
		INSERT INTO categories (name, slug, description, icon, color, sort_order)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, c.Name, c.Slug, c.Description, c.Icon, c.Color, c.SortOrder)
	if err := row.Scan(&c.ID); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, slug string, req UpsertRequest) (Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return Category{}, errors.New("name is required")
	}
	if req.Slug == "" {
		req.Slug = slug
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE categories SET name = $2, slug = $3, description = $4, icon = $5, color = $6, sort_order = $7
		WHERE slug = $1
	`, slug, req.Name, req.Slug, req.Description, req.Icon, req.Color, req.SortOrder)
	if err != nil {
		return Category{}, err
	}
	if tag.RowsAffected() == 0 {
		return Category{}, ErrNotFound
	}
	return s.GetBySlug(ctx, req.Slug)
}

// Delete removes a category. The events FK blocks deletion while any
// event still references it.
func (s *Service) Delete(ctx context.Context, slug string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM categories WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Slugify lowercases a name and joins its words with hyphens.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
