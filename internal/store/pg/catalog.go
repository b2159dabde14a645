package pg

import (
	"context"

	"ideora.org/internal/ids"
	"ideora.org/internal/platform"
)

type themeStore Store

func (s *themeStore) Find(ctx context.Context, id string) (*platform.Theme, error) {
	var t platform.Theme
	err := s.db.QueryRowContext(ctx, `
		select id, name, image, description, psr_value, created_at
		from themes where id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Image, &t.Description, &t.PSRValue, &t.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *themeStore) List(ctx context.Context) ([]*platform.Theme, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, image, description, psr_value, created_at
		from themes order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*platform.Theme
	for rows.Next() {
		var t platform.Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.Image, &t.Description, &t.PSRValue, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

type newsStore Store

func (s *newsStore) Create(ctx context.Context, n *platform.News) error {
	if n.ID == "" {
		n.ID = ids.New()
	}
	err := s.db.QueryRowContext(ctx, `
		insert into news (id, title, content, image)
		values ($1, $2, $3, $4)
		returning created_at
	`, n.ID, n.Title, n.Content, n.Image).Scan(&n.CreatedAt)
	return translate(err)
}

func (s *newsStore) Find(ctx context.Context, id string) (*platform.News, error) {
	var n platform.News
	err := s.db.QueryRowContext(ctx, `
		select id, title, content, image, created_at from news where id = $1
	`, id).Scan(&n.ID, &n.Title, &n.Content, &n.Image, &n.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (s *newsStore) List(ctx context.Context, offset, limit int) ([]*platform.News, error) {
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, title, content, image, created_at
		from news order by created_at desc limit $1 offset $2
	`, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*platform.News
	for rows.Next() {
		var n platform.News
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Image, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}
