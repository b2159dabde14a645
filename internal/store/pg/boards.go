package pg

import (
	"context"
	"fmt"
	"strings"

	"ideora.org/internal/ids"
	"ideora.org/internal/platform"
)

type boardStore Store

const boardColumns = `id, category, title, content, created_at, updated_at`

func scanBoard(row interface{ Scan(...any) error }) (*platform.Board, error) {
	var b platform.Board
	err := row.Scan(&b.ID, &b.Category, &b.Title, &b.Content, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *boardStore) Create(ctx context.Context, b *platform.Board) error {
	if b.ID == "" {
		b.ID = ids.New()
	}
	if b.Category == "" {
		b.Category = platform.BoardNotice
	}
	err := s.db.QueryRowContext(ctx, `
		insert into boards (id, category, title, content)
		values ($1, $2, $3, $4)
		returning created_at, updated_at
	`, b.ID, b.Category, b.Title, b.Content).Scan(&b.CreatedAt, &b.UpdatedAt)
	return translate(err)
}

func (s *boardStore) Find(ctx context.Context, id string) (*platform.Board, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from boards where id = $1`, boardColumns), id)
	return scanBoard(row)
}

func (s *boardStore) List(ctx context.Context, category platform.BoardCategory, offset, limit int) ([]*platform.Board, error) {
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select %s from boards
		where $1 = '' or category = $1
		order by created_at desc, id desc
		limit $2 offset $3
	`, boardColumns), category, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*platform.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *boardStore) Update(ctx context.Context, id string, upd platform.BoardUpdate) (*platform.Board, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Content != nil {
		add("content", *upd.Content)
	}
	query := fmt.Sprintf(`update boards set %s where id = $1 returning %s`,
		strings.Join(sets, ", "), boardColumns)
	return scanBoard(s.db.QueryRowContext(ctx, query, args...))
}

func (s *boardStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from boards where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return platform.ErrNotFound
	}
	return nil
}
