package pg

import (
	"context"
	"fmt"
	"strings"

	"ideora.org/internal/ids"
	"ideora.org/internal/platform"
)

type commentStore Store

const commentColumns = `id, related_id, content, rating, user_id, created_at, updated_at`

func scanComment(row interface{ Scan(...any) error }) (*platform.Comment, error) {
	var c platform.Comment
	err := row.Scan(&c.ID, &c.RelatedID, &c.Content, &c.Rating, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *commentStore) Create(ctx context.Context, c *platform.Comment) error {
	if c.Rating < 0 || c.Rating > 5 {
		return platform.ErrInvalidInput
	}
	if c.ID == "" {
		c.ID = ids.New()
	}
	err := s.db.QueryRowContext(ctx, `
		insert into comments (id, related_id, content, rating, user_id)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, c.ID, c.RelatedID, c.Content, c.Rating, c.UserID).Scan(&c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

func (s *commentStore) Find(ctx context.Context, id string) (*platform.Comment, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from comments where id = $1`, commentColumns), id)
	return scanComment(row)
}

func (s *commentStore) ListByRelated(ctx context.Context, relatedID string, offset, limit int) ([]*platform.Comment, error) {
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select %s from comments
		where related_id = $1
		order by created_at desc, id desc
		limit $2 offset $3
	`, commentColumns), relatedID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*platform.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *commentStore) Update(ctx context.Context, id string, upd platform.CommentUpdate) (*platform.Comment, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	if upd.Content != nil {
		args = append(args, *upd.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if upd.Rating != nil {
		if *upd.Rating < 0 || *upd.Rating > 5 {
			return nil, platform.ErrInvalidInput
		}
		args = append(args, *upd.Rating)
		sets = append(sets, fmt.Sprintf("rating = $%d", len(args)))
	}
	query := fmt.Sprintf(`update comments set %s where id = $1 returning %s`,
		strings.Join(sets, ", "), commentColumns)
	return scanComment(s.db.QueryRowContext(ctx, query, args...))
}

func (s *commentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from comments where id = $1`, id)
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

type attachmentStore Store

func (s *attachmentStore) Create(ctx context.Context, a *platform.Attachment) error {
	if a.ID == "" {
		a.ID = ids.New()
	}
	if a.Kind == "" {
		a.Kind = platform.AttachmentFile
	}
	err := s.db.QueryRowContext(ctx, `
		insert into attachments (id, file_name, file_path, related_id, kind)
		values ($1, $2, $3, $4, $5)
		returning created_at
	`, a.ID, a.FileName, a.FilePath, a.RelatedID, a.Kind).Scan(&a.CreatedAt)
	return translate(err)
}

func (s *attachmentStore) Find(ctx context.Context, id string) (*platform.Attachment, error) {
	var a platform.Attachment
	err := s.db.QueryRowContext(ctx, `
		select id, file_name, file_path, related_id, kind, created_at
		from attachments where id = $1
	`, id).Scan(&a.ID, &a.FileName, &a.FilePath, &a.RelatedID, &a.Kind, &a.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *attachmentStore) ListByRelated(ctx context.Context, relatedID string) ([]*platform.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, file_name, file_path, related_id, kind, created_at
		from attachments where related_id = $1 order by id
	`, relatedID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*platform.Attachment
	for rows.Next() {
		var a platform.Attachment
		if err := rows.Scan(&a.ID, &a.FileName, &a.FilePath, &a.RelatedID, &a.Kind, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *attachmentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from attachments where id = $1`, id)
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
