package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ideora.org/internal/ids"
	"ideora.org/internal/platform"
)

type ideationStore Store

const ideationColumns = `id, title, content, theme_id, presentation_url, presentation_date, close_date, status, user_id, view_count, investment_goal, investment_terms, created_at, updated_at`

func scanIdeation(row interface{ Scan(...any) error }) (*platform.Ideation, error) {
	var (
		it               platform.Ideation
		presentationDate sql.NullTime
		closeDate        sql.NullTime
	)
	err := row.Scan(&it.ID, &it.Title, &it.Content, &it.ThemeID, &it.PresentationURL,
		&presentationDate, &closeDate, &it.Status, &it.UserID, &it.ViewCount,
		&it.InvestmentGoal, &it.InvestmentTerms, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	it.PresentationDate = timePtr(presentationDate)
	it.CloseDate = timePtr(closeDate)
	return &it, nil
}

func (s *ideationStore) Create(ctx context.Context, it *platform.Ideation) error {
	if it.ID == "" {
		it.ID = ids.New()
	}
	if !it.Status.Valid() {
		it.Status = platform.StatusBeforeStart
	}
	err := s.db.QueryRowContext(ctx, `
		insert into ideations (id, title, content, theme_id, presentation_url,
			presentation_date, close_date, status, user_id, investment_goal, investment_terms)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		returning created_at, updated_at
	`, it.ID, it.Title, it.Content, it.ThemeID, it.PresentationURL,
		nullTime(it.PresentationDate), nullTime(it.CloseDate), it.Status,
		it.UserID, it.InvestmentGoal, it.InvestmentTerms).
		Scan(&it.CreatedAt, &it.UpdatedAt)
	return translate(err)
}

func (s *ideationStore) Find(ctx context.Context, id string) (*platform.Ideation, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from ideations where id = $1`, ideationColumns), id)
	return scanIdeation(row)
}

// ListGroupedByTheme pages through ideations per theme using a window
// function so one query covers every group.
func (s *ideationStore) ListGroupedByTheme(ctx context.Context, themeID string, offset, limit int) ([]*platform.ThemeIdeations, error) {
	if offset < 0 {
		offset = 0
	}
	limit = clampLimit(limit)

	themeRows, err := s.db.QueryContext(ctx, `
		select id, name, image, description, psr_value, created_at
		from themes
		where $1 = '' or id = $1
		order by name
	`, themeID)
	if err != nil {
		return nil, err
	}
	defer themeRows.Close()

	var out []*platform.ThemeIdeations
	index := make(map[string]*platform.ThemeIdeations)
	for themeRows.Next() {
		var t platform.Theme
		if err := themeRows.Scan(&t.ID, &t.Name, &t.Image, &t.Description, &t.PSRValue, &t.CreatedAt); err != nil {
			return nil, err
		}
		group := &platform.ThemeIdeations{Theme: t, Ideations: []*platform.Ideation{}}
		out = append(out, group)
		index[t.ID] = group
	}
	if err := themeRows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		if themeID != "" {
			return nil, platform.ErrNotFound
		}
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select %s from (
			select %s,
				row_number() over (partition by theme_id order by created_at desc, id desc) as rn
			from ideations
			where $1 = '' or theme_id = $1
		) ranked
		where rn > $2 and rn <= $3
		order by theme_id, rn
	`, ideationColumns, ideationColumns), themeID, offset, offset+limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanIdeation(rows)
		if err != nil {
			return nil, err
		}
		if group, ok := index[it.ThemeID]; ok {
			group.Ideations = append(group.Ideations, it)
		}
	}
	return out, rows.Err()
}

func (s *ideationStore) ListByUser(ctx context.Context, userID string) ([]*platform.Ideation, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select %s from ideations where user_id = $1 order by created_at desc`, ideationColumns),
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*platform.Ideation
	for rows.Next() {
		it, err := scanIdeation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *ideationStore) Update(ctx context.Context, id string, upd platform.IdeationUpdate) (*platform.Ideation, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Content != nil {
		add("content", *upd.Content)
	}
	if upd.ThemeID != nil {
		add("theme_id", *upd.ThemeID)
	}
	if upd.PresentationURL != nil {
		add("presentation_url", *upd.PresentationURL)
	}
	if upd.PresentationDate != nil {
		add("presentation_date", *upd.PresentationDate)
	}
	if upd.CloseDate != nil {
		add("close_date", *upd.CloseDate)
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, platform.ErrInvalidInput
		}
		add("status", *upd.Status)
	}
	if upd.InvestmentGoal != nil {
		add("investment_goal", *upd.InvestmentGoal)
	}
	if upd.InvestmentTerms != nil {
		add("investment_terms", *upd.InvestmentTerms)
	}

	query := fmt.Sprintf(`update ideations set %s where id = $1 returning %s`,
		strings.Join(sets, ", "), ideationColumns)
	return scanIdeation(s.db.QueryRowContext(ctx, query, args...))
}

func (s *ideationStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from ideations where id = $1`, id)
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

func (s *ideationStore) IncrementViewCount(ctx context.Context, id, viewerID string) error {
	res, err := s.db.ExecContext(ctx, `
		update ideations set view_count = view_count + 1
		where id = $1 and user_id <> $2
	`, id, viewerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the row is missing or the viewer owns it; only the
		// former is an error.
		var exists int
		err := s.db.QueryRowContext(ctx, `select 1 from ideations where id = $1`, id).Scan(&exists)
		return translate(err)
	}
	return nil
}
