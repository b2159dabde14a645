package pg

import (
	"context"
	"fmt"
	"strings"

	"ideora.org/internal/ids"
	"ideora.org/internal/platform"
)

type investorStore Store

const investorColumns = `id, name, description, image, assets_under_management, investment_count, created_at, updated_at`

func scanInvestor(row interface{ Scan(...any) error }) (*platform.Investor, error) {
	var inv platform.Investor
	err := row.Scan(&inv.ID, &inv.Name, &inv.Description, &inv.Image,
		&inv.AssetsUnderManagement, &inv.InvestmentCount, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (s *investorStore) Create(ctx context.Context, inv *platform.Investor) error {
	if inv.ID == "" {
		inv.ID = ids.New()
	}
	err := s.db.QueryRowContext(ctx, `
		insert into investors (id, name, description, image, assets_under_management)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, inv.ID, inv.Name, inv.Description, inv.Image, inv.AssetsUnderManagement).
		Scan(&inv.CreatedAt, &inv.UpdatedAt)
	return translate(err)
}

func (s *investorStore) Find(ctx context.Context, id string) (*platform.Investor, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from investors where id = $1`, investorColumns), id)
	return scanInvestor(row)
}

func (s *investorStore) List(ctx context.Context, offset, limit int) ([]*platform.Investor, error) {
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select %s from investors order by id limit $1 offset $2`, investorColumns),
		clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*platform.Investor
	for rows.Next() {
		inv, err := scanInvestor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *investorStore) Update(ctx context.Context, id string, upd platform.InvestorUpdate) (*platform.Investor, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}
	if upd.AssetsUnderManagement != nil {
		add("assets_under_management", *upd.AssetsUnderManagement)
	}
	query := fmt.Sprintf(`update investors set %s where id = $1 returning %s`,
		strings.Join(sets, ", "), investorColumns)
	return scanInvestor(s.db.QueryRowContext(ctx, query, args...))
}

func (s *investorStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from investors where id = $1`, id)
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

type investmentStore Store

const investmentColumns = `id, ideation_id, investor_id, amount, approved, created_at, updated_at`

func scanInvestment(row interface{ Scan(...any) error }) (*platform.Investment, error) {
	var inv platform.Investment
	err := row.Scan(&inv.ID, &inv.IdeationID, &inv.InvestorID, &inv.Amount,
		&inv.Approved, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

// Create records the investment and bumps the investor's counter in
// one transaction.
func (s *investmentStore) Create(ctx context.Context, inv *platform.Investment) error {
	if inv.Amount <= 0 {
		return platform.ErrInvalidInput
	}
	if inv.ID == "" {
		inv.ID = ids.New()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		insert into investments (id, ideation_id, investor_id, amount, approved)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, inv.ID, inv.IdeationID, inv.InvestorID, inv.Amount, inv.Approved).
		Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	if _, err := tx.ExecContext(ctx, `
		update investors set investment_count = investment_count + 1, updated_at = now()
		where id = $1
	`, inv.InvestorID); err != nil {
		return translate(err)
	}
	return tx.Commit()
}

func (s *investmentStore) Find(ctx context.Context, id string) (*platform.Investment, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from investments where id = $1`, investmentColumns), id)
	return scanInvestment(row)
}

func (s *investmentStore) ListByIdeation(ctx context.Context, ideationID string) ([]*platform.Investment, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select %s from investments where ideation_id = $1 order by created_at desc, id desc
	`, investmentColumns), ideationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*platform.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *investmentStore) Update(ctx context.Context, id string, upd platform.InvestmentUpdate) (*platform.Investment, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	if upd.Amount != nil {
		if *upd.Amount <= 0 {
			return nil, platform.ErrInvalidInput
		}
		args = append(args, *upd.Amount)
		sets = append(sets, fmt.Sprintf("amount = $%d", len(args)))
	}
	if upd.Approved != nil {
		args = append(args, *upd.Approved)
		sets = append(sets, fmt.Sprintf("approved = $%d", len(args)))
	}
	query := fmt.Sprintf(`update investments set %s where id = $1 returning %s`,
		strings.Join(sets, ", "), investmentColumns)
	return scanInvestment(s.db.QueryRowContext(ctx, query, args...))
}

// Delete removes the record and decrements the investor's counter in
// one transaction.
func (s *investmentStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var investorID string
	err = tx.QueryRowContext(ctx, `delete from investments where id = $1 returning investor_id`, id).
		Scan(&investorID)
	if err != nil {
		return translate(err)
	}
	if _, err := tx.ExecContext(ctx, `
		update investors
		set investment_count = greatest(investment_count - 1, 0), updated_at = now()
		where id = $1
	`, investorID); err != nil {
		return err
	}
	return tx.Commit()
}
