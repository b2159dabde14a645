package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ideora.org/internal/auth"
	"ideora.org/internal/ids"
)

// UserStore exposes the users table to the auth subsystem.
type UserStore struct {
	db *sql.DB
}

var _ auth.UserStore = (*UserStore)(nil)

// Users returns the auth-facing view of the users table.
func (s *Store) Users() *UserStore { return &UserStore{db: s.db} }

const userColumns = `id, name, email, password_hash, role, coalesce(group_id, ''), coalesce(investor_id, ''), disabled, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.GroupID, &u.InvestorID, &u.Disabled, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *auth.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into users (id, name, email, password_hash, role, group_id, investor_id)
		values ($1, $2, $3, $4, $5, nullif($6, ''), nullif($7, ''))
		returning created_at, updated_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.GroupID, u.InvestorID)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.ErrConflict
		}
		return err
	}
	return nil
}

func (s *UserStore) Find(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from users where id = $1`, userColumns), id)
	return scanUser(row)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from users where email = $1`, userColumns), email)
	return scanUser(row)
}

func (s *UserStore) List(ctx context.Context, offset, limit int) ([]*auth.User, error) {
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select %s from users order by id limit $1 offset $2`, userColumns),
		clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *UserStore) Update(ctx context.Context, id string, upd auth.UserUpdate) (*auth.User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, auth.ErrInvalidInput
		}
		add("role", *upd.Role)
	}
	if upd.GroupID != nil {
		add("group_id", sql.NullString{String: *upd.GroupID, Valid: *upd.GroupID != ""})
	}
	if upd.InvestorID != nil {
		add("investor_id", sql.NullString{String: *upd.InvestorID, Valid: *upd.InvestorID != ""})
	}

	query := fmt.Sprintf(`update users set %s where id = $1 returning %s`,
		strings.Join(sets, ", "), userColumns)
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return nil, auth.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (s *UserStore) SetDisabled(ctx context.Context, id string, disabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`update users set disabled = $2, updated_at = now() where id = $1`, id, disabled)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return auth.ErrNotFound
	}
	return nil
}
