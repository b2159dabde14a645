package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"ideora.org/internal/auth"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func TestUserCreate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("insert into users").
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", sqlmock.AnyArg(), auth.RoleUser, "", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u := &auth.User{Name: "alice", Email: "alice@example.com", PasswordHash: "x", Role: auth.RoleUser}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if !u.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", u.CreatedAt, now)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserCreateDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into users").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	u := &auth.User{Name: "alice", Email: "alice@example.com", PasswordHash: "x", Role: auth.RoleUser}
	if err := store.Users().Create(context.Background(), u); !errors.Is(err, auth.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestUserFindByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "group_id", "investor_id",
		"disabled", "created_at", "updated_at",
	}).AddRow("u1", "alice", "alice@example.com", "hash", "user", "g1", "", false, now, now)

	mock.ExpectQuery("select .* from users where email").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	u, err := store.Users().FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.ID != "u1" || u.GroupID != "g1" || u.Disabled {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserFindMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select .* from users where id").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := store.Users().Find(context.Background(), "nope"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUserUpdateBuildsWhitelistedSet(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	role := auth.RoleInvestor

	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "group_id", "investor_id",
		"disabled", "created_at", "updated_at",
	}).AddRow("u1", "alice", "alice@example.com", "hash", "investor", "", "inv1", false, now, now)

	mock.ExpectQuery("update users set updated_at = now\\(\\), role = \\$2, investor_id = \\$3 where id = \\$1 returning").
		WithArgs("u1", role, sqlmock.AnyArg()).
		WillReturnRows(rows)

	investorID := "inv1"
	u, err := store.Users().Update(context.Background(), "u1", auth.UserUpdate{Role: &role, InvestorID: &investorID})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if u.Role != auth.RoleInvestor || u.InvestorID != "inv1" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserUpdateRejectsUnknownRole(t *testing.T) {
	store, _ := newMockStore(t)
	bad := auth.Role("superuser")
	if _, err := store.Users().Update(context.Background(), "u1", auth.UserUpdate{Role: &bad}); !errors.Is(err, auth.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUserSetDisabledMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update users set disabled").
		WithArgs("nope", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Users().SetDisabled(context.Background(), "nope", true); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
