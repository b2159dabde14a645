// Package pg is the PostgreSQL persistence layer. It uses the pgx
// stdlib driver through database/sql so tests can run against sqlmock.
package pg

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"ideora.org/internal/platform"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Store wraps one connection pool shared by every sub-store.
type Store struct {
	db *sql.DB
}

var _ platform.Store = (*Store)(nil)

// Open dials PostgreSQL with pool defaults suitable for the API.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle; used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Themes() platform.ThemeStore           { return (*themeStore)(s) }
func (s *Store) Ideations() platform.IdeationStore     { return (*ideationStore)(s) }
func (s *Store) Investors() platform.InvestorStore     { return (*investorStore)(s) }
func (s *Store) Investments() platform.InvestmentStore { return (*investmentStore)(s) }
func (s *Store) Comments() platform.CommentStore       { return (*commentStore)(s) }
func (s *Store) Attachments() platform.AttachmentStore { return (*attachmentStore)(s) }
func (s *Store) Boards() platform.BoardStore           { return (*boardStore)(s) }
func (s *Store) Financials() platform.FinancialStore   { return (*financialStore)(s) }
func (s *Store) News() platform.NewsStore              { return (*newsStore)(s) }
func (s *Store) Chats() platform.ChatStore             { return (*chatStore)(s) }

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// translate maps driver-level failures onto domain sentinels.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return platform.ErrNotFound
	}
	if pgErr, ok := maybePgError(err); ok {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return platform.ErrConflict
		case pgErrForeignKeyViolation:
			return platform.ErrInvalidInput
		}
	}
	return err
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 500
	}
	return limit
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
