package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"ideora.org/internal/platform"
)

func ideationRows(now time.Time, entries ...[2]string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "content", "theme_id", "presentation_url", "presentation_date",
		"close_date", "status", "user_id", "view_count", "investment_goal",
		"investment_terms", "created_at", "updated_at",
	})
	for _, e := range entries {
		rows.AddRow(e[0], "title", "content", e[1], "", nil, nil, "in_progress", "u1", 0, 0, "", now, now)
	}
	return rows
}

func TestIdeationCreate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("insert into ideations").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	it := &platform.Ideation{Title: "t", ThemeID: "theme1", UserID: "u1"}
	if err := store.Ideations().Create(context.Background(), it); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it.ID == "" {
		t.Fatal("expected generated id")
	}
	if it.Status != platform.StatusBeforeStart {
		t.Fatalf("status = %q", it.Status)
	}
}

func TestListGroupedByTheme(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	themes := sqlmock.NewRows([]string{"id", "name", "image", "description", "psr_value", "created_at"}).
		AddRow("theme1", "agritech", "", "", 2.1, now).
		AddRow("theme2", "biotech", "", "", 4.8, now)
	mock.ExpectQuery("select id, name, image, description, psr_value, created_at\\s+from themes").
		WithArgs("").
		WillReturnRows(themes)

	mock.ExpectQuery("row_number\\(\\) over \\(partition by theme_id").
		WithArgs("", 0, 10).
		WillReturnRows(ideationRows(now, [2]string{"i1", "theme1"}, [2]string{"i2", "theme1"}, [2]string{"i3", "theme2"}))

	groups, err := store.Ideations().ListGroupedByTheme(context.Background(), "", 0, 10)
	if err != nil {
		t.Fatalf("ListGroupedByTheme: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if len(groups[0].Ideations) != 2 || len(groups[1].Ideations) != 1 {
		t.Fatalf("window sizes: %d / %d", len(groups[0].Ideations), len(groups[1].Ideations))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListGroupedByThemeUnknownTheme(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("from themes").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image", "description", "psr_value", "created_at"}))

	_, err := store.Ideations().ListGroupedByTheme(context.Background(), "missing", 0, 10)
	if !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestIncrementViewCountOwnerNoop(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update ideations set view_count").
		WithArgs("i1", "owner").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select 1 from ideations").
		WithArgs("i1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	if err := store.Ideations().IncrementViewCount(context.Background(), "i1", "owner"); err != nil {
		t.Fatalf("IncrementViewCount: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIncrementViewCountMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update ideations set view_count").
		WithArgs("nope", "visitor").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select 1 from ideations").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	err := store.Ideations().IncrementViewCount(context.Background(), "nope", "visitor")
	if !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestIdeationDeleteMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from ideations").
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Ideations().Delete(context.Background(), "nope"); !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
