package platform

import (
	"context"
	"errors"
	"testing"
)

func seedStore(t *testing.T) (*MemoryStore, *Theme) {
	t.Helper()
	store := NewMemoryStore()
	theme := store.SeedTheme(Theme{Name: "fintech", PSRValue: 3.2})
	return store, theme
}

func TestIdeationLifecycle(t *testing.T) {
	ctx := context.Background()
	store, theme := seedStore(t)

	it := &Ideation{Title: "solar micro-grid", Content: "pitch", ThemeID: theme.ID, UserID: "u1"}
	if err := store.Ideations().Create(ctx, it); err != nil {
		t.Fatalf("create: %v", err)
	}
	if it.ID == "" {
		t.Fatal("expected generated id")
	}
	if it.Status != StatusBeforeStart {
		t.Fatalf("status = %q, want %q", it.Status, StatusBeforeStart)
	}

	title := "solar micro-grid v2"
	status := StatusInProgress
	got, err := store.Ideations().Update(ctx, it.ID, IdeationUpdate{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != title || got.Status != StatusInProgress {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.UserID != "u1" {
		t.Fatalf("owner changed by update: %q", got.UserID)
	}

	if err := store.Ideations().Delete(ctx, it.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Ideations().Find(ctx, it.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("find after delete: %v, want ErrNotFound", err)
	}
}

func TestIdeationCreateUnknownTheme(t *testing.T) {
	store := NewMemoryStore()
	err := store.Ideations().Create(context.Background(), &Ideation{Title: "x", ThemeID: "missing", UserID: "u1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestIdeationViewCountSkipsOwner(t *testing.T) {
	ctx := context.Background()
	store, theme := seedStore(t)
	it := &Ideation{Title: "t", ThemeID: theme.ID, UserID: "owner"}
	if err := store.Ideations().Create(ctx, it); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Ideations().IncrementViewCount(ctx, it.ID, "owner"); err != nil {
		t.Fatalf("owner view: %v", err)
	}
	if err := store.Ideations().IncrementViewCount(ctx, it.ID, "visitor"); err != nil {
		t.Fatalf("visitor view: %v", err)
	}

	got, err := store.Ideations().Find(ctx, it.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("view count = %d, want 1", got.ViewCount)
	}
}

func TestListGroupedByThemeWindows(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	themeA := store.SeedTheme(Theme{Name: "agritech"})
	themeB := store.SeedTheme(Theme{Name: "biotech"})

	for i := 0; i < 3; i++ {
		if err := store.Ideations().Create(ctx, &Ideation{Title: "a", ThemeID: themeA.ID, UserID: "u1"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := store.Ideations().Create(ctx, &Ideation{Title: "b", ThemeID: themeB.ID, UserID: "u1"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	groups, err := store.Ideations().ListGroupedByTheme(ctx, "", 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if got := len(groups[0].Ideations); got != 2 {
		t.Fatalf("agritech window = %d, want 2", got)
	}
	if got := len(groups[1].Ideations); got != 1 {
		t.Fatalf("biotech window = %d, want 1", got)
	}

	only, err := store.Ideations().ListGroupedByTheme(ctx, themeB.ID, 0, 10)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(only) != 1 || only[0].Theme.ID != themeB.ID {
		t.Fatalf("filtered list returned %d groups", len(only))
	}

	if _, err := store.Ideations().ListGroupedByTheme(ctx, "missing", 0, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown theme: %v, want ErrNotFound", err)
	}
}

func TestInvestmentCountTracking(t *testing.T) {
	ctx := context.Background()
	store, theme := seedStore(t)
	it := &Ideation{Title: "t", ThemeID: theme.ID, UserID: "u1"}
	if err := store.Ideations().Create(ctx, it); err != nil {
		t.Fatalf("create ideation: %v", err)
	}
	company := &Investor{Name: "Acme Capital"}
	if err := store.Investors().Create(ctx, company); err != nil {
		t.Fatalf("create investor: %v", err)
	}

	inv := &Investment{IdeationID: it.ID, InvestorID: company.ID, Amount: 5000}
	if err := store.Investments().Create(ctx, inv); err != nil {
		t.Fatalf("create investment: %v", err)
	}
	got, _ := store.Investors().Find(ctx, company.ID)
	if got.InvestmentCount != 1 {
		t.Fatalf("investment count = %d, want 1", got.InvestmentCount)
	}

	if err := store.Investments().Delete(ctx, inv.ID); err != nil {
		t.Fatalf("delete investment: %v", err)
	}
	got, _ = store.Investors().Find(ctx, company.ID)
	if got.InvestmentCount != 0 {
		t.Fatalf("investment count = %d, want 0", got.InvestmentCount)
	}
}

func TestInvestmentRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	store, theme := seedStore(t)
	it := &Ideation{Title: "t", ThemeID: theme.ID, UserID: "u1"}
	if err := store.Ideations().Create(ctx, it); err != nil {
		t.Fatalf("create ideation: %v", err)
	}
	err := store.Investments().Create(ctx, &Investment{IdeationID: it.ID, InvestorID: "g1", Amount: 0})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestFinancialOnePerIdeation(t *testing.T) {
	ctx := context.Background()
	store, theme := seedStore(t)
	it := &Ideation{Title: "t", ThemeID: theme.ID, UserID: "u1"}
	if err := store.Ideations().Create(ctx, it); err != nil {
		t.Fatalf("create ideation: %v", err)
	}

	first := &Financial{IdeationID: it.ID, SalePrice: 9.99}
	if err := store.Financials().Create(ctx, first); err != nil {
		t.Fatalf("create financial: %v", err)
	}
	err := store.Financials().Create(ctx, &Financial{IdeationID: it.ID})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second create: %v, want ErrConflict", err)
	}

	next := &Financial{SalePrice: 19.99, TradeCounts: []int64{10, 20}}
	got, err := store.Financials().Update(ctx, it.ID, next)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != first.ID || got.SalePrice != 19.99 {
		t.Fatalf("update result: %+v", got)
	}
}

func TestChatRoomHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	room := &ChatRoom{UserIDs: []string{"u1", "u2"}}
	if err := store.Chats().CreateRoom(ctx, room); err != nil {
		t.Fatalf("create room: %v", err)
	}

	for i := 0; i < 3; i++ {
		msg := &ChatMessage{RoomID: room.ID, UserID: "u1", UserName: "alice", Body: "hi"}
		if err := store.Chats().AppendMessage(ctx, msg); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	hist, err := store.Chats().History(ctx, room.ID, 1, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history len = %d, want 2", len(hist))
	}

	rooms, err := store.Chats().ListRoomsByUser(ctx, "u2")
	if err != nil || len(rooms) != 1 {
		t.Fatalf("rooms for u2 = %d (%v), want 1", len(rooms), err)
	}
	if rooms, _ := store.Chats().ListRoomsByUser(ctx, "stranger"); len(rooms) != 0 {
		t.Fatalf("stranger sees %d rooms", len(rooms))
	}

	if err := store.Chats().DeleteRoom(ctx, room.ID); err != nil {
		t.Fatalf("delete room: %v", err)
	}
	if _, err := store.Chats().History(ctx, room.ID, 0, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("history after delete: %v, want ErrNotFound", err)
	}

	if err := store.Chats().CreateRoom(ctx, &ChatRoom{UserIDs: []string{"solo"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("single-member room: %v, want ErrInvalidInput", err)
	}
}
