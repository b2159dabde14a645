package platform

import (
	"context"
	"sort"
	"sync"
	"time"

	"ideora.org/internal/ids"
)

// MemoryStore keeps the whole platform dataset in process. It backs
// tests and DSN-less development runs.
type MemoryStore struct {
	mu sync.RWMutex

	themes      map[string]*Theme
	ideations   map[string]*Ideation
	investors   map[string]*Investor
	investments map[string]*Investment
	comments    map[string]*Comment
	attachments map[string]*Attachment
	boards      map[string]*Board
	financials  map[string]*Financial // keyed by ideation ID
	news        map[string]*News
	rooms       map[string]*ChatRoom
	messages    map[string][]*ChatMessage // keyed by room ID

	now func() time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		themes:      make(map[string]*Theme),
		ideations:   make(map[string]*Ideation),
		investors:   make(map[string]*Investor),
		investments: make(map[string]*Investment),
		comments:    make(map[string]*Comment),
		attachments: make(map[string]*Attachment),
		boards:      make(map[string]*Board),
		financials:  make(map[string]*Financial),
		news:        make(map[string]*News),
		rooms:       make(map[string]*ChatRoom),
		messages:    make(map[string][]*ChatMessage),
		now:         time.Now,
	}
}

func (m *MemoryStore) Themes() ThemeStore           { return (*memThemes)(m) }
func (m *MemoryStore) Ideations() IdeationStore     { return (*memIdeations)(m) }
func (m *MemoryStore) Investors() InvestorStore     { return (*memInvestors)(m) }
func (m *MemoryStore) Investments() InvestmentStore { return (*memInvestments)(m) }
func (m *MemoryStore) Comments() CommentStore       { return (*memComments)(m) }
func (m *MemoryStore) Attachments() AttachmentStore { return (*memAttachments)(m) }
func (m *MemoryStore) Boards() BoardStore           { return (*memBoards)(m) }
func (m *MemoryStore) Financials() FinancialStore   { return (*memFinancials)(m) }
func (m *MemoryStore) News() NewsStore              { return (*memNews)(m) }
func (m *MemoryStore) Chats() ChatStore             { return (*memChats)(m) }

// SeedTheme inserts a theme directly; the memory store has no
// migration step to seed the catalogue.
func (m *MemoryStore) SeedTheme(t Theme) *Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = ids.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now().UTC()
	}
	m.themes[t.ID] = &t
	cp := t
	return &cp
}

func clampWindow(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	if limit <= 0 {
		limit = n - offset
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

type memThemes MemoryStore

func (m *memThemes) Find(_ context.Context, id string) (*Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memThemes) List(_ context.Context) ([]*Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Theme, 0, len(m.themes))
	for _, t := range m.themes {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memIdeations MemoryStore

func (m *memIdeations) Create(_ context.Context, it *Ideation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.themes[it.ThemeID]; !ok {
		return ErrInvalidInput
	}
	if it.ID == "" {
		it.ID = ids.New()
	}
	if !it.Status.Valid() {
		it.Status = StatusBeforeStart
	}
	ts := m.now().UTC()
	it.CreatedAt, it.UpdatedAt = ts, ts
	cp := *it
	m.ideations[it.ID] = &cp
	return nil
}

func (m *memIdeations) Find(_ context.Context, id string) (*Ideation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.ideations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memIdeations) ListGroupedByTheme(_ context.Context, themeID string, offset, limit int) ([]*ThemeIdeations, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if themeID != "" {
		if _, ok := m.themes[themeID]; !ok {
			return nil, ErrNotFound
		}
	}
	byTheme := make(map[string][]*Ideation)
	for _, it := range m.ideations {
		if themeID != "" && it.ThemeID != themeID {
			continue
		}
		cp := *it
		byTheme[it.ThemeID] = append(byTheme[it.ThemeID], &cp)
	}
	out := make([]*ThemeIdeations, 0, len(byTheme))
	for _, t := range m.themes {
		if themeID != "" && t.ID != themeID {
			continue
		}
		group := byTheme[t.ID]
		sort.Slice(group, func(i, j int) bool {
			if group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].ID > group[j].ID
			}
			return group[i].CreatedAt.After(group[j].CreatedAt)
		})
		lo, hi := clampWindow(len(group), offset, limit)
		out = append(out, &ThemeIdeations{Theme: *t, Ideations: group[lo:hi]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Theme.Name < out[j].Theme.Name })
	return out, nil
}

func (m *memIdeations) ListByUser(_ context.Context, userID string) ([]*Ideation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Ideation
	for _, it := range m.ideations {
		if it.UserID != userID {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memIdeations) Update(_ context.Context, id string, upd IdeationUpdate) (*Ideation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.ideations[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.ThemeID != nil {
		if _, ok := m.themes[*upd.ThemeID]; !ok {
			return nil, ErrInvalidInput
		}
		it.ThemeID = *upd.ThemeID
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, ErrInvalidInput
		}
		it.Status = *upd.Status
	}
	if upd.Title != nil {
		it.Title = *upd.Title
	}
	if upd.Content != nil {
		it.Content = *upd.Content
	}
	if upd.PresentationURL != nil {
		it.PresentationURL = *upd.PresentationURL
	}
	if upd.PresentationDate != nil {
		it.PresentationDate = upd.PresentationDate
	}
	if upd.CloseDate != nil {
		it.CloseDate = upd.CloseDate
	}
	if upd.InvestmentGoal != nil {
		it.InvestmentGoal = *upd.InvestmentGoal
	}
	if upd.InvestmentTerms != nil {
		it.InvestmentTerms = *upd.InvestmentTerms
	}
	it.UpdatedAt = m.now().UTC()
	cp := *it
	return &cp, nil
}

func (m *memIdeations) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideations[id]; !ok {
		return ErrNotFound
	}
	delete(m.ideations, id)
	return nil
}

func (m *memIdeations) IncrementViewCount(_ context.Context, id, viewerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.ideations[id]
	if !ok {
		return ErrNotFound
	}
	if it.UserID != viewerID {
		it.ViewCount++
	}
	return nil
}

type memInvestors MemoryStore

func (m *memInvestors) Create(_ context.Context, inv *Investor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.investors {
		if other.Name == inv.Name {
			return ErrConflict
		}
	}
	if inv.ID == "" {
		inv.ID = ids.New()
	}
	ts := m.now().UTC()
	inv.CreatedAt, inv.UpdatedAt = ts, ts
	cp := *inv
	m.investors[inv.ID] = &cp
	return nil
}

func (m *memInvestors) Find(_ context.Context, id string) (*Investor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.investors[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memInvestors) List(_ context.Context, offset, limit int) ([]*Investor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Investor, 0, len(m.investors))
	for _, inv := range m.investors {
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	lo, hi := clampWindow(len(out), offset, limit)
	return out[lo:hi], nil
}

func (m *memInvestors) Update(_ context.Context, id string, upd InvestorUpdate) (*Investor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.investors[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		inv.Name = *upd.Name
	}
	if upd.Description != nil {
		inv.Description = *upd.Description
	}
	if upd.Image != nil {
		inv.Image = *upd.Image
	}
	if upd.AssetsUnderManagement != nil {
		inv.AssetsUnderManagement = *upd.AssetsUnderManagement
	}
	inv.UpdatedAt = m.now().UTC()
	cp := *inv
	return &cp, nil
}

func (m *memInvestors) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.investors[id]; !ok {
		return ErrNotFound
	}
	delete(m.investors, id)
	return nil
}

type memInvestments MemoryStore

func (m *memInvestments) Create(_ context.Context, inv *Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideations[inv.IdeationID]; !ok {
		return ErrInvalidInput
	}
	if inv.Amount <= 0 {
		return ErrInvalidInput
	}
	if inv.ID == "" {
		inv.ID = ids.New()
	}
	ts := m.now().UTC()
	inv.CreatedAt, inv.UpdatedAt = ts, ts
	cp := *inv
	m.investments[inv.ID] = &cp
	if c, ok := m.investors[inv.InvestorID]; ok {
		c.InvestmentCount++
	}
	return nil
}

func (m *memInvestments) Find(_ context.Context, id string) (*Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.investments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memInvestments) ListByIdeation(_ context.Context, ideationID string) ([]*Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Investment
	for _, inv := range m.investments {
		if inv.IdeationID != ideationID {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memInvestments) Update(_ context.Context, id string, upd InvestmentUpdate) (*Investment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.investments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Amount != nil {
		if *upd.Amount <= 0 {
			return nil, ErrInvalidInput
		}
		inv.Amount = *upd.Amount
	}
	if upd.Approved != nil {
		inv.Approved = *upd.Approved
	}
	inv.UpdatedAt = m.now().UTC()
	cp := *inv
	return &cp, nil
}

func (m *memInvestments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.investments[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.investments, id)
	if c, ok := m.investors[inv.InvestorID]; ok && c.InvestmentCount > 0 {
		c.InvestmentCount--
	}
	return nil
}

type memComments MemoryStore

func (m *memComments) Create(_ context.Context, c *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Rating < 0 || c.Rating > 5 {
		return ErrInvalidInput
	}
	if c.ID == "" {
		c.ID = ids.New()
	}
	ts := m.now().UTC()
	c.CreatedAt, c.UpdatedAt = ts, ts
	cp := *c
	m.comments[c.ID] = &cp
	return nil
}

func (m *memComments) Find(_ context.Context, id string) (*Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memComments) ListByRelated(_ context.Context, relatedID string, offset, limit int) ([]*Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Comment
	for _, c := range m.comments {
		if c.RelatedID != relatedID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	lo, hi := clampWindow(len(out), offset, limit)
	return out[lo:hi], nil
}

func (m *memComments) Update(_ context.Context, id string, upd CommentUpdate) (*Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Rating != nil {
		if *upd.Rating < 0 || *upd.Rating > 5 {
			return nil, ErrInvalidInput
		}
		c.Rating = *upd.Rating
	}
	if upd.Content != nil {
		c.Content = *upd.Content
	}
	c.UpdatedAt = m.now().UTC()
	cp := *c
	return &cp, nil
}

func (m *memComments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

type memAttachments MemoryStore

func (m *memAttachments) Create(_ context.Context, a *Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = ids.New()
	}
	a.CreatedAt = m.now().UTC()
	cp := *a
	m.attachments[a.ID] = &cp
	return nil
}

func (m *memAttachments) Find(_ context.Context, id string) (*Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attachments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAttachments) ListByRelated(_ context.Context, relatedID string) ([]*Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Attachment
	for _, a := range m.attachments {
		if a.RelatedID != relatedID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAttachments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attachments[id]; !ok {
		return ErrNotFound
	}
	delete(m.attachments, id)
	return nil
}

type memBoards MemoryStore

func (m *memBoards) Create(_ context.Context, b *Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = ids.New()
	}
	ts := m.now().UTC()
	b.CreatedAt, b.UpdatedAt = ts, ts
	cp := *b
	m.boards[b.ID] = &cp
	return nil
}

func (m *memBoards) Find(_ context.Context, id string) (*Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBoards) List(_ context.Context, category BoardCategory, offset, limit int) ([]*Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Board
	for _, b := range m.boards {
		if category != "" && b.Category != category {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	lo, hi := clampWindow(len(out), offset, limit)
	return out[lo:hi], nil
}

func (m *memBoards) Update(_ context.Context, id string, upd BoardUpdate) (*Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Category != nil {
		b.Category = *upd.Category
	}
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Content != nil {
		b.Content = *upd.Content
	}
	b.UpdatedAt = m.now().UTC()
	cp := *b
	return &cp, nil
}

func (m *memBoards) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[id]; !ok {
		return ErrNotFound
	}
	delete(m.boards, id)
	return nil
}

type memFinancials MemoryStore

func (m *memFinancials) Create(_ context.Context, f *Financial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideations[f.IdeationID]; !ok {
		return ErrInvalidInput
	}
	if _, exists := m.financials[f.IdeationID]; exists {
		return ErrConflict
	}
	if f.ID == "" {
		f.ID = ids.New()
	}
	ts := m.now().UTC()
	f.CreatedAt, f.UpdatedAt = ts, ts
	cp := *f
	m.financials[f.IdeationID] = &cp
	return nil
}

func (m *memFinancials) FindByIdeation(_ context.Context, ideationID string) (*Financial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.financials[ideationID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFinancials) Update(_ context.Context, ideationID string, f *Financial) (*Financial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.financials[ideationID]
	if !ok {
		return nil, ErrNotFound
	}
	next := *f
	next.ID = cur.ID
	next.IdeationID = ideationID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = m.now().UTC()
	m.financials[ideationID] = &next
	cp := next
	return &cp, nil
}

func (m *memFinancials) DeleteByIdeation(_ context.Context, ideationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.financials[ideationID]; !ok {
		return ErrNotFound
	}
	delete(m.financials, ideationID)
	return nil
}

type memNews MemoryStore

func (m *memNews) Create(_ context.Context, n *News) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = ids.New()
	}
	n.CreatedAt = m.now().UTC()
	cp := *n
	m.news[n.ID] = &cp
	return nil
}

func (m *memNews) Find(_ context.Context, id string) (*News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.news[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memNews) List(_ context.Context, offset, limit int) ([]*News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*News, 0, len(m.news))
	for _, n := range m.news {
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	lo, hi := clampWindow(len(out), offset, limit)
	return out[lo:hi], nil
}

type memChats MemoryStore

func (m *memChats) CreateRoom(_ context.Context, room *ChatRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(room.UserIDs) < 2 {
		return ErrInvalidInput
	}
	if room.ID == "" {
		room.ID = ids.New()
	}
	room.CreatedAt = m.now().UTC()
	cp := *room
	cp.UserIDs = append([]string(nil), room.UserIDs...)
	m.rooms[room.ID] = &cp
	return nil
}

func (m *memChats) FindRoom(_ context.Context, id string) (*ChatRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *room
	cp.UserIDs = append([]string(nil), room.UserIDs...)
	return &cp, nil
}

func (m *memChats) ListRoomsByUser(_ context.Context, userID string) ([]*ChatRoom, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*ChatRoom
	for _, room := range m.rooms {
		for _, id := range room.UserIDs {
			if id != userID {
				continue
			}
			cp := *room
			cp.UserIDs = append([]string(nil), room.UserIDs...)
			out = append(out, &cp)
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memChats) DeleteRoom(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(m.rooms, id)
	delete(m.messages, id)
	return nil
}

func (m *memChats) AppendMessage(_ context.Context, msg *ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[msg.RoomID]; !ok {
		return ErrNotFound
	}
	if msg.ID == "" {
		msg.ID = ids.New()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = m.now().UTC()
	}
	cp := *msg
	m.messages[msg.RoomID] = append(m.messages[msg.RoomID], &cp)
	return nil
}

func (m *memChats) History(_ context.Context, roomID string, offset, limit int) ([]*ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.rooms[roomID]; !ok {
		return nil, ErrNotFound
	}
	msgs := m.messages[roomID]
	lo, hi := clampWindow(len(msgs), offset, limit)
	out := make([]*ChatMessage, 0, hi-lo)
	for _, msg := range msgs[lo:hi] {
		cp := *msg
		out = append(out, &cp)
	}
	return out, nil
}
