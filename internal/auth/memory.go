package auth

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ideora.org/internal/ids"
)

// MemoryStore is an in-memory UserStore for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
	byName  map[string]string
}

var _ UserStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
		byName:  make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, u *User) error {
	if u == nil || strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Name) == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := s.byEmail[email]; ok {
		return ErrConflict
	}
	if _, ok := s.byName[u.Name]; ok {
		return ErrConflict
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := *u
	s.byID[u.ID] = &cp
	s.byEmail[email] = u.ID
	s.byName[u.Name] = u.ID
	return nil
}

func (s *MemoryStore) Find(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, offset, limit int) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*User, 0, len(s.byID))
	for _, u := range s.byID {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, upd UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil && *upd.Name != u.Name {
		if _, taken := s.byName[*upd.Name]; taken {
			return nil, ErrConflict
		}
		delete(s.byName, u.Name)
		u.Name = *upd.Name
		s.byName[u.Name] = id
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.GroupID != nil {
		u.GroupID = *upd.GroupID
	}
	if upd.InvestorID != nil {
		u.InvestorID = *upd.InvestorID
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) SetDisabled(_ context.Context, id string, disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Disabled = disabled
	u.UpdatedAt = time.Now().UTC()
	return nil
}
