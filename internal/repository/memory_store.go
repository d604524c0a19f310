package repository

// In-process stores with the same contracts as the MySQL repositories.  They
// back STORE_DRIVER=memory for local runs and the HTTP tests.  Each store
// guards its maps with a single RWMutex and hands out copies so callers can
// never mutate stored state without going through Update.

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/fitness-center-listings/internal/model"
)

// MemoryCenterStore implements CenterStore over a map keyed by ID.
type MemoryCenterStore struct {
	mu     sync.RWMutex
	rows   map[uint64]model.FitnessCenter
	nextID uint64
	now    func() time.Time
}

func NewMemoryCenterStore() *MemoryCenterStore {
	return &MemoryCenterStore{
		rows: make(map[uint64]model.FitnessCenter),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryCenterStore) Create(_ context.Context, fc *model.FitnessCenter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTakenLocked(fc.Name, 0) {
		return ErrDuplicateName
	}
	s.nextID++
	now := s.now()
	fc.ID = s.nextID
	fc.CreatedAt = now
	fc.UpdatedAt = now
	s.rows[fc.ID] = *fc
	return nil
}

func (s *MemoryCenterStore) GetByID(_ context.Context, id uint64) (*model.FitnessCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fc, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &fc, nil
}

func (s *MemoryCenterStore) List(_ context.Context, q CenterQuery) ([]*model.FitnessCenter, error) {
	s.mu.RLock()
	out := make([]*model.FitnessCenter, 0, len(s.rows))
	for _, row := range s.rows {
		fc := row
		if q.Matches(&fc) {
			out = append(out, &fc)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return q.Less(out[i], out[j]) })
	return out, nil
}

func (s *MemoryCenterStore) Update(_ context.Context, fc *model.FitnessCenter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[fc.ID]
	if !ok {
		return ErrNotFound
	}
	if s.nameTakenLocked(fc.Name, fc.ID) {
		return ErrDuplicateName
	}
	// owner and created_at are not writable through Update
	fc.OwnerID = cur.OwnerID
	fc.CreatedAt = cur.CreatedAt
	fc.UpdatedAt = s.now()
	s.rows[fc.ID] = *fc
	return nil
}

func (s *MemoryCenterStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryCenterStore) NameExists(_ context.Context, name string, excludeID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameTakenLocked(name, excludeID), nil
}

func (s *MemoryCenterStore) nameTakenLocked(name string, excludeID uint64) bool {
	for id, row := range s.rows {
		if id != excludeID && row.Name == name {
			return true
		}
	}
	return false
}

// MemoryUserStore is the in-process account store.
type MemoryUserStore struct {
	mu     sync.RWMutex
	rows   map[uint64]model.User
	nextID uint64
	now    func() time.Time
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		rows: make(map[uint64]model.User),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = normalizeEmail(u.Email)
	usernameTaken, emailTaken := s.takenLocked(u.Username, u.Email)
	if usernameTaken {
		return ErrDuplicateUsername
	}
	if emailTaken {
		return ErrDuplicateEmail
	}
	s.nextID++
	now := s.now()
	u.ID = s.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	s.rows[u.ID] = *u
	return nil
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.rows {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) Taken(_ context.Context, username, email string) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	usernameTaken, emailTaken := s.takenLocked(username, normalizeEmail(email))
	return usernameTaken, emailTaken, nil
}

func (s *MemoryUserStore) takenLocked(username, email string) (usernameTaken, emailTaken bool) {
	for _, u := range s.rows {
		if u.Username == username {
			usernameTaken = true
		}
		if email != "" && strings.EqualFold(u.Email, email) {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken
}

// MemoryTokenStore keeps refresh token hashes in memory.
type MemoryTokenStore struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
	now  func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		rows: make(map[string]model.RefreshToken),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryTokenStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tokenHash] = model.RefreshToken{
		ID:        uint64(len(s.rows) + 1),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: s.now(),
	}
	return nil
}

func (s *MemoryTokenStore) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[tokenHash]
	if !ok || t.RevokedAt != nil || s.now().After(t.ExpiresAt) {
		return 0, ErrNotFound
	}
	return t.UserID, nil
}

func (s *MemoryTokenStore) RevokeByHash(_ context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[tokenHash]
	if !ok || t.RevokedAt != nil {
		return false, nil
	}
	now := s.now()
	t.RevokedAt = &now
	s.rows[tokenHash] = t
	return true, nil
}
