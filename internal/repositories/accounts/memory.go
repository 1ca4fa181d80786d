package accounts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/models"
)

// MemoryRepository keeps accounts in process memory with the same uniqueness
// rules as the users table. Used by tests and by the "memory" DSN.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byName  map[string]*models.Account
	byEmail map[string]string // lower(email) -> username
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName:  make(map[string]*models.Account),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byName[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byName[username]
	return ok, nil
}

func (r *MemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (r *MemoryRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[a.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	key := strings.ToLower(a.Email)
	if _, ok := r.byEmail[key]; ok {
		return nil, common.ErrorAlreadyExists
	}

	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = r.now().UTC()

	stored := *a
	r.byName[a.Username] = &stored
	r.byEmail[key] = a.Username

	return a, nil
}

func (r *MemoryRepository) Update(ctx context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byName[a.Username]
	if !ok {
		return common.ErrorNotFound
	}

	oldKey := strings.ToLower(cur.Email)
	newKey := strings.ToLower(a.Email)
	if owner, taken := r.byEmail[newKey]; taken && owner != a.Username {
		return common.ErrorAlreadyExists
	}

	updated := *a
	updated.ID = cur.ID
	updated.CreatedAt = cur.CreatedAt

	delete(r.byEmail, oldKey)
	r.byEmail[newKey] = a.Username
	r.byName[a.Username] = &updated

	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Account, 0, len(r.byName))
	for _, a := range r.byName {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (r *MemoryRepository) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.Role]int)
	for _, a := range r.byName {
		counts[models.NormalizeRole(a.Role.String())]++
	}

	return counts, nil
}
