package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests and single-binary
// development runs. Safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
	roles map[uuid.UUID]Role
	// membership maps userID -> roleIDs
	membership map[uuid.UUID][]uuid.UUID
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[uuid.UUID]*User),
		roles:      make(map[uuid.UUID]Role),
		membership: make(map[uuid.UUID][]uuid.UUID),
	}
}

// FindUserByID implements Repository.
func (r *MemoryRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// FindUserByLogin implements Repository.
func (r *MemoryRepository) FindUserByLogin(ctx context.Context, login string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Username, login) || (u.Email != "" && strings.EqualFold(u.Email, login)) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

// InsertUser implements Repository.
func (r *MemoryRepository) InsertUser(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return ErrUsernameTaken
		}
		if user.Email != "" && existing.Email != "" && strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
	}

	r.users[user.ID] = user
	return nil
}

// RolePermissions implements Repository.
func (r *MemoryRepository) RolePermissions(ctx context.Context, userID uuid.UUID) ([]Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roleIDs := r.membership[userID]
	masks := make([]Permission, 0, len(roleIDs))
	for _, id := range roleIDs {
		if role, ok := r.roles[id]; ok {
			masks = append(masks, role.Permissions)
		}
	}
	return masks, nil
}

// AddRole registers a role definition.
func (r *MemoryRepository) AddRole(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role.ID] = role
}

// AssignRole adds the user to a role. Unknown role ids are tolerated and
// simply contribute nothing, matching how the durable store joins.
func (r *MemoryRepository) AssignRole(userID, roleID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.membership[userID] = append(r.membership[userID], roleID)
}
