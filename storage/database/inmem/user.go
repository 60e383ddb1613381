// Package inmem implements the domain repositories in memory, for development
// and tests. The optional executor arguments are ignored; there are no
// transactions here.
package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

type userRepo struct {
	mu      sync.RWMutex
	users   map[string]user.User
	parents map[string][]string // parent ID -> student IDs
}

var _ user.Repository = (*userRepo)(nil)

func NewUserRepository() user.Repository {
	return &userRepo{
		users:   make(map[string]user.User),
		parents: make(map[string][]string),
	}
}

func (repo *userRepo) CreateUser(_ context.Context, usr *user.User, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	repo.users[usr.ID] = *usr
	return nil
}

func (repo *userRepo) GetUserByID(_ context.Context, id string, _ ...core.DBExecutor) (user.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if usr, ok := repo.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepo) GetUserByUsername(_ context.Context, uname string, _ ...core.DBExecutor) (user.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, usr := range repo.users {
		if usr.Username == uname {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepo) GetUserByEmail(_ context.Context, email string, _ ...core.DBExecutor) (user.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, usr := range repo.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepo) CountStudents(_ context.Context, _ ...core.DBExecutor) (int, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var count int
	for _, usr := range repo.users {
		if usr.IsStudent() {
			count++
		}
	}
	return count, nil
}

func (repo *userRepo) GetStudents(_ context.Context, _ ...core.DBExecutor) ([]user.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var students []user.User
	for _, usr := range repo.users {
		if usr.IsStudent() {
			students = append(students, usr)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *userRepo) UpdateUser(_ context.Context, usr *user.User, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.users[usr.ID]; !ok {
		return user.ErrNotFound
	}
	repo.users[usr.ID] = *usr
	return nil
}

func (repo *userRepo) LinkParent(_ context.Context, parentID, studentID string, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, id := range repo.parents[parentID] {
		if id == studentID {
			return nil
		}
	}
	repo.parents[parentID] = append(repo.parents[parentID], studentID)
	return nil
}

func (repo *userRepo) GetChildren(_ context.Context, parentID string, _ ...core.DBExecutor) ([]user.User, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var children []user.User
	for _, id := range repo.parents[parentID] {
		if usr, ok := repo.users[id]; ok {
			children = append(children, usr)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}
