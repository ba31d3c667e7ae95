package store

import (
	"sync"

	"recipe-admin/internal/model"
)

type UserStore struct {
	mu    sync.RWMutex
	users []model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: []model.User{}}
}

func (s *UserStore) SetUsers(users []model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = append([]model.User{}, users...)
}

func (s *UserStore) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User{}, s.users...)
}

func (s *UserStore) Get(id string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// Upsert replaces the user with the same id or appends it.
func (s *UserStore) Upsert(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == user.ID {
			s.users[i] = user
			return
		}
	}
	s.users = append(s.users, user)
}

func (s *UserStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.users[:0:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.users = kept
}
