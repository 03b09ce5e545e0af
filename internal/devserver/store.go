package devserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskroom-cli/internal/model"
)

// memStore holds everything the dev server knows, in memory only. Restarting
// the server loses all of it, which is exactly the contract: the client must
// keep working against a server that never promises durability.
type memStore struct {
	mu       sync.RWMutex
	sessions map[string]string       // token -> username
	tasks    map[string][]model.Task // username -> tasks, insertion order
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		sessions: map[string]string{},
		tasks:    map[string][]model.Task{},
		nextID:   1,
	}
}

// login issues an opaque token for any non-empty username. Verifying
// passwords is real authentication machinery and stays out of the dev server.
func (s *memStore) login(username string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = username
	s.mu.Unlock()
	return token
}

func (s *memStore) authenticate(token string) (string, bool) {
	s.mu.RLock()
	user, ok := s.sessions[token]
	s.mu.RUnlock()
	return user, ok
}

// list returns the user's tasks filtered by a case-insensitive title
// substring, newest first.
func (s *memStore) list(user, search string) []model.Task {
	search = strings.ToLower(strings.TrimSpace(search))
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.tasks[user]))
	for _, t := range s.tasks[user] {
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *memStore) create(user, title, description string, due *model.Date) model.Task {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Task{
		ID:          s.nextID,
		Title:       title,
		Description: description,
		DueDate:     due,
		Status:      model.StatusPending,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	s.nextID++
	s.tasks[user] = append(s.tasks[user], t)
	return t
}

func (s *memStore) update(user string, id int64, mutate func(*model.Task)) (model.Task, bool) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.tasks[user]
	for i := range ts {
		if ts[i].ID == id {
			mutate(&ts[i])
			ts[i].UpdatedAt = &now
			return ts[i], true
		}
	}
	return model.Task{}, false
}

func (s *memStore) delete(user string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.tasks[user]
	for i := range ts {
		if ts[i].ID == id {
			s.tasks[user] = append(ts[:i], ts[i+1:]...)
			return true
		}
	}
	return false
}
