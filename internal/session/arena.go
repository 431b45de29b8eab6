package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/CyborPunk-2077/article-scraper/internal/domain"
)

// Arena is the process-wide registry of sessions.
type Arena struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new pending session. Ids follow the
// session_<unix-seconds> form; a same-second collision bumps the suffix
// until a free id is found.
func (a *Arena) Create(seedURL string, target int) *Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	unix := now.Unix()
	id := fmt.Sprintf("session_%d", unix)
	for {
		if _, taken := a.sessions[id]; !taken {
			break
		}
		unix++
		id = fmt.Sprintf("session_%d", unix)
	}

	s := newSession(id, seedURL, target, now)
	a.sessions[id] = s
	return s
}

// Adopt returns the registered session for id, or registers a completed
// shell for a session whose artifacts exist in storage but whose scrape ran
// in an earlier process. Stage runs attach to the shell; counters stay zero.
func (a *Arena) Adopt(id string) *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.sessions[id]; ok {
		return s
	}
	s := newSession(id, "", 0, a.now())
	s.status = StatusCompleted
	a.sessions[id] = s
	return s
}

// Get returns the session or ErrSessionNotFound.
func (a *Arena) Get(id string) (*Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	return s, nil
}

// Snapshots returns value copies of every session, newest first.
func (a *Arena) Snapshots() []Snapshot {
	a.mu.RLock()
	sessions := make([]*Session, 0, len(a.sessions))
	for _, s := range a.sessions {
		sessions = append(sessions, s)
	}
	a.mu.RUnlock()

	snapshots := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		snapshots = append(snapshots, s.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].ID > snapshots[j].ID
		}
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots
}

// Len returns the number of registered sessions.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.sessions)
}
