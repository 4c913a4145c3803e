// internal/identity/identity.go

// Package identity is the thin accessor over the auth layer: a synchronous
// "who is asking" snapshot plus an asynchronous stream of session changes.
// Everything below the handlers consumes identities through this package
// instead of poking at gin context keys or JWT claims.
package identity

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// State is the explicit three-variant session state. Consumers switch
// exhaustively on it instead of null-checking a user pointer.
type State int

const (
	// StateUnresolved: the session has not been inspected yet (auth
	// middleware never ran for this request, or the initial session load
	// has not finished).
	StateUnresolved State = iota
	// StateAnonymous: the session was inspected and there is no user.
	StateAnonymous
	// StateAuthenticated: a user is resolved; UserID is valid.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unresolved"
}

// Snapshot is a point-in-time view of the current identity.
type Snapshot struct {
	State    State
	UserID   uuid.UUID
	Username string
	Email    string
}

// Authenticated reports whether the snapshot carries a resolved user.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// Anonymous is the resolved-but-empty snapshot.
func Anonymous() Snapshot {
	return Snapshot{State: StateAnonymous}
}

// Authenticate builds an authenticated snapshot for the given user.
func Authenticate(userID uuid.UUID, username, email string) Snapshot {
	return Snapshot{
		State:    StateAuthenticated,
		UserID:   userID,
		Username: username,
		Email:    email,
	}
}

const contextKey = "identity_snapshot"

// SetInContext stores the request's resolved snapshot; called by the auth
// middleware only.
func SetInContext(c *gin.Context, s Snapshot) {
	c.Set(contextKey, s)
}

// FromContext returns the per-request snapshot. Requests that never passed
// through the auth middleware come back Unresolved, which callers must treat
// as "not authenticated", never as a user.
func FromContext(c *gin.Context) Snapshot {
	v, exists := c.Get(contextKey)
	if !exists {
		return Snapshot{State: StateUnresolved}
	}
	s, ok := v.(Snapshot)
	if !ok {
		return Snapshot{State: StateUnresolved}
	}
	return s
}

// Broadcaster fans session changes out to subscribers and keeps the latest
// snapshot for synchronous reads. The auth service publishes on login,
// logout and token refresh.
type Broadcaster struct {
	mu      sync.RWMutex
	current Snapshot
	nextID  uint64
	subs    map[uint64]chan Snapshot
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		current: Snapshot{State: StateUnresolved},
		subs:    make(map[uint64]chan Snapshot),
	}
}

// Current returns the latest published snapshot.
func (b *Broadcaster) Current() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Publish records s as current and notifies subscribers. Sends never block:
// a subscriber that is not draining its channel misses updates rather than
// wedging the auth path.
func (b *Broadcaster) Publish(s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = s
	for _, ch := range b.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Subscribe registers a change-stream listener. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan Snapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Snapshot, 8)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
