package services

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"kingdavid/internal/store"
)

// Registry hands out one AdminCatalog per admin session id. Idle sessions
// expire after ttl and the oldest are evicted past size.
type Registry struct {
	store store.Store

	mu       sync.Mutex
	sessions *expirable.LRU[string, *AdminCatalog]
}

func NewRegistry(st store.Store, size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = 64
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		store:    st,
		sessions: expirable.NewLRU[string, *AdminCatalog](size, nil, ttl),
	}
}

// Session returns the controller for sid, creating it on first use.
// Each call refreshes the idle timer.
func (r *Registry) Session(sid string) *AdminCatalog {
	r.mu.Lock()
	defer r.mu.Unlock()
	ac, ok := r.sessions.Get(sid)
	if !ok {
		ac = NewAdminCatalog(r.store)
	}
	r.sessions.Add(sid, ac)
	return ac
}

func (r *Registry) Forget(sid string) { r.sessions.Remove(sid) }

func (r *Registry) Len() int { return r.sessions.Len() }
