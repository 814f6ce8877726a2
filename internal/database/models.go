package database

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Resolver hands request-time code a database handle for a domain.
type Resolver interface {
	DB(ctx context.Context, domain Domain) (*gorm.DB, error)
}

// Handle is a domain database whose schema has been defined.
type Handle struct {
	Domain     Domain
	DB         *gorm.DB
	Generation uint64
}

// Models memoizes one Handle per domain. The schema of a domain is defined
// once per connection; a handle is rebuilt only after the registry drops
// the connection it was built on.
type Models struct {
	registry *Registry
	schemas  map[Domain][]any
	eager    map[Domain]bool

	mu      sync.RWMutex
	handles map[Domain]*Handle
	group   singleflight.Group

	define func(db *gorm.DB, models ...any) error
}

func NewModels(registry *Registry, eager ...Domain) *Models {
	m := &Models{
		registry: registry,
		schemas:  Schemas,
		eager:    make(map[Domain]bool, len(eager)),
		handles:  make(map[Domain]*Handle),
		define: func(db *gorm.DB, models ...any) error {
			return db.AutoMigrate(models...)
		},
	}
	for _, d := range eager {
		m.eager[d] = true
	}
	registry.OnDisconnect(m.invalidate)
	return m
}

// Get returns the handle for domain, acquiring the connection and defining
// the schema on first use.
func (m *Models) Get(ctx context.Context, domain Domain) (*Handle, error) {
	if h := m.cached(domain); h != nil {
		return h, nil
	}

	v, err, _ := m.group.Do(string(domain), func() (any, error) {
		if h := m.cached(domain); h != nil {
			return h, nil
		}

		models, ok := m.schemas[domain]
		if !ok {
			return nil, fmt.Errorf("no schema registered for domain %q", domain)
		}

		conn, err := m.registry.Acquire(ctx, domain)
		if err != nil {
			return nil, err
		}

		if err := m.define(conn.DB, models...); err != nil {
			return nil, fmt.Errorf("failed to define %s schema: %w", domain, err)
		}

		h := &Handle{Domain: domain, DB: conn.DB, Generation: conn.Generation}
		m.mu.Lock()
		m.handles[domain] = h
		m.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// DB implements Resolver. Eager domains fail fast with ErrNotConnected when
// their connection is gone; lazy domains connect on demand.
func (m *Models) DB(ctx context.Context, domain Domain) (*gorm.DB, error) {
	if h := m.cached(domain); h != nil {
		return h.DB.WithContext(ctx), nil
	}
	if m.eager[domain] {
		if _, err := m.registry.Get(domain); err != nil {
			return nil, err
		}
	}
	h, err := m.Get(ctx, domain)
	if err != nil {
		return nil, err
	}
	return h.DB.WithContext(ctx), nil
}

func (m *Models) cached(domain Domain) *Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handles[domain]
}

func (m *Models) invalidate(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.handles[conn.Domain]; ok && h.Generation == conn.Generation {
		delete(m.handles, conn.Domain)
	}
}
