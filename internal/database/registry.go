package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/logging"
)

type ConnState int32

const (
	StateUninitialized ConnState = iota
	StateConnecting
	StateReady
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateDisconnected:
		return "disconnected"
	default:
		return "uninitialized"
	}
}

// Connection is the live handle for one domain database.
type Connection struct {
	Domain      Domain
	DB          *gorm.DB
	Generation  uint64
	ConnectedAt time.Time
}

// DisconnectObserver is told when a domain's cached connection is dropped.
type DisconnectObserver func(conn *Connection)

// Registry owns at most one live connection per domain. Acquire connects on
// demand, Get only hands out what is already connected.
type Registry struct {
	addresses map[Domain]string
	open      Opener

	mu     sync.RWMutex
	conns  map[Domain]*Connection
	states map[Domain]ConnState

	group      singleflight.Group
	generation atomic.Uint64

	observersMu sync.RWMutex
	observers   []DisconnectObserver
}

type Option func(*Registry)

func WithOpener(open Opener) Option {
	return func(r *Registry) {
		r.open = open
	}
}

func NewRegistry(addresses map[Domain]string, opts ...Option) *Registry {
	r := &Registry{
		addresses: addresses,
		open:      SQLiteOpener(0, false),
		conns:     make(map[Domain]*Connection),
		states:    make(map[Domain]ConnState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Domains returns every configured domain.
func (r *Registry) Domains() []Domain {
	domains := make([]Domain, 0, len(r.addresses))
	for _, d := range append(append([]Domain{}, EagerDomains...), LazyDomains...) {
		if _, ok := r.addresses[d]; ok {
			domains = append(domains, d)
		}
	}
	return domains
}

// OnDisconnect registers an observer for dropped connections.
func (r *Registry) OnDisconnect(fn DisconnectObserver) {
	r.observersMu.Lock()
	defer r.observersMu.Unlock()
	r.observers = append(r.observers, fn)
}

// Acquire returns the ready connection for domain, opening it first if
// needed. Concurrent callers share a single connection attempt.
func (r *Registry) Acquire(ctx context.Context, domain Domain) (*Connection, error) {
	if conn := r.ready(domain); conn != nil {
		return conn, nil
	}

	address, ok := r.addresses[domain]
	if !ok {
		return nil, fmt.Errorf("unknown database domain %q", domain)
	}

	v, err, _ := r.group.Do(string(domain), func() (any, error) {
		if conn := r.ready(domain); conn != nil {
			return conn, nil
		}

		previous := r.setState(domain, StateConnecting)

		db, err := r.open(ctx, domain, address)
		if err != nil {
			r.setState(domain, previous)
			return nil, err
		}

		conn := &Connection{
			Domain:      domain,
			DB:          db,
			Generation:  r.generation.Add(1),
			ConnectedAt: time.Now(),
		}
		if err := r.observe(conn); err != nil {
			closeConnection(conn)
			r.setState(domain, previous)
			return nil, err
		}

		r.mu.Lock()
		r.conns[domain] = conn
		r.states[domain] = StateReady
		r.mu.Unlock()

		logging.Info().Str("domain", string(domain)).Str("address", address).Msg("database connected")
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Connection), nil
}

// Get returns the connection for domain only if it is ready. It never
// connects.
func (r *Registry) Get(domain Domain) (*Connection, error) {
	if conn := r.ready(domain); conn != nil {
		return conn, nil
	}
	return nil, apperrors.New(apperrors.ErrNotConnected, fmt.Sprintf("%s database is not connected", domain))
}

func (r *Registry) State(domain Domain) ConnState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[domain]
}

// Ping checks a ready connection and drops it from the cache when the
// provider no longer answers.
func (r *Registry) Ping(ctx context.Context, domain Domain) error {
	conn, err := r.Get(domain)
	if err != nil {
		return err
	}
	sqlDB, err := conn.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		r.handleDisconnect(conn, err)
		return apperrors.New(apperrors.ErrNotConnected, fmt.Sprintf("%s database is not connected", domain))
	}
	return nil
}

// Disconnect closes and forgets the connection for domain, if any.
func (r *Registry) Disconnect(domain Domain) {
	r.mu.RLock()
	conn := r.conns[domain]
	r.mu.RUnlock()
	if conn != nil {
		r.handleDisconnect(conn, nil)
	}
}

// Close disconnects every domain.
func (r *Registry) Close() error {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.mu.Unlock()

	var errs []error
	for _, conn := range conns {
		if r.drop(conn) {
			if err := closeConnection(conn); err != nil {
				errs = append(errs, fmt.Errorf("close %s database: %w", conn.Domain, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) ready(domain Domain) *Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.states[domain] != StateReady {
		return nil
	}
	return r.conns[domain]
}

func (r *Registry) setState(domain Domain, state ConnState) ConnState {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous := r.states[domain]
	r.states[domain] = state
	return previous
}

// drop removes conn from the cache if it is still the current connection.
func (r *Registry) drop(conn *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[conn.Domain] != conn {
		return false
	}
	delete(r.conns, conn.Domain)
	r.states[conn.Domain] = StateDisconnected
	return true
}

func (r *Registry) handleDisconnect(conn *Connection, cause error) {
	if !r.drop(conn) {
		return
	}
	closeConnection(conn)

	event := logging.Warn().Str("domain", string(conn.Domain)).Uint64("generation", conn.Generation)
	if cause != nil {
		event = event.Err(cause)
	}
	event.Msg("database disconnected")

	r.observersMu.RLock()
	observers := append([]DisconnectObserver(nil), r.observers...)
	r.observersMu.RUnlock()
	for _, fn := range observers {
		fn(conn)
	}
}

// observe installs gorm callbacks that log provider errors and drop the
// connection when the driver reports it unusable.
func (r *Registry) observe(conn *Connection) error {
	name := "mymotiv:observe_errors"
	check := func(tx *gorm.DB) {
		err := tx.Error
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		if isConnectionLost(err) {
			go r.handleDisconnect(conn, err)
			return
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			logging.Debug().Str("domain", string(conn.Domain)).Err(err).Msg("database operation failed")
		}
	}

	cb := conn.DB.Callback()
	registrations := []error{
		cb.Create().After("gorm:create").Register(name, check),
		cb.Query().After("gorm:query").Register(name, check),
		cb.Update().After("gorm:update").Register(name, check),
		cb.Delete().After("gorm:delete").Register(name, check),
		cb.Row().After("gorm:row").Register(name, check),
		cb.Raw().After("gorm:raw").Register(name, check),
	}
	return errors.Join(registrations...)
}

func isConnectionLost(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

func closeConnection(conn *Connection) error {
	sqlDB, err := conn.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
