// Package session holds an engine session: the temp view catalog, the table
// loader and SQL execution.
package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"github.com/vegasq/dinersql/frame"
	dlog "github.com/vegasq/dinersql/internal/logging"
	"github.com/vegasq/dinersql/query"
)

// LocalMaster is the only supported master: one in-process worker
const LocalMaster = "local[1]"

const defaultAppName = "dinersql"

// Session is the entry point for loading tables and running SQL. Views are
// shared by every DataFrame created through the session.
type Session struct {
	id      uuid.UUID
	appName string
	master  string
	log     *logging.Logger

	mu      sync.RWMutex
	catalog query.MapCatalog
}

// Option configures a Session
type Option func(*Session) error

// WithAppName names the session in log output
func WithAppName(name string) Option {
	return func(s *Session) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("app name must not be empty")
		}
		s.appName = name
		return nil
	}
}

// WithMaster selects where queries run. Only local[1] is accepted.
func WithMaster(master string) Option {
	return func(s *Session) error {
		if master != LocalMaster {
			return fmt.Errorf("unsupported master %q: only %s is available", master, LocalMaster)
		}
		s.master = master
		return nil
	}
}

// WithLogger replaces the session logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) error {
		s.log = l
		return nil
	}
}

// New creates a session with an empty catalog
func New(opts ...Option) (*Session, error) {
	s := &Session{
		id:      uuid.New(),
		appName: defaultAppName,
		master:  LocalMaster,
		log:     logging.MustGetLogger(dlog.EngineModule),
		catalog: query.NewMapCatalog(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.log.Debugf("session %s started (app %s, master %s)", s.id, s.appName, s.master)
	return s, nil
}

// ID identifies the session
func (s *Session) ID() string { return s.id.String() }

// AppName returns the configured application name
func (s *Session) AppName() string { return s.appName }

// Master returns the configured master
func (s *Session) Master() string { return s.master }

// Register adds or replaces a view. It implements frame.Registry.
func (s *Session) Register(t *query.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.Register(t)
}

// Lookup implements query.Catalog
func (s *Session) Lookup(name string) (*query.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Lookup(name)
}

// Views lists the registered view names in order
func (s *Session) Views() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := s.catalog.Names()
	sort.Strings(names)
	return names
}

// DropView removes a view; it reports whether one was registered
func (s *Session) DropView(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(name)
	_, ok := s.catalog[key]
	delete(s.catalog, key)
	return ok
}

// Table returns a registered view as a DataFrame
func (s *Session) Table(name string) *frame.DataFrame {
	t, err := s.Lookup(name)
	if err != nil {
		return frame.Errorf("table: %w", err)
	}
	return frame.New(t.Name, t.Columns, t.Rows).WithRegistry(s)
}

// SQL runs a query against the registered views
func (s *Session) SQL(sql string) *frame.DataFrame {
	res, err := query.ExecuteSQL(sql, s)
	if err != nil {
		return frame.Errorf("sql: %w", err)
	}
	s.log.Debugf("session %s: query returned %d rows", s.id, len(res.Rows))
	return frame.FromResult("", res).WithRegistry(s)
}

// DataFrame wraps rows as a DataFrame bound to this session
func (s *Session) DataFrame(name string, columns []string, rows []map[string]interface{}) *frame.DataFrame {
	return frame.New(name, columns, rows).WithRegistry(s)
}
