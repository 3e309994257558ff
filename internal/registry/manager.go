package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

// Manager owns the named fleet of registry Clients. It is constructed once at startup from LoadFleet and is safe for
// concurrent use by every tool handler.
type Manager struct {
	mu          sync.RWMutex
	clients     map[string]*Client
	configs     map[string]Config
	defaultName string
	logger      *slog.Logger
}

// NewManager builds a Manager from a fleet configuration produced by
// LoadFleet. defaultName selects which member Get("") resolves to; it must
// be one of cfgs' names, or Get("") always fails.
func NewManager(cfgs []Config, defaultName string, logger *slog.Logger) *Manager {
	m := &Manager{
		clients:     make(map[string]*Client, len(cfgs)),
		configs:     make(map[string]Config, len(cfgs)),
		defaultName: defaultName,
		logger:      logger,
	}
	for _, cfg := range cfgs {
		m.clients[cfg.Name] = NewClient(cfg, logger)
		m.configs[cfg.Name] = cfg
	}
	return m
}

// Get resolves a registry by name. An empty name resolves to the fleet's
// default member.
func (m *Manager) Get(name string) (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name == "" {
		name = m.defaultName
	}
	c, ok := m.clients[name]
	if !ok {
		return nil, srerr.New(srerr.RegistryNotFound, "no registry named %q", name).
			WithDetails(map[string]any{"name": name})
	}
	return c, nil
}

// List returns the fleet's registry names in stable, sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultName returns the fleet's default registry name.
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// RegistryInfo is the composite health+config view the info
// operation returns for one fleet member.
type RegistryInfo struct {
	Name        string           `json:"name"`
	URL         string           `json:"url"`
	Readonly    bool             `json:"readonly"`
	Description string           `json:"description,omitempty"`
	IsDefault   bool             `json:"isDefault"`
	Connection  ConnectionStatus `json:"connection"`
}

// Info reports the configuration and live connection status of one fleet
// member.
func (m *Manager) Info(ctx context.Context, name string) (RegistryInfo, error) {
	c, err := m.Get(name)
	if err != nil {
		return RegistryInfo{}, err
	}
	cfg := c.Config()

	m.mu.RLock()
	isDefault := cfg.Name == m.defaultName
	m.mu.RUnlock()

	return RegistryInfo{
		Name:        cfg.Name,
		URL:         cfg.URL,
		Readonly:    cfg.Readonly,
		Description: cfg.Description,
		IsDefault:   isDefault,
		Connection:  c.TestConnection(ctx),
	}, nil
}

// InfoAll reports Info for every fleet member, in List order.
func (m *Manager) InfoAll(ctx context.Context) []RegistryInfo {
	names := m.List()
	out := make([]RegistryInfo, 0, len(names))
	for _, name := range names {
		info, err := m.Info(ctx, name)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out
}

// SetDefault changes which registry Get("") resolves to.
func (m *Manager) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[name]; !ok {
		return srerr.New(srerr.RegistryNotFound, "no registry named %q", name)
	}
	m.defaultName = name
	return nil
}

// CheckWritable is the single choke point every write-path tool handler
// must call before mutating a registry. It never performs the mutation itself — it only
// decides whether the caller may proceed.
func (m *Manager) CheckWritable(name string) (*Client, error) {
	c, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	if c.Config().Readonly {
		return nil, srerr.New(srerr.ReadonlyBlocked, "registry %q is readonly", c.Config().Name).
			WithDetails(map[string]any{"name": c.Config().Name})
	}
	return c, nil
}

// Count returns the number of fleet members, used by tools that report
// fleet-wide statistics.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) String() string {
	return fmt.Sprintf("Manager{members=%d, default=%q}", m.Count(), m.DefaultName())
}
