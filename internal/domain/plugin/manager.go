package plugin

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// LoadMode filters descriptors by install state
type LoadMode int

const (
	LoadAll LoadMode = iota
	LoadInstalledOnly
	LoadNotInstalledOnly
)

func (m LoadMode) matches(installed bool) bool {
	switch m {
	case LoadInstalledOnly:
		return installed
	case LoadNotInstalledOnly:
		return !installed
	}
	return true
}

// Manager is the registry of compiled-in plugins and their install state
type Manager struct {
	mu        sync.RWMutex
	plugins   map[string]Plugin
	installed map[string]bool
}

// NewManager creates an empty plugin manager
func NewManager() *Manager {
	return &Manager{
		plugins:   make(map[string]Plugin),
		installed: make(map[string]bool),
	}
}

// Register adds a plugin to the registry
func (m *Manager) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("%w: plugin cannot be nil", shared.ErrInvalidInput)
	}
	name := p.Descriptor().SystemName
	if name == "" {
		return fmt.Errorf("%w: plugin system name cannot be empty", shared.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(name)
	if _, exists := m.plugins[key]; exists {
		return fmt.Errorf("%w: plugin '%s' already registered", shared.ErrAlreadyExists, name)
	}
	m.plugins[key] = p
	return nil
}

// LoadInstalled replaces the install state with the given system names
func (m *Manager) LoadInstalled(systemNames []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.installed = make(map[string]bool, len(systemNames))
	for _, name := range systemNames {
		m.installed[strings.ToLower(name)] = true
	}
}

// SetInstalled updates the install state of one plugin
func (m *Manager) SetInstalled(systemName string, installed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(systemName)
	if _, exists := m.plugins[key]; !exists {
		return fmt.Errorf("%w: plugin '%s'", shared.ErrPluginNotFound, systemName)
	}
	if installed {
		m.installed[key] = true
	} else {
		delete(m.installed, key)
	}
	return nil
}

// GetPluginDescriptors returns descriptors matching mode, store and group,
// sorted by display order and then friendly name. An empty group matches all.
func (m *Manager) GetPluginDescriptors(mode LoadMode, storeID uuid.UUID, group string) []Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Descriptor, 0, len(m.plugins))
	for key, p := range m.plugins {
		d := p.Descriptor()
		d.Installed = m.installed[key]
		if !mode.matches(d.Installed) || !d.AuthenticateStore(storeID) {
			continue
		}
		if group != "" && !strings.EqualFold(d.Group, group) {
			continue
		}
		result = append(result, d)
	}
	SortDescriptors(result)
	return result
}

// GetPluginDescriptorBySystemName returns one descriptor
func (m *Manager) GetPluginDescriptorBySystemName(systemName string, mode LoadMode) (Descriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := strings.ToLower(systemName)
	p, ok := m.plugins[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: plugin '%s'", shared.ErrPluginNotFound, systemName)
	}
	d := p.Descriptor()
	d.Installed = m.installed[key]
	if !mode.matches(d.Installed) {
		return Descriptor{}, fmt.Errorf("%w: plugin '%s'", shared.ErrPluginNotFound, systemName)
	}
	return d, nil
}

// GetPlugin returns a registered plugin regardless of install state
func (m *Manager) GetPlugin(systemName string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plugins[strings.ToLower(systemName)]
	return p, ok
}

// IsInstalled reports whether a plugin is installed
func (m *Manager) IsInstalled(systemName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.installed[strings.ToLower(systemName)]
}

// Count returns the number of registered plugins
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plugins)
}

// GetPlugins returns plugins implementing T that match mode and store,
// in descriptor order.
func GetPlugins[T Plugin](m *Manager, mode LoadMode, storeID uuid.UUID) []T {
	descriptors := m.GetPluginDescriptors(mode, storeID, "")
	result := make([]T, 0, len(descriptors))
	for _, d := range descriptors {
		p, ok := m.GetPlugin(d.SystemName)
		if !ok {
			continue
		}
		if typed, ok := p.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}

// GetPluginBySystemName returns an installed plugin implementing T
func GetPluginBySystemName[T Plugin](m *Manager, systemName string, storeID uuid.UUID) (T, error) {
	var zero T
	d, err := m.GetPluginDescriptorBySystemName(systemName, LoadInstalledOnly)
	if err != nil {
		return zero, err
	}
	if !d.AuthenticateStore(storeID) {
		return zero, fmt.Errorf("%w: plugin '%s' is not available in this store", shared.ErrPluginNotFound, systemName)
	}
	p, _ := m.GetPlugin(systemName)
	typed, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("%w: plugin '%s' has the wrong kind", shared.ErrPluginNotFound, systemName)
	}
	return typed, nil
}

// SortDescriptors orders descriptors by display order, then friendly name
func SortDescriptors(descriptors []Descriptor) {
	sort.SliceStable(descriptors, func(i, j int) bool {
		if descriptors[i].DisplayOrder != descriptors[j].DisplayOrder {
			return descriptors[i].DisplayOrder < descriptors[j].DisplayOrder
		}
		return descriptors[i].FriendlyName < descriptors[j].FriendlyName
	})
}
