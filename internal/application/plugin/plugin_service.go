package plugin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// PluginService finds plugins and manages their install state
type PluginService struct {
	manager   *plugin.Manager
	repo      plugin.InstalledPluginRepository
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPluginService creates a new PluginService
func NewPluginService(manager *plugin.Manager, repo plugin.InstalledPluginRepository, cacheManager cache.Manager, publisher shared.EventPublisher, logger *zap.Logger) *PluginService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PluginService{manager: manager, repo: repo, cache: cacheManager, publisher: publisher, logger: logger}
}

// Manager exposes the underlying registry to kind-specific lookups
func (s *PluginService) Manager() *plugin.Manager {
	return s.manager
}

// LoadInstalledPlugins reads persisted install markers into the registry.
// Markers of plugins that are no longer compiled in are ignored.
func (s *PluginService) LoadInstalledPlugins(ctx context.Context) error {
	installed, err := s.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load installed plugins: %w", err)
	}
	names := make([]string, 0, len(installed))
	for _, p := range installed {
		if _, ok := s.manager.GetPlugin(p.SystemName); !ok {
			s.logger.Warn("Installed plugin is not registered", zap.String("system_name", p.SystemName))
			continue
		}
		names = append(names, p.SystemName)
	}
	s.manager.LoadInstalled(names)
	s.logger.Info("Plugins loaded",
		zap.Int("registered", s.manager.Count()),
		zap.Int("installed", len(names)))
	return nil
}

// GetPluginDescriptors lists descriptors, cached per mode, store and group
func (s *PluginService) GetPluginDescriptors(ctx context.Context, mode plugin.LoadMode, storeID uuid.UUID, group string) ([]plugin.Descriptor, error) {
	key := cache.PluginDescriptorsKey.Create(int(mode), storeID, group)
	return cache.Get(ctx, s.cache, key, func() ([]plugin.Descriptor, error) {
		return s.manager.GetPluginDescriptors(mode, storeID, group), nil
	})
}

// GetPluginDescriptorBySystemName returns one descriptor regardless of install state
func (s *PluginService) GetPluginDescriptorBySystemName(systemName string) (plugin.Descriptor, error) {
	return s.manager.GetPluginDescriptorBySystemName(systemName, plugin.LoadAll)
}

// Install runs the plugin's Install hook and persists the marker
func (s *PluginService) Install(ctx context.Context, systemName string) (plugin.Descriptor, error) {
	d, err := s.manager.GetPluginDescriptorBySystemName(systemName, plugin.LoadAll)
	if err != nil {
		return d, err
	}
	if d.Installed {
		return d, shared.NewDomainError("PLUGIN_ALREADY_INSTALLED", fmt.Sprintf("Plugin '%s' is already installed", d.SystemName))
	}
	p, _ := s.manager.GetPlugin(systemName)
	if err := p.Install(ctx); err != nil {
		return d, fmt.Errorf("install %s: %w", d.SystemName, err)
	}
	if err := s.repo.Save(ctx, &plugin.InstalledPlugin{SystemName: d.SystemName, InstalledAt: time.Now()}); err != nil {
		return d, err
	}
	if err := s.manager.SetInstalled(d.SystemName, true); err != nil {
		return d, err
	}
	d.Installed = true

	s.logger.Info("Plugin installed", zap.String("system_name", d.SystemName))
	s.changed(ctx, shared.EntityInserted)
	return d, nil
}

// Uninstall runs the plugin's Uninstall hook and removes the marker
func (s *PluginService) Uninstall(ctx context.Context, systemName string) (plugin.Descriptor, error) {
	d, err := s.manager.GetPluginDescriptorBySystemName(systemName, plugin.LoadInstalledOnly)
	if err != nil {
		return d, err
	}
	p, _ := s.manager.GetPlugin(systemName)
	if err := p.Uninstall(ctx); err != nil {
		return d, fmt.Errorf("uninstall %s: %w", d.SystemName, err)
	}
	if err := s.repo.Delete(ctx, d.SystemName); err != nil {
		return d, err
	}
	if err := s.manager.SetInstalled(d.SystemName, false); err != nil {
		return d, err
	}
	d.Installed = false

	s.logger.Info("Plugin uninstalled", zap.String("system_name", d.SystemName))
	s.changed(ctx, shared.EntityDeleted)
	return d, nil
}

func (s *PluginService) changed(ctx context.Context, action shared.EntityAction) {
	if s.publisher != nil {
		event := shared.NewEntityEvent(plugin.EntityPlugin, action, uuid.Nil, uuid.Nil)
		err := s.publisher.Publish(ctx, event)
		if err == nil {
			return
		}
		s.logger.Warn("Failed to publish plugin event", zap.Error(err))
	}
	_ = s.cache.RemoveByPrefix(ctx, cache.PrefixPlugins)
}
