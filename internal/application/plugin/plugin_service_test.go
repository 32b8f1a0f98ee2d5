package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// MockInstalledPluginRepository is a mock implementation of plugin.InstalledPluginRepository
type MockInstalledPluginRepository struct {
	mock.Mock
}

func (m *MockInstalledPluginRepository) FindAll(ctx context.Context) ([]plugin.InstalledPlugin, error) {
	args := m.Called(ctx)
	return args.Get(0).([]plugin.InstalledPlugin), args.Error(1)
}

func (m *MockInstalledPluginRepository) Save(ctx context.Context, p *plugin.InstalledPlugin) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockInstalledPluginRepository) Delete(ctx context.Context, systemName string) error {
	return m.Called(ctx, systemName).Error(0)
}

type fakePlugin struct {
	descriptor  plugin.Descriptor
	installErr  error
	installed   int
	uninstalled int
}

func (p *fakePlugin) Descriptor() plugin.Descriptor { return p.descriptor }

func (p *fakePlugin) Install(context.Context) error {
	p.installed++
	return p.installErr
}

func (p *fakePlugin) Uninstall(context.Context) error {
	p.uninstalled++
	return nil
}

func newService(t *testing.T, plugins ...*fakePlugin) (*PluginService, *MockInstalledPluginRepository) {
	t.Helper()
	m := plugin.NewManager()
	for _, p := range plugins {
		require.NoError(t, m.Register(p))
	}
	repo := new(MockInstalledPluginRepository)
	return NewPluginService(m, repo, cache.NewMemoryManager(), nil, nil), repo
}

func TestPluginService_LoadInstalledPlugins(t *testing.T) {
	ctx := context.Background()
	tax := &fakePlugin{descriptor: plugin.Descriptor{SystemName: "Tax.FixedRate", FriendlyName: "Fixed rate", Kind: plugin.KindTax}}
	svc, repo := newService(t, tax)
	repo.On("FindAll", ctx).Return([]plugin.InstalledPlugin{
		{SystemName: "tax.fixedrate"},
		{SystemName: "Payments.Removed"},
	}, nil)

	require.NoError(t, svc.LoadInstalledPlugins(ctx))

	assert.True(t, svc.Manager().IsInstalled("Tax.FixedRate"))
	assert.False(t, svc.Manager().IsInstalled("Payments.Removed"))
}

func TestPluginService_InstallUninstall(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()
	p := &fakePlugin{descriptor: plugin.Descriptor{SystemName: "Shipping.FixedRate", FriendlyName: "Fixed rate shipping", Group: "Shipping"}}
	svc, repo := newService(t, p)
	repo.On("Save", ctx, mock.MatchedBy(func(ip *plugin.InstalledPlugin) bool {
		return ip.SystemName == "Shipping.FixedRate"
	})).Return(nil)
	repo.On("Delete", ctx, "Shipping.FixedRate").Return(nil)

	// warm the descriptor cache
	none, err := svc.GetPluginDescriptors(ctx, plugin.LoadInstalledOnly, storeID, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	d, err := svc.Install(ctx, "shipping.fixedrate")
	require.NoError(t, err)
	assert.True(t, d.Installed)
	assert.Equal(t, 1, p.installed)

	installed, err := svc.GetPluginDescriptors(ctx, plugin.LoadInstalledOnly, storeID, "")
	require.NoError(t, err)
	require.Len(t, installed, 1)

	_, err = svc.Install(ctx, "Shipping.FixedRate")
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "PLUGIN_ALREADY_INSTALLED", de.Code)

	d, err = svc.Uninstall(ctx, "Shipping.FixedRate")
	require.NoError(t, err)
	assert.False(t, d.Installed)
	assert.Equal(t, 1, p.uninstalled)

	_, err = svc.Uninstall(ctx, "Shipping.FixedRate")
	assert.ErrorIs(t, err, shared.ErrPluginNotFound)
}

func TestPluginService_Install_HookFailure(t *testing.T) {
	ctx := context.Background()
	p := &fakePlugin{
		descriptor: plugin.Descriptor{SystemName: "Payments.Manual"},
		installErr: errors.New("seed failed"),
	}
	svc, repo := newService(t, p)

	_, err := svc.Install(ctx, "Payments.Manual")

	require.Error(t, err)
	assert.False(t, svc.Manager().IsInstalled("Payments.Manual"))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPluginService_Install_Unknown(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Install(context.Background(), "Nope")

	assert.ErrorIs(t, err, shared.ErrPluginNotFound)
}
