package plugin

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPlugin is a test implementation of Plugin
type mockPlugin struct {
	descriptor Descriptor
}

func (p *mockPlugin) Descriptor() Descriptor              { return p.descriptor }
func (p *mockPlugin) Install(ctx context.Context) error   { return nil }
func (p *mockPlugin) Uninstall(ctx context.Context) error { return nil }

// mockWidget also implements Widget
type mockWidget struct {
	mockPlugin
}

func (w *mockWidget) GetWidgetZones() []string { return []string{"head_html_tag"} }
func (w *mockWidget) RenderWidget(ctx context.Context, zone string, storeID uuid.UUID) (string, error) {
	return "<script></script>", nil
}

func newMock(systemName, friendlyName string, order int) *mockPlugin {
	return &mockPlugin{descriptor: Descriptor{
		SystemName:   systemName,
		FriendlyName: friendlyName,
		DisplayOrder: order,
		Group:        "Payments",
	}}
}

func TestManager_Register(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Register(newMock("Payments.Manual", "Manual", 1)))
	assert.Equal(t, 1, m.Count())

	assert.ErrorIs(t, m.Register(nil), shared.ErrInvalidInput)
	assert.ErrorIs(t, m.Register(newMock("", "Nameless", 0)), shared.ErrInvalidInput)
	assert.ErrorIs(t, m.Register(newMock("payments.manual", "Dup", 0)), shared.ErrAlreadyExists)
}

func TestManager_GetPluginDescriptors_Sorting(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(newMock("B", "Beta", 2)))
	require.NoError(t, m.Register(newMock("A2", "Zulu", 1)))
	require.NoError(t, m.Register(newMock("A1", "Alpha", 1)))

	descriptors := m.GetPluginDescriptors(LoadAll, uuid.Nil, "")
	require.Len(t, descriptors, 3)
	assert.Equal(t, "Alpha", descriptors[0].FriendlyName)
	assert.Equal(t, "Zulu", descriptors[1].FriendlyName)
	assert.Equal(t, "Beta", descriptors[2].FriendlyName)
}

func TestManager_GetPluginDescriptors_Filters(t *testing.T) {
	storeA, storeB := uuid.New(), uuid.New()
	m := NewManager()

	limited := newMock("Limited", "Limited", 0)
	limited.descriptor.LimitedToStores = []uuid.UUID{storeA}
	require.NoError(t, m.Register(limited))

	widget := &mockWidget{mockPlugin: *newMock("Widgets.Test", "Widget", 0)}
	widget.descriptor.Group = "Widgets"
	require.NoError(t, m.Register(widget))

	require.NoError(t, m.SetInstalled("Limited", true))

	assert.Len(t, m.GetPluginDescriptors(LoadInstalledOnly, uuid.Nil, ""), 1)
	assert.Len(t, m.GetPluginDescriptors(LoadNotInstalledOnly, uuid.Nil, ""), 1)
	assert.Len(t, m.GetPluginDescriptors(LoadAll, storeB, ""), 1)
	assert.Len(t, m.GetPluginDescriptors(LoadAll, storeA, ""), 2)
	assert.Len(t, m.GetPluginDescriptors(LoadAll, uuid.Nil, "widgets"), 1)

	assert.ErrorIs(t, m.SetInstalled("Unknown", true), shared.ErrPluginNotFound)
}

func TestGetPlugins_ByKind(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(newMock("Payments.Manual", "Manual", 0)))
	require.NoError(t, m.Register(&mockWidget{mockPlugin: *newMock("Widgets.Test", "Widget", 0)}))

	widgets := GetPlugins[Widget](m, LoadAll, uuid.Nil)
	require.Len(t, widgets, 1)
	assert.Equal(t, "Widgets.Test", widgets[0].Descriptor().SystemName)

	assert.Empty(t, GetPlugins[Widget](m, LoadInstalledOnly, uuid.Nil))
}

func TestGetPluginBySystemName(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(&mockWidget{mockPlugin: *newMock("Widgets.Test", "Widget", 0)}))

	_, err := GetPluginBySystemName[Widget](m, "Widgets.Test", uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrPluginNotFound, "not installed")

	m.LoadInstalled([]string{"widgets.test"})
	w, err := GetPluginBySystemName[Widget](m, "Widgets.Test", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"head_html_tag"}, w.GetWidgetZones())

	_, err = GetPluginBySystemName[TaxProvider](m, "Widgets.Test", uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrPluginNotFound)
}

func TestDescriptor_AuthenticateStore(t *testing.T) {
	store := uuid.New()
	d := Descriptor{}
	assert.True(t, d.AuthenticateStore(store))

	d.LimitedToStores = []uuid.UUID{uuid.New()}
	assert.False(t, d.AuthenticateStore(store))
	assert.True(t, d.AuthenticateStore(uuid.Nil))
}
