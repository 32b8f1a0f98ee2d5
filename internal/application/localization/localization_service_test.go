package localization

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// MockLanguageRepository is a mock implementation of localization.LanguageRepository
type MockLanguageRepository struct {
	mock.Mock
}

func (m *MockLanguageRepository) FindByID(ctx context.Context, id uuid.UUID) (*localization.Language, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*localization.Language), args.Error(1)
}

func (m *MockLanguageRepository) FindAll(ctx context.Context, showHidden bool) ([]localization.Language, error) {
	args := m.Called(ctx, showHidden)
	return args.Get(0).([]localization.Language), args.Error(1)
}

func (m *MockLanguageRepository) Save(ctx context.Context, l *localization.Language) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLanguageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockResourceRepository is a mock implementation of localization.ResourceRepository
type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) FindByName(ctx context.Context, languageID uuid.UUID, name string) (*localization.LocaleStringResource, error) {
	args := m.Called(ctx, languageID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*localization.LocaleStringResource), args.Error(1)
}

func (m *MockResourceRepository) FindAllByLanguage(ctx context.Context, languageID uuid.UUID) ([]localization.LocaleStringResource, error) {
	args := m.Called(ctx, languageID)
	return args.Get(0).([]localization.LocaleStringResource), args.Error(1)
}

func (m *MockResourceRepository) Save(ctx context.Context, r *localization.LocaleStringResource) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResourceRepository) SaveAll(ctx context.Context, resources []localization.LocaleStringResource) error {
	return m.Called(ctx, resources).Error(0)
}

func (m *MockResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockLocalizedPropertyRepository is a mock implementation of localization.LocalizedPropertyRepository
type MockLocalizedPropertyRepository struct {
	mock.Mock
}

func (m *MockLocalizedPropertyRepository) Find(ctx context.Context, entityID, languageID uuid.UUID, keyGroup, key string) (*localization.LocalizedProperty, error) {
	args := m.Called(ctx, entityID, languageID, keyGroup, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*localization.LocalizedProperty), args.Error(1)
}

func (m *MockLocalizedPropertyRepository) FindByEntity(ctx context.Context, entityID uuid.UUID, keyGroup string) ([]localization.LocalizedProperty, error) {
	args := m.Called(ctx, entityID, keyGroup)
	return args.Get(0).([]localization.LocalizedProperty), args.Error(1)
}

func (m *MockLocalizedPropertyRepository) Save(ctx context.Context, p *localization.LocalizedProperty) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockLocalizedPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type fixture struct {
	svc        *LocalizationService
	languages  *MockLanguageRepository
	resources  *MockResourceRepository
	properties *MockLocalizedPropertyRepository
	publisher  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		languages:  new(MockLanguageRepository),
		resources:  new(MockResourceRepository),
		properties: new(MockLocalizedPropertyRepository),
		publisher:  &recordingPublisher{},
	}
	f.svc = NewLocalizationService(f.languages, f.resources, f.properties, cache.NewMemoryManager(), f.publisher, nil)
	return f
}

func testLanguage(t *testing.T) *localization.Language {
	t.Helper()
	l, err := localization.NewLanguage("English", "en-US", "en")
	require.NoError(t, err)
	l.ClearDomainEvents()
	return l
}

func resource(t *testing.T, languageID uuid.UUID, name, value string) localization.LocaleStringResource {
	t.Helper()
	r, err := localization.NewLocaleStringResource(languageID, name, value)
	require.NoError(t, err)
	return *r
}

func TestLocalizationService_GetResource(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lang := testLanguage(t)
	f.resources.On("FindAllByLanguage", ctx, lang.ID).Return([]localization.LocaleStringResource{
		resource(t, lang.ID, "Account.Login", "Log in"),
		resource(t, lang.ID, "Blank", ""),
	}, nil).Once()

	tests := []struct {
		name         string
		key          string
		defaultValue string
		returnEmpty  bool
		languageID   uuid.UUID
		want         string
	}{
		{"case-insensitive hit", "ACCOUNT.LOGIN", "", false, lang.ID, "Log in"},
		{"stored empty value", "blank", "x", false, lang.ID, ""},
		{"missing returns key", "Account.Logout", "", false, lang.ID, "Account.Logout"},
		{"missing returns default", "Account.Logout", "Log out", false, lang.ID, "Log out"},
		{"missing returns empty", "Account.Logout", "", true, lang.ID, ""},
		{"no language", "Account.Login", "", false, uuid.Nil, "Account.Login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.svc.GetResource(ctx, tt.key, tt.languageID, tt.defaultValue, tt.returnEmpty)
			assert.Equal(t, tt.want, got)
		})
	}

	// one load for every lookup above
	f.resources.AssertExpectations(t)
}

func TestLocalizationService_GetResource_LoadError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	langID := uuid.New()
	f.resources.On("FindAllByLanguage", ctx, langID).Return([]localization.LocaleStringResource(nil), errors.New("db down"))

	assert.Equal(t, "Cart.Title", f.svc.GetResource(ctx, "Cart.Title", langID, "", false))
}

func TestLocalizationService_SetResource(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	langID := uuid.New()
	existing := resource(t, langID, "cart.title", "Cart")
	f.resources.On("FindByName", ctx, langID, "Cart.Title").Return(&existing, nil)
	f.resources.On("FindByName", ctx, langID, "Cart.Empty").Return(nil, shared.ErrNotFound)
	f.resources.On("Save", ctx, mock.AnythingOfType("*localization.LocaleStringResource")).Return(nil)

	updated, err := f.svc.SetResource(ctx, langID, "Cart.Title", "Shopping cart")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, updated.ID)
	assert.Equal(t, "Shopping cart", updated.ResourceValue)

	created, err := f.svc.SetResource(ctx, langID, "Cart.Empty", "Your cart is empty")
	require.NoError(t, err)
	assert.Equal(t, "cart.empty", created.ResourceName)
	assert.Len(t, f.publisher.events, 2)
}

func TestLocalizationService_GetLocalized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	langID, productID, otherID := uuid.New(), uuid.New(), uuid.New()

	f.properties.On("Find", ctx, productID, langID, "Product", "Name").
		Return(&localization.LocalizedProperty{LocaleValue: "Chemise bleue"}, nil).Once()
	f.properties.On("Find", ctx, otherID, langID, "Product", "Name").
		Return(nil, shared.ErrNotFound).Once()

	assert.Equal(t, "Chemise bleue", f.svc.GetLocalized(ctx, productID, "Product", "Name", langID, "Blue shirt"))
	assert.Equal(t, "Chemise bleue", f.svc.GetLocalized(ctx, productID, "Product", "Name", langID, "Blue shirt"))
	assert.Equal(t, "Red shirt", f.svc.GetLocalized(ctx, otherID, "Product", "Name", langID, "Red shirt"))
	assert.Equal(t, "Red shirt", f.svc.GetLocalized(ctx, otherID, "Product", "Name", uuid.Nil, "Red shirt"))
	f.properties.AssertExpectations(t)
}

func TestLocalizationService_SaveLocalizedValue(t *testing.T) {
	ctx := context.Background()
	langID, productID := uuid.New(), uuid.New()

	t.Run("creates", func(t *testing.T) {
		f := newFixture(t)
		f.properties.On("Find", ctx, productID, langID, "Product", "Name").Return(nil, shared.ErrNotFound)
		f.properties.On("Save", ctx, mock.MatchedBy(func(p *localization.LocalizedProperty) bool {
			return p.EntityID == productID && p.LocaleValue == "Chemise"
		})).Return(nil)

		require.NoError(t, f.svc.SaveLocalizedValue(ctx, productID, "Product", "Name", langID, "Chemise"))
		f.properties.AssertExpectations(t)
	})

	t.Run("empty value deletes", func(t *testing.T) {
		f := newFixture(t)
		prop := &localization.LocalizedProperty{BaseEntity: shared.NewBaseEntity(), LocaleValue: "Chemise"}
		f.properties.On("Find", ctx, productID, langID, "Product", "Name").Return(prop, nil)
		f.properties.On("Delete", ctx, prop.ID).Return(nil)

		require.NoError(t, f.svc.SaveLocalizedValue(ctx, productID, "Product", "Name", langID, ""))
		f.properties.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestLocalizationService_DeleteLanguage_KeepsLastPublished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lang := testLanguage(t)
	f.languages.On("FindByID", ctx, lang.ID).Return(lang, nil)
	f.languages.On("FindAll", ctx, false).Return([]localization.Language{*lang}, nil)

	err := f.svc.DeleteLanguage(ctx, lang.ID)

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "LAST_LANGUAGE", de.Code)
	f.languages.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestLocalizationService_ResourceXMLRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lang := testLanguage(t)
	f.languages.On("FindByID", ctx, lang.ID).Return(lang, nil)
	f.resources.On("FindAllByLanguage", ctx, lang.ID).Return([]localization.LocaleStringResource{
		resource(t, lang.ID, "account.login", "Log in"),
		resource(t, lang.ID, "cart.total", "Total <incl. tax>"),
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportResourcesToXML(ctx, lang.ID, &buf))
	assert.Contains(t, buf.String(), `<Language Name="English" Culture="en-US">`)
	assert.Contains(t, buf.String(), "Total &lt;incl. tax&gt;")

	var saved []localization.LocaleStringResource
	f.resources.On("SaveAll", ctx, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).([]localization.LocaleStringResource)
	}).Return(nil)

	result, err := f.svc.ImportResourcesFromXML(ctx, lang.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, saved, 2)
	assert.Equal(t, "Total <incl. tax>", saved[1].ResourceValue)
}

func TestLocalizationService_ImportResourcesFromXML(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lang := testLanguage(t)
	f.languages.On("FindByID", ctx, lang.ID).Return(lang, nil)

	t.Run("duplicates and blanks", func(t *testing.T) {
		doc := `<Language Name="English">
  <LocaleResource Name="A.B"><Value>first</Value></LocaleResource>
  <LocaleResource Name=" "><Value>nameless</Value></LocaleResource>
  <LocaleResource Name="a.b"><Value>second</Value></LocaleResource>
</Language>`
		f.resources.On("SaveAll", ctx, mock.MatchedBy(func(rs []localization.LocaleStringResource) bool {
			return len(rs) == 1 && rs[0].ResourceName == "a.b" && rs[0].ResourceValue == "second"
		})).Return(nil).Once()

		result, err := f.svc.ImportResourcesFromXML(ctx, lang.ID, strings.NewReader(doc))

		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
		assert.Equal(t, []string{" "}, result.Skipped)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := f.svc.ImportResourcesFromXML(ctx, lang.ID, strings.NewReader("<Language><oops"))

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_RESOURCE_XML", de.Code)
	})

	t.Run("unknown language", func(t *testing.T) {
		missing := uuid.New()
		f.languages.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		_, err := f.svc.ImportResourcesFromXML(ctx, missing, strings.NewReader("<Language/>"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
