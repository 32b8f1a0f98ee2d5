package handler

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	localizationapp "github.com/storefront/backend/internal/application/localization"
	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

type MockLocalization struct {
	mock.Mock
}

func (m *MockLocalization) GetAllLanguages(ctx context.Context, showHidden bool) ([]localization.Language, error) {
	args := m.Called(ctx, showHidden)
	return args.Get(0).([]localization.Language), args.Error(1)
}

func (m *MockLocalization) GetLanguageByID(ctx context.Context, id uuid.UUID) (*localization.Language, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*localization.Language), args.Error(1)
}

func (m *MockLocalization) CreateLanguage(ctx context.Context, req localizationapp.LanguageRequest) (*localization.Language, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*localization.Language), args.Error(1)
}

func (m *MockLocalization) UpdateLanguage(ctx context.Context, id uuid.UUID, req localizationapp.LanguageRequest) (*localization.Language, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*localization.Language), args.Error(1)
}

func (m *MockLocalization) DeleteLanguage(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLocalization) GetAllResourceValues(ctx context.Context, languageID uuid.UUID) (map[string]string, error) {
	args := m.Called(ctx, languageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockLocalization) SetResource(ctx context.Context, languageID uuid.UUID, name, value string) (*localization.LocaleStringResource, error) {
	args := m.Called(ctx, languageID, name, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*localization.LocaleStringResource), args.Error(1)
}

func (m *MockLocalization) DeleteResource(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLocalization) SaveLocalizedValue(ctx context.Context, entityID uuid.UUID, keyGroup, key string, languageID uuid.UUID, value string) error {
	return m.Called(ctx, entityID, keyGroup, key, languageID, value).Error(0)
}

func (m *MockLocalization) GetLocalizedValues(ctx context.Context, entityID uuid.UUID, keyGroup string) ([]localization.LocalizedProperty, error) {
	args := m.Called(ctx, entityID, keyGroup)
	return args.Get(0).([]localization.LocalizedProperty), args.Error(1)
}

func (m *MockLocalization) ExportResourcesToXML(ctx context.Context, languageID uuid.UUID, w io.Writer) error {
	args := m.Called(ctx, languageID, w)
	if data, ok := args.Get(1).(string); ok {
		_, _ = io.WriteString(w, data)
	}
	return args.Error(0)
}

func (m *MockLocalization) ImportResourcesFromXML(ctx context.Context, languageID uuid.UUID, r io.Reader) (*localizationapp.ImportResult, error) {
	args := m.Called(ctx, languageID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*localizationapp.ImportResult), args.Error(1)
}

func testLanguage(t *testing.T, published bool) *localization.Language {
	t.Helper()
	lang, err := localization.NewLanguage("German", "de-DE", "de")
	require.NoError(t, err)
	lang.Update(lang.Name, false, published, 2)
	return lang
}

func TestLocalizationHandler_Resources(t *testing.T) {
	t.Run("published language", func(t *testing.T) {
		svc := new(MockLocalization)
		h := NewLocalizationHandler(svc)
		lang := testLanguage(t, true)
		svc.On("GetLanguageByID", mock.Anything, lang.ID).Return(lang, nil)
		svc.On("GetAllResourceValues", mock.Anything, lang.ID).Return(map[string]string{"shoppingcart.title": "Warenkorb"}, nil)

		c, w := newTestContext(http.MethodGet, "/api/v1/languages/"+lang.ID.String()+"/resources", nil)
		withParams(c, "id", lang.ID.String())
		h.Resources(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var values map[string]string
		decodeData(t, w, &values)
		assert.Equal(t, "Warenkorb", values["shoppingcart.title"])
	})

	t.Run("unpublished language is hidden from customers", func(t *testing.T) {
		svc := new(MockLocalization)
		h := NewLocalizationHandler(svc)
		lang := testLanguage(t, false)
		svc.On("GetLanguageByID", mock.Anything, lang.ID).Return(lang, nil)

		c, w := newTestContext(http.MethodGet, "/api/v1/languages/"+lang.ID.String()+"/resources", nil)
		withParams(c, "id", lang.ID.String())
		withClaims(c, uuid.New(), "Registered")
		h.Resources(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertNotCalled(t, "GetAllResourceValues", mock.Anything, mock.Anything)
	})

	t.Run("unpublished language is visible to administrators", func(t *testing.T) {
		svc := new(MockLocalization)
		h := NewLocalizationHandler(svc)
		lang := testLanguage(t, false)
		svc.On("GetLanguageByID", mock.Anything, lang.ID).Return(lang, nil)
		svc.On("GetAllResourceValues", mock.Anything, lang.ID).Return(map[string]string{}, nil)

		c, w := newTestContext(http.MethodGet, "/api/v1/languages/"+lang.ID.String()+"/resources", nil)
		withParams(c, "id", lang.ID.String())
		withClaims(c, uuid.New(), middleware.AdministratorsRole)
		h.Resources(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown language", func(t *testing.T) {
		svc := new(MockLocalization)
		h := NewLocalizationHandler(svc)
		id := uuid.New()
		svc.On("GetLanguageByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		c, w := newTestContext(http.MethodGet, "/api/v1/languages/"+id.String()+"/resources", nil)
		withParams(c, "id", id.String())
		h.Resources(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLocalizationHandler_ListLanguages(t *testing.T) {
	svc := new(MockLocalization)
	h := NewLocalizationHandler(svc)
	svc.On("GetAllLanguages", mock.Anything, false).Return([]localization.Language{*testLanguage(t, true)}, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/languages", nil)
	h.ListLanguages(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var langs []LanguageResponse
	decodeData(t, w, &langs)
	require.Len(t, langs, 1)
	assert.Equal(t, "de", langs[0].UniqueSeoCode)
	svc.AssertExpectations(t)
}

func TestLocalizationHandler_ExportResources(t *testing.T) {
	svc := new(MockLocalization)
	h := NewLocalizationHandler(svc)
	id := uuid.New()
	pack := `<Language Name="German"><LocaleResource Name="a"><Value>b</Value></LocaleResource></Language>`
	svc.On("ExportResourcesToXML", mock.Anything, id, mock.Anything).Return(nil, pack)

	c, w := newTestContext(http.MethodGet, "/api/v1/admin/languages/"+id.String()+"/resources/export", nil)
	withParams(c, "id", id.String())
	h.ExportResources(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xmlContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "language_pack_"+id.String()+".xml")
	assert.Equal(t, pack, w.Body.String())
}

func TestLocalizationHandler_ImportResources(t *testing.T) {
	svc := new(MockLocalization)
	h := NewLocalizationHandler(svc)
	id := uuid.New()
	svc.On("ImportResourcesFromXML", mock.Anything, id, mock.Anything).
		Return(&localizationapp.ImportResult{Imported: 4}, nil)

	c, w := newUploadContext(t, "file", "pack.xml", []byte(`<Language Name="German"></Language>`))
	withParams(c, "id", id.String())
	h.ImportResources(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var result localizationapp.ImportResult
	decodeData(t, w, &result)
	assert.Equal(t, 4, result.Imported)
}

func TestLocalizationHandler_LocalizedValues(t *testing.T) {
	t.Run("group is required", func(t *testing.T) {
		h := NewLocalizationHandler(new(MockLocalization))
		id := uuid.New()

		c, w := newTestContext(http.MethodGet, "/api/v1/admin/localized/"+id.String(), nil)
		withParams(c, "entityId", id.String())
		h.LocalizedValues(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("save", func(t *testing.T) {
		svc := new(MockLocalization)
		h := NewLocalizationHandler(svc)
		entityID, langID := uuid.New(), uuid.New()
		svc.On("SaveLocalizedValue", mock.Anything, entityID, "Product", "Name", langID, "Hemd").Return(nil)

		c, w := newTestContext(http.MethodPut, "/api/v1/admin/localized/"+entityID.String(), localizationapp.LocalizedValueRequest{
			LocaleKeyGroup: "Product",
			LocaleKey:      "Name",
			LanguageID:     langID.String(),
			LocaleValue:    "Hemd",
		})
		withParams(c, "entityId", entityID.String())
		h.SaveLocalizedValue(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		svc.AssertExpectations(t)
	})
}
