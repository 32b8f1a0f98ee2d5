package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	localizationapp "github.com/storefront/backend/internal/application/localization"
	"github.com/storefront/backend/internal/domain/localization"
)

const xmlContentType = "application/xml; charset=utf-8"

// LocalizationService reads and maintains languages, resources and
// localized entity values
type LocalizationService interface {
	GetAllLanguages(ctx context.Context, showHidden bool) ([]localization.Language, error)
	GetLanguageByID(ctx context.Context, id uuid.UUID) (*localization.Language, error)
	CreateLanguage(ctx context.Context, req localizationapp.LanguageRequest) (*localization.Language, error)
	UpdateLanguage(ctx context.Context, id uuid.UUID, req localizationapp.LanguageRequest) (*localization.Language, error)
	DeleteLanguage(ctx context.Context, id uuid.UUID) error
	GetAllResourceValues(ctx context.Context, languageID uuid.UUID) (map[string]string, error)
	SetResource(ctx context.Context, languageID uuid.UUID, name, value string) (*localization.LocaleStringResource, error)
	DeleteResource(ctx context.Context, id uuid.UUID) error
	SaveLocalizedValue(ctx context.Context, entityID uuid.UUID, keyGroup, key string, languageID uuid.UUID, value string) error
	GetLocalizedValues(ctx context.Context, entityID uuid.UUID, keyGroup string) ([]localization.LocalizedProperty, error)
	ExportResourcesToXML(ctx context.Context, languageID uuid.UUID, w io.Writer) error
	ImportResourcesFromXML(ctx context.Context, languageID uuid.UUID, r io.Reader) (*localizationapp.ImportResult, error)
}

// LanguageResponse is a display language
type LanguageResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	LanguageCulture   string    `json:"language_culture"`
	UniqueSeoCode     string    `json:"unique_seo_code"`
	FlagImageFileName string    `json:"flag_image_file_name,omitempty"`
	Rtl               bool      `json:"rtl"`
	Published         bool      `json:"published"`
	DisplayOrder      int       `json:"display_order"`
}

// ResourceResponse is one stored resource string
type ResourceResponse struct {
	ID         uuid.UUID `json:"id"`
	LanguageID uuid.UUID `json:"language_id"`
	Name       string    `json:"name"`
	Value      string    `json:"value"`
}

// LocalizedValueResponse is a stored translation of an entity field
type LocalizedValueResponse struct {
	LanguageID     uuid.UUID `json:"language_id"`
	LocaleKeyGroup string    `json:"locale_key_group"`
	LocaleKey      string    `json:"locale_key"`
	LocaleValue    string    `json:"locale_value"`
}

func toLanguageResponse(l *localization.Language) LanguageResponse {
	return LanguageResponse{
		ID:                l.ID,
		Name:              l.Name,
		LanguageCulture:   l.LanguageCulture,
		UniqueSeoCode:     l.UniqueSeoCode,
		FlagImageFileName: l.FlagImageFileName,
		Rtl:               l.Rtl,
		Published:         l.Published,
		DisplayOrder:      l.DisplayOrder,
	}
}

// LocalizationHandler serves languages and resource strings
type LocalizationHandler struct {
	BaseHandler
	localization LocalizationService
}

// NewLocalizationHandler creates a new LocalizationHandler
func NewLocalizationHandler(svc LocalizationService) *LocalizationHandler {
	return &LocalizationHandler{localization: svc}
}

// ListLanguages godoc
// @Summary      Published languages
// @Tags         localization
// @Produce      json
// @Success      200 {object} dto.Response{data=[]LanguageResponse}
// @Router       /languages [get]
func (h *LocalizationHandler) ListLanguages(c *gin.Context) {
	h.listLanguages(c, false)
}

// AdminListLanguages godoc
// @Summary      All languages
// @Tags         admin-localization
// @Produce      json
// @Success      200 {object} dto.Response{data=[]LanguageResponse}
// @Security     BearerAuth
// @Router       /admin/languages [get]
func (h *LocalizationHandler) AdminListLanguages(c *gin.Context) {
	h.listLanguages(c, true)
}

func (h *LocalizationHandler) listLanguages(c *gin.Context, showHidden bool) {
	langs, err := h.localization.GetAllLanguages(c.Request.Context(), showHidden)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]LanguageResponse, len(langs))
	for i := range langs {
		out[i] = toLanguageResponse(&langs[i])
	}
	h.Success(c, out)
}

// Resources godoc
// @Summary      Resource strings of a language
// @Description  Returns every resource as a name to value map; names are lower-case
// @Tags         localization
// @Produce      json
// @Param        id path string true "Language ID"
// @Success      200 {object} dto.Response{data=map[string]string}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /languages/{id}/resources [get]
func (h *LocalizationHandler) Resources(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	lang, err := h.localization.GetLanguageByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !lang.Published && !isAdmin(c) {
		h.NotFound(c, "Language not found")
		return
	}
	values, err := h.localization.GetAllResourceValues(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, values)
}

// CreateLanguage godoc
// @Summary      Create a language
// @Tags         admin-localization
// @Accept       json
// @Produce      json
// @Param        request body localizationapp.LanguageRequest true "Language"
// @Success      201 {object} dto.Response{data=LanguageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/languages [post]
func (h *LocalizationHandler) CreateLanguage(c *gin.Context) {
	var req localizationapp.LanguageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lang, err := h.localization.CreateLanguage(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toLanguageResponse(lang))
}

// UpdateLanguage godoc
// @Summary      Update a language
// @Tags         admin-localization
// @Accept       json
// @Produce      json
// @Param        id path string true "Language ID"
// @Param        request body localizationapp.LanguageRequest true "Language"
// @Success      200 {object} dto.Response{data=LanguageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/languages/{id} [put]
func (h *LocalizationHandler) UpdateLanguage(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req localizationapp.LanguageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lang, err := h.localization.UpdateLanguage(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLanguageResponse(lang))
}

// DeleteLanguage godoc
// @Summary      Delete a language
// @Description  The last published language cannot be deleted
// @Tags         admin-localization
// @Param        id path string true "Language ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/languages/{id} [delete]
func (h *LocalizationHandler) DeleteLanguage(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.localization.DeleteLanguage(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetResource godoc
// @Summary      Create or update a resource string
// @Tags         admin-localization
// @Accept       json
// @Produce      json
// @Param        id path string true "Language ID"
// @Param        request body localizationapp.ResourceRequest true "Resource"
// @Success      200 {object} dto.Response{data=ResourceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/languages/{id}/resources [put]
func (h *LocalizationHandler) SetResource(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req localizationapp.ResourceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.localization.SetResource(c.Request.Context(), id, req.Name, req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ResourceResponse{ID: res.ID, LanguageID: res.LanguageID, Name: res.ResourceName, Value: res.ResourceValue})
}

// DeleteResource godoc
// @Summary      Delete a resource string
// @Tags         admin-localization
// @Param        id path string true "Resource ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/resources/{id} [delete]
func (h *LocalizationHandler) DeleteResource(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.localization.DeleteResource(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ExportResources godoc
// @Summary      Export resource strings as XML
// @Tags         admin-localization
// @Produce      xml
// @Param        id path string true "Language ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/languages/{id}/resources/export [get]
func (h *LocalizationHandler) ExportResources(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.localization.ExportResourcesToXML(c.Request.Context(), id, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="language_pack_%s.xml"`, id))
	c.Data(http.StatusOK, xmlContentType, buf.Bytes())
}

// ImportResources godoc
// @Summary      Import resource strings from XML
// @Description  Upserts the resources in the uploaded language pack; other resources are kept
// @Tags         admin-localization
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Language ID"
// @Param        file formData file true "Language pack"
// @Success      200 {object} dto.Response{data=localizationapp.ImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/languages/{id}/resources/import [post]
func (h *LocalizationHandler) ImportResources(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	data, _, ok := h.readUpload(c, maxImportUploadBytes)
	if !ok {
		return
	}
	result, err := h.localization.ImportResourcesFromXML(c.Request.Context(), id, bytes.NewReader(data))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SaveLocalizedValue godoc
// @Summary      Store a translation of an entity field
// @Tags         admin-localization
// @Accept       json
// @Param        entityId path string true "Entity ID"
// @Param        request body localizationapp.LocalizedValueRequest true "Localized value"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/localized/{entityId} [put]
func (h *LocalizationHandler) SaveLocalizedValue(c *gin.Context) {
	entityID, ok := h.pathID(c, "entityId")
	if !ok {
		return
	}
	var req localizationapp.LocalizedValueRequest
	if !h.bindJSON(c, &req) {
		return
	}
	err := h.localization.SaveLocalizedValue(c.Request.Context(), entityID, req.LocaleKeyGroup, req.LocaleKey, uuid.MustParse(req.LanguageID), req.LocaleValue)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// LocalizedValues godoc
// @Summary      Translations of an entity
// @Tags         admin-localization
// @Produce      json
// @Param        entityId path string true "Entity ID"
// @Param        group query string true "Locale key group, e.g. Product"
// @Success      200 {object} dto.Response{data=[]LocalizedValueResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/localized/{entityId} [get]
func (h *LocalizationHandler) LocalizedValues(c *gin.Context) {
	entityID, ok := h.pathID(c, "entityId")
	if !ok {
		return
	}
	group := c.Query("group")
	if group == "" {
		h.BadRequest(c, "group is required")
		return
	}
	props, err := h.localization.GetLocalizedValues(c.Request.Context(), entityID, group)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]LocalizedValueResponse, len(props))
	for i, p := range props {
		out[i] = LocalizedValueResponse{LanguageID: p.LanguageID, LocaleKeyGroup: p.LocaleKeyGroup, LocaleKey: p.LocaleKey, LocaleValue: p.LocaleValue}
	}
	h.Success(c, out)
}
