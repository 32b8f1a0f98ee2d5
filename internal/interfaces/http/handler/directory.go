package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
)

// CountryReader lists countries and their subdivisions
type CountryReader interface {
	GetAllCountries(ctx context.Context, showHidden bool) ([]directory.Country, error)
	GetAllCountriesForBilling(ctx context.Context) ([]directory.Country, error)
	GetAllCountriesForShipping(ctx context.Context) ([]directory.Country, error)
	GetStateProvincesByCountryID(ctx context.Context, countryID uuid.UUID, showHidden bool) ([]directory.StateProvince, error)
}

// CurrencyManager lists and maintains currencies
type CurrencyManager interface {
	GetAllCurrencies(ctx context.Context, showHidden bool) ([]directory.Currency, error)
	GetCurrencyByCode(ctx context.Context, code string) (*directory.Currency, error)
	SaveCurrency(ctx context.Context, c *directory.Currency) error
	DeleteCurrency(ctx context.Context, storeID, id uuid.UUID) error
	UpdateExchangeRates(ctx context.Context, storeID uuid.UUID) (int, error)
}

// DirectoryHandler serves countries, states and currencies
type DirectoryHandler struct {
	BaseHandler
	countries  CountryReader
	currencies CurrencyManager
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(countries CountryReader, currencies CurrencyManager) *DirectoryHandler {
	return &DirectoryHandler{countries: countries, currencies: currencies}
}

// ListCountries godoc
// @Summary      Published countries
// @Tags         directory
// @Produce      json
// @Param        for query string false "Address kind" Enums(billing, shipping)
// @Success      200 {object} dto.Response{data=[]CountryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /countries [get]
func (h *DirectoryHandler) ListCountries(c *gin.Context) {
	var q CountryQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx := c.Request.Context()
	var countries []directory.Country
	var err error
	switch q.For {
	case "billing":
		countries, err = h.countries.GetAllCountriesForBilling(ctx)
	case "shipping":
		countries, err = h.countries.GetAllCountriesForShipping(ctx)
	default:
		countries, err = h.countries.GetAllCountries(ctx, false)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCountryResponses(countries))
}

// ListStates godoc
// @Summary      Published states of a country
// @Tags         directory
// @Produce      json
// @Param        id path string true "Country ID"
// @Success      200 {object} dto.Response{data=[]StateProvinceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /countries/{id}/states [get]
func (h *DirectoryHandler) ListStates(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	states, err := h.countries.GetStateProvincesByCountryID(c.Request.Context(), id, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStateProvinceResponses(states))
}

// ListCurrencies godoc
// @Summary      Published currencies
// @Tags         directory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]CurrencyResponse}
// @Router       /currencies [get]
func (h *DirectoryHandler) ListCurrencies(c *gin.Context) {
	h.listCurrencies(c, false)
}

// AdminListCurrencies godoc
// @Summary      All currencies
// @Tags         admin-directory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]CurrencyResponse}
// @Security     BearerAuth
// @Router       /admin/currencies [get]
func (h *DirectoryHandler) AdminListCurrencies(c *gin.Context) {
	h.listCurrencies(c, true)
}

func (h *DirectoryHandler) listCurrencies(c *gin.Context, showHidden bool) {
	currencies, err := h.currencies.GetAllCurrencies(c.Request.Context(), showHidden)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCurrencyResponses(currencies))
}

// SaveCurrency godoc
// @Summary      Create or update a currency
// @Tags         admin-directory
// @Accept       json
// @Produce      json
// @Param        code path string true "ISO currency code"
// @Param        request body SaveCurrencyRequest true "Currency"
// @Success      200 {object} dto.Response{data=CurrencyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/currencies/{code} [put]
func (h *DirectoryHandler) SaveCurrency(c *gin.Context) {
	var req SaveCurrencyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	code := strings.ToUpper(c.Param("code"))

	cur, err := h.currencies.GetCurrencyByCode(ctx, code)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		cur, err = directory.NewCurrency(req.Name, code, req.Rate, req.DisplayLocale)
		if err == nil {
			err = cur.Update(req.Name, req.Rate, req.DisplayLocale, req.CustomFormatting, req.Published, req.DisplayOrder)
		}
	case err == nil:
		err = cur.Update(req.Name, req.Rate, req.DisplayLocale, req.CustomFormatting, req.Published, req.DisplayOrder)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.currencies.SaveCurrency(ctx, cur); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCurrencyResponse(cur))
}

// DeleteCurrency godoc
// @Summary      Delete a currency
// @Description  Primary store and exchange rate currencies cannot be deleted
// @Tags         admin-directory
// @Param        id path string true "Currency ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/currencies/{id} [delete]
func (h *DirectoryHandler) DeleteCurrency(c *gin.Context) {
	h.deleteByID(c, h.currencies.DeleteCurrency)
}

// UpdateExchangeRates godoc
// @Summary      Pull live exchange rates
// @Tags         admin-directory
// @Produce      json
// @Success      200 {object} dto.Response{data=UpdateRatesResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/currencies/update-rates [post]
func (h *DirectoryHandler) UpdateExchangeRates(c *gin.Context) {
	n, err := h.currencies.UpdateExchangeRates(c.Request.Context(), storeID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, UpdateRatesResponse{Updated: n})
}
