package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	customerapp "github.com/storefront/backend/internal/application/customer"
	storeapp "github.com/storefront/backend/internal/application/store"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/store"
)

// StoreManager maintains stores
type StoreManager interface {
	GetAllStores(ctx context.Context) ([]store.Store, error)
	GetStoreByID(ctx context.Context, id uuid.UUID) (*store.Store, error)
	CreateStore(ctx context.Context, input storeapp.StoreInput) (*store.Store, error)
	UpdateStore(ctx context.Context, id uuid.UUID, input storeapp.StoreInput) (*store.Store, error)
	DeleteStore(ctx context.Context, id uuid.UUID) error
}

// CustomerManager lists customers and roles for the back office
type CustomerManager interface {
	ListCustomers(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (shared.Paginated[customerapp.CustomerInfo], error)
	GetCustomer(ctx context.Context, storeID, id uuid.UUID) (*customer.Customer, error)
	DeleteCustomer(ctx context.Context, storeID, customerID uuid.UUID) error
	GetAllCustomerRoles(ctx context.Context, showHidden bool) ([]customer.CustomerRole, error)
}

// StoreRequest creates or updates a store
type StoreRequest struct {
	Name              string `json:"name" binding:"required,max=400"`
	URL               string `json:"url" binding:"required,url,max=400"`
	SslEnabled        bool   `json:"ssl_enabled"`
	Hosts             string `json:"hosts" binding:"max=1000"`
	CompanyName       string `json:"company_name" binding:"max=1000"`
	CompanyAddress    string `json:"company_address" binding:"max=1000"`
	CompanyPhone      string `json:"company_phone" binding:"max=100"`
	DefaultLanguageID string `json:"default_language_id" binding:"omitempty,uuid"`
	DisplayOrder      int    `json:"display_order"`
}

func (r StoreRequest) toInput() storeapp.StoreInput {
	in := storeapp.StoreInput{
		Name:           r.Name,
		URL:            r.URL,
		SslEnabled:     r.SslEnabled,
		Hosts:          r.Hosts,
		CompanyName:    r.CompanyName,
		CompanyAddress: r.CompanyAddress,
		CompanyPhone:   r.CompanyPhone,
		DisplayOrder:   r.DisplayOrder,
	}
	if r.DefaultLanguageID != "" {
		id := uuid.MustParse(r.DefaultLanguageID)
		in.DefaultLanguageID = &id
	}
	return in
}

// StoreResponse is a store with its host bindings
type StoreResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	URL               string     `json:"url"`
	SslEnabled        bool       `json:"ssl_enabled"`
	Hosts             []string   `json:"hosts"`
	CompanyName       string     `json:"company_name,omitempty"`
	CompanyAddress    string     `json:"company_address,omitempty"`
	CompanyPhone      string     `json:"company_phone,omitempty"`
	DefaultLanguageID *uuid.UUID `json:"default_language_id,omitempty"`
	DisplayOrder      int        `json:"display_order"`
}

func toStoreResponse(s *store.Store) StoreResponse {
	hosts := s.HostValues()
	if hosts == nil {
		hosts = []string{}
	}
	return StoreResponse{
		ID:                s.ID,
		Name:              s.Name,
		URL:               s.URL,
		SslEnabled:        s.SslEnabled,
		Hosts:             hosts,
		CompanyName:       s.CompanyName,
		CompanyAddress:    s.CompanyAddress,
		CompanyPhone:      s.CompanyPhone,
		DefaultLanguageID: s.DefaultLanguageID,
		DisplayOrder:      s.DisplayOrder,
	}
}

// CustomerRoleResponse is a customer role
type CustomerRoleResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SystemName   string    `json:"system_name"`
	Active       bool      `json:"active"`
	FreeShipping bool      `json:"free_shipping"`
	TaxExempt    bool      `json:"tax_exempt"`
	IsSystemRole bool      `json:"is_system_role"`
}

// StoreAdminHandler manages stores, customers and customer roles
type StoreAdminHandler struct {
	BaseHandler
	stores    StoreManager
	customers CustomerManager
}

// NewStoreAdminHandler creates a new StoreAdminHandler
func NewStoreAdminHandler(stores StoreManager, customers CustomerManager) *StoreAdminHandler {
	return &StoreAdminHandler{stores: stores, customers: customers}
}

// ListStores godoc
// @Summary      List stores
// @Tags         admin-stores
// @Produce      json
// @Success      200 {object} dto.Response{data=[]StoreResponse}
// @Security     BearerAuth
// @Router       /admin/stores [get]
func (h *StoreAdminHandler) ListStores(c *gin.Context) {
	stores, err := h.stores.GetAllStores(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]StoreResponse, len(stores))
	for i := range stores {
		out[i] = toStoreResponse(&stores[i])
	}
	h.Success(c, out)
}

// GetStore godoc
// @Summary      Get a store
// @Tags         admin-stores
// @Produce      json
// @Param        id path string true "Store ID"
// @Success      200 {object} dto.Response{data=StoreResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/stores/{id} [get]
func (h *StoreAdminHandler) GetStore(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	st, err := h.stores.GetStoreByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStoreResponse(st))
}

// CreateStore godoc
// @Summary      Create a store
// @Tags         admin-stores
// @Accept       json
// @Produce      json
// @Param        request body StoreRequest true "Store"
// @Success      201 {object} dto.Response{data=StoreResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/stores [post]
func (h *StoreAdminHandler) CreateStore(c *gin.Context) {
	var req StoreRequest
	if !h.bindJSON(c, &req) {
		return
	}
	st, err := h.stores.CreateStore(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toStoreResponse(st))
}

// UpdateStore godoc
// @Summary      Update a store
// @Tags         admin-stores
// @Accept       json
// @Produce      json
// @Param        id path string true "Store ID"
// @Param        request body StoreRequest true "Store"
// @Success      200 {object} dto.Response{data=StoreResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/stores/{id} [put]
func (h *StoreAdminHandler) UpdateStore(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req StoreRequest
	if !h.bindJSON(c, &req) {
		return
	}
	st, err := h.stores.UpdateStore(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toStoreResponse(st))
}

// DeleteStore godoc
// @Summary      Delete a store
// @Description  The last store cannot be deleted
// @Tags         admin-stores
// @Param        id path string true "Store ID"
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/stores/{id} [delete]
func (h *StoreAdminHandler) DeleteStore(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.stores.DeleteStore(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListCustomers godoc
// @Summary      List customers of the current store
// @Tags         admin-customers
// @Produce      json
// @Param        search query string false "Username or email contains"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]customerapp.CustomerInfo,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/customers [get]
func (h *StoreAdminHandler) ListCustomers(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.customers.ListCustomers(c.Request.Context(), storeID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetCustomer godoc
// @Summary      Get a customer
// @Tags         admin-customers
// @Produce      json
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response{data=customerapp.CustomerInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/customers/{id} [get]
func (h *StoreAdminHandler) GetCustomer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cust, err := h.customers.GetCustomer(c.Request.Context(), storeID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customerapp.ToCustomerInfo(cust))
}

// DeleteCustomer godoc
// @Summary      Delete a customer
// @Description  Soft delete; system accounts cannot be deleted
// @Tags         admin-customers
// @Param        id path string true "Customer ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/customers/{id} [delete]
func (h *StoreAdminHandler) DeleteCustomer(c *gin.Context) {
	h.deleteByID(c, h.customers.DeleteCustomer)
}

// ListCustomerRoles godoc
// @Summary      List customer roles
// @Tags         admin-customers
// @Produce      json
// @Success      200 {object} dto.Response{data=[]CustomerRoleResponse}
// @Security     BearerAuth
// @Router       /admin/customer-roles [get]
func (h *StoreAdminHandler) ListCustomerRoles(c *gin.Context) {
	roles, err := h.customers.GetAllCustomerRoles(c.Request.Context(), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]CustomerRoleResponse, len(roles))
	for i, r := range roles {
		out[i] = CustomerRoleResponse{
			ID:           r.ID,
			Name:         r.Name,
			SystemName:   r.SystemName,
			Active:       r.Active,
			FreeShipping: r.FreeShipping,
			TaxExempt:    r.TaxExempt,
			IsSystemRole: r.IsSystemRole,
		}
	}
	h.Success(c, out)
}
