package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/discount"
)

// DiscountManager maintains a store's discounts
type DiscountManager interface {
	GetAllDiscounts(ctx context.Context, storeID uuid.UUID, discountType *discount.Type, includeExpired bool) ([]discount.Discount, error)
	GetDiscount(ctx context.Context, storeID, id uuid.UUID) (*discount.Discount, error)
	SaveDiscount(ctx context.Context, d *discount.Discount) error
	DeleteDiscount(ctx context.Context, storeID, id uuid.UUID) error
}

// DiscountRequest creates or updates a discount. The type cannot change
// after creation.
type DiscountRequest struct {
	Name                  string           `json:"name" binding:"required,max=200"`
	DiscountType          discount.Type    `json:"discount_type" binding:"required,oneof=order_total skus categories shipping order_subtotal"`
	UsePercentage         bool             `json:"use_percentage"`
	DiscountPercentage    decimal.Decimal  `json:"discount_percentage"`
	DiscountAmount        decimal.Decimal  `json:"discount_amount"`
	MaximumDiscountAmount *decimal.Decimal `json:"maximum_discount_amount"`
	StartDate             *time.Time       `json:"start_date"`
	EndDate               *time.Time       `json:"end_date"`
	CouponCode            string           `json:"coupon_code" binding:"max=100"`
	Limitation            string           `json:"limitation" binding:"omitempty,oneof=unlimited n_times_only n_times_per_customer"`
	LimitationTimes       int              `json:"limitation_times" binding:"min=0"`
	ProductIDs            []uuid.UUID      `json:"product_ids"`
	CategoryIDs           []uuid.UUID      `json:"category_ids"`
}

// DiscountQuery filters the discount list
type DiscountQuery struct {
	Type           string `form:"type" binding:"omitempty,oneof=order_total skus categories shipping order_subtotal"`
	IncludeExpired bool   `form:"include_expired"`
}

// DiscountResponse is a discount with its rules
type DiscountResponse struct {
	ID                    uuid.UUID        `json:"id"`
	Name                  string           `json:"name"`
	DiscountType          discount.Type    `json:"discount_type"`
	UsePercentage         bool             `json:"use_percentage"`
	DiscountPercentage    decimal.Decimal  `json:"discount_percentage"`
	DiscountAmount        decimal.Decimal  `json:"discount_amount"`
	MaximumDiscountAmount *decimal.Decimal `json:"maximum_discount_amount,omitempty"`
	StartDate             *time.Time       `json:"start_date,omitempty"`
	EndDate               *time.Time       `json:"end_date,omitempty"`
	RequiresCouponCode    bool             `json:"requires_coupon_code"`
	CouponCode            string           `json:"coupon_code,omitempty"`
	Limitation            string           `json:"limitation"`
	LimitationTimes       int              `json:"limitation_times"`
	ProductIDs            []uuid.UUID      `json:"product_ids"`
	CategoryIDs           []uuid.UUID      `json:"category_ids"`
}

func toDiscountResponse(d *discount.Discount) DiscountResponse {
	return DiscountResponse{
		ID:                    d.ID,
		Name:                  d.Name,
		DiscountType:          d.DiscountType,
		UsePercentage:         d.UsePercentage,
		DiscountPercentage:    d.DiscountPercentage,
		DiscountAmount:        d.DiscountAmount,
		MaximumDiscountAmount: d.MaximumDiscountAmount,
		StartDate:             d.StartDate,
		EndDate:               d.EndDate,
		RequiresCouponCode:    d.RequiresCouponCode,
		CouponCode:            d.CouponCode,
		Limitation:            string(d.Limitation),
		LimitationTimes:       d.LimitationTimes,
		ProductIDs:            d.ProductIDs(),
		CategoryIDs:           d.CategoryIDs(),
	}
}

// newDiscount builds a discount through the domain constructors
func (r DiscountRequest) newDiscount(storeID uuid.UUID) (*discount.Discount, error) {
	var d *discount.Discount
	var err error
	if r.UsePercentage {
		d, err = discount.NewPercentageDiscount(storeID, r.Name, r.DiscountType, r.DiscountPercentage)
	} else {
		d, err = discount.NewAmountDiscount(storeID, r.Name, r.DiscountType, r.DiscountAmount)
	}
	if err != nil {
		return nil, err
	}
	return d, r.applyRules(d)
}

// applyRules copies everything but the name, type and value onto d
func (r DiscountRequest) applyRules(d *discount.Discount) error {
	if err := d.SetPeriod(r.StartDate, r.EndDate); err != nil {
		return err
	}
	limitation := discount.Limitation(r.Limitation)
	if limitation == "" {
		limitation = discount.LimitationUnlimited
	}
	if err := d.SetLimitation(limitation, r.LimitationTimes); err != nil {
		return err
	}
	d.SetCouponCode(r.CouponCode)
	d.SetMaximumAmount(r.MaximumDiscountAmount)
	d.ApplyToProducts(r.ProductIDs)
	d.ApplyToCategories(r.CategoryIDs)
	return nil
}

// DiscountAdminHandler manages discounts
type DiscountAdminHandler struct {
	BaseHandler
	discounts DiscountManager
}

// NewDiscountAdminHandler creates a new DiscountAdminHandler
func NewDiscountAdminHandler(discounts DiscountManager) *DiscountAdminHandler {
	return &DiscountAdminHandler{discounts: discounts}
}

// List godoc
// @Summary      List discounts
// @Tags         admin-discounts
// @Produce      json
// @Param        type query string false "Discount type"
// @Param        include_expired query bool false "Include expired discounts"
// @Success      200 {object} dto.Response{data=[]DiscountResponse}
// @Security     BearerAuth
// @Router       /admin/discounts [get]
func (h *DiscountAdminHandler) List(c *gin.Context) {
	var q DiscountQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var typ *discount.Type
	if q.Type != "" {
		t := discount.Type(q.Type)
		typ = &t
	}
	all, err := h.discounts.GetAllDiscounts(c.Request.Context(), storeID(c), typ, q.IncludeExpired)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]DiscountResponse, len(all))
	for i := range all {
		out[i] = toDiscountResponse(&all[i])
	}
	h.Success(c, out)
}

// Get godoc
// @Summary      Get a discount
// @Tags         admin-discounts
// @Produce      json
// @Param        id path string true "Discount ID"
// @Success      200 {object} dto.Response{data=DiscountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/discounts/{id} [get]
func (h *DiscountAdminHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.discounts.GetDiscount(c.Request.Context(), storeID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDiscountResponse(d))
}

// Create godoc
// @Summary      Create a discount
// @Tags         admin-discounts
// @Accept       json
// @Produce      json
// @Param        request body DiscountRequest true "Discount"
// @Success      201 {object} dto.Response{data=DiscountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/discounts [post]
func (h *DiscountAdminHandler) Create(c *gin.Context) {
	var req DiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	d, err := req.newDiscount(storeID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.discounts.SaveDiscount(c.Request.Context(), d); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toDiscountResponse(d))
}

// Update godoc
// @Summary      Update a discount
// @Tags         admin-discounts
// @Accept       json
// @Produce      json
// @Param        id path string true "Discount ID"
// @Param        request body DiscountRequest true "Discount"
// @Success      200 {object} dto.Response{data=DiscountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/discounts/{id} [put]
func (h *DiscountAdminHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req DiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	d, err := h.discounts.GetDiscount(ctx, storeID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if req.DiscountType != d.DiscountType {
		h.UnprocessableEntity(c, "DISCOUNT_TYPE_IMMUTABLE", "The discount type cannot be changed")
		return
	}
	if err := d.Update(req.Name, req.UsePercentage, req.DiscountPercentage, req.DiscountAmount); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := req.applyRules(d); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.discounts.SaveDiscount(ctx, d); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDiscountResponse(d))
}

// Delete godoc
// @Summary      Delete a discount
// @Tags         admin-discounts
// @Param        id path string true "Discount ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/discounts/{id} [delete]
func (h *DiscountAdminHandler) Delete(c *gin.Context) {
	h.deleteByID(c, h.discounts.DeleteDiscount)
}
