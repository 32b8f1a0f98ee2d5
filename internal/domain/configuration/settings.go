package configuration

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogSettings controls catalog browsing and search
type CatalogSettings struct {
	DefaultPageSize               int
	ProductSearchPageSize         int
	SearchTermMinimumLength       int
	ShowProductsFromSubcategories bool
	NewProductsNumber             int
	IgnoreDiscounts               bool
	PageSizeOptions               []string
}

// DefaultCatalogSettings returns the out-of-the-box catalog settings
func DefaultCatalogSettings() CatalogSettings {
	return CatalogSettings{
		DefaultPageSize:         6,
		ProductSearchPageSize:   6,
		SearchTermMinimumLength: 3,
		NewProductsNumber:       6,
		PageSizeOptions:         []string{"6", "3", "9"},
	}
}

// ShoppingCartSettings limits carts and wishlists
type ShoppingCartSettings struct {
	MaximumShoppingCartItems    int
	MaximumWishlistItems        int
	AllowCartItemEditing        bool
	MoveItemsFromWishlistToCart bool
	CartsSharedBetweenStores    bool
}

// DefaultShoppingCartSettings returns the out-of-the-box cart settings
func DefaultShoppingCartSettings() ShoppingCartSettings {
	return ShoppingCartSettings{
		MaximumShoppingCartItems:    1000,
		MaximumWishlistItems:        1000,
		AllowCartItemEditing:        true,
		MoveItemsFromWishlistToCart: true,
	}
}

// OrderSettings controls checkout rules
type OrderSettings struct {
	MinOrderSubtotalAmount     decimal.Decimal
	MinOrderTotalAmount        decimal.Decimal
	AnonymousCheckoutAllowed   bool
	IsReOrderAllowed           bool
	CompleteOrderWhenDelivered bool
}

// DefaultOrderSettings returns the out-of-the-box order settings
func DefaultOrderSettings() OrderSettings {
	return OrderSettings{
		MinOrderSubtotalAmount:     decimal.Zero,
		MinOrderTotalAmount:        decimal.Zero,
		IsReOrderAllowed:           true,
		CompleteOrderWhenDelivered: true,
	}
}

// CustomerSettings controls registration and guest cleanup
type CustomerSettings struct {
	PasswordMinLength               int
	UsernamesEnabled                bool
	DeleteGuestTaskOlderThanMinutes int
	OnlineCustomerMinutes           int
}

// DefaultCustomerSettings returns the out-of-the-box customer settings
func DefaultCustomerSettings() CustomerSettings {
	return CustomerSettings{
		PasswordMinLength:               6,
		DeleteGuestTaskOlderThanMinutes: 1440,
		OnlineCustomerMinutes:           20,
	}
}

// TaxSettings selects the tax provider and taxable extras
type TaxSettings struct {
	ActiveTaxProviderSystemName          string
	PricesIncludeTax                     bool
	ShippingIsTaxable                    bool
	ShippingTaxClassID                   uuid.UUID
	PaymentMethodAdditionalFeeIsTaxable  bool
	PaymentMethodAdditionalFeeTaxClassID uuid.UUID
}

// DefaultTaxSettings returns the out-of-the-box tax settings
func DefaultTaxSettings() TaxSettings {
	return TaxSettings{
		ActiveTaxProviderSystemName: "Tax.FixedRate",
	}
}

// ShippingSettings selects shipping providers and free shipping rules
type ShippingSettings struct {
	ActiveShippingRateComputationMethodSystemNames []string
	FreeShippingOverXEnabled                       bool
	FreeShippingOverXValue                         decimal.Decimal
	ShipToSameAddress                              bool
}

// DefaultShippingSettings returns the out-of-the-box shipping settings
func DefaultShippingSettings() ShippingSettings {
	return ShippingSettings{
		ActiveShippingRateComputationMethodSystemNames: []string{"Shipping.FixedRate"},
		FreeShippingOverXValue:                         decimal.Zero,
		ShipToSameAddress:                              true,
	}
}

// PaymentSettings selects the payment methods offered at checkout
type PaymentSettings struct {
	ActivePaymentMethodSystemNames        []string
	AllowRePostingPayments                bool
	BypassPaymentMethodSelectionIfOnlyOne bool
}

// DefaultPaymentSettings returns the out-of-the-box payment settings
func DefaultPaymentSettings() PaymentSettings {
	return PaymentSettings{
		ActivePaymentMethodSystemNames:        []string{"Payments.CheckMoneyOrder", "Payments.Manual"},
		AllowRePostingPayments:                true,
		BypassPaymentMethodSelectionIfOnlyOne: true,
	}
}

// CurrencySettings configures the primary currency and rate updates
type CurrencySettings struct {
	PrimaryStoreCurrencyCode             string
	PrimaryExchangeRateCurrencyCode      string
	ActiveExchangeRateProviderSystemName string
	AutoUpdateEnabled                    bool
	DisplayCurrencyLabel                 bool
}

// DefaultCurrencySettings returns the out-of-the-box currency settings
func DefaultCurrencySettings() CurrencySettings {
	return CurrencySettings{
		PrimaryStoreCurrencyCode:             "USD",
		PrimaryExchangeRateCurrencyCode:      "USD",
		ActiveExchangeRateProviderSystemName: "CurrencyExchange.ECB",
	}
}

// LocalizationSettings configures language resolution
type LocalizationSettings struct {
	DefaultAdminLanguageID        uuid.UUID
	LoadAllLocaleRecordsOnStartup bool
}

// DefaultLocalizationSettings returns the out-of-the-box localization settings
func DefaultLocalizationSettings() LocalizationSettings {
	return LocalizationSettings{LoadAllLocaleRecordsOnStartup: true}
}

// NewsSettings controls the news section
type NewsSettings struct {
	Enabled                                bool
	AllowNotRegisteredUsersToLeaveComments bool
	NewsCommentsMustBeApproved             bool
	MainPageNewsCount                      int
	NewsArchivePageSize                    int
}

// DefaultNewsSettings returns the out-of-the-box news settings
func DefaultNewsSettings() NewsSettings {
	return NewsSettings{
		Enabled:             true,
		MainPageNewsCount:   3,
		NewsArchivePageSize: 10,
	}
}

// BlogSettings controls the blog section
type BlogSettings struct {
	Enabled                                bool
	PostsPageSize                          int
	AllowNotRegisteredUsersToLeaveComments bool
	BlogCommentsMustBeApproved             bool
	NumberOfTags                           int
}

// DefaultBlogSettings returns the out-of-the-box blog settings
func DefaultBlogSettings() BlogSettings {
	return BlogSettings{
		Enabled:       true,
		PostsPageSize: 10,
		NumberOfTags:  15,
	}
}

// WidgetSettings selects active widget plugins
type WidgetSettings struct {
	ActiveWidgetSystemNames []string
}

// CommonSettings holds cross-cutting runtime knobs
type CommonSettings struct {
	StaticCacheTimeout time.Duration
	SitemapEnabled     bool
}

// DefaultCommonSettings returns the out-of-the-box common settings
func DefaultCommonSettings() CommonSettings {
	return CommonSettings{
		StaticCacheTimeout: time.Hour,
		SitemapEnabled:     true,
	}
}
