package persistence

import (
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/scheduling"
	"github.com/storefront/backend/internal/domain/store"
)

// Models lists every persisted entity in dependency order
func Models() []any {
	return []any{
		&store.Store{},
		&configuration.Setting{},
		&directory.Country{},
		&directory.StateProvince{},
		&directory.Currency{},
		&localization.Language{},
		&localization.LocaleStringResource{},
		&localization.LocalizedProperty{},
		&customer.CustomerRole{},
		&customer.Customer{},
		&catalog.Category{},
		&catalog.Manufacturer{},
		&catalog.Picture{},
		&catalog.Product{},
		&catalog.ProductCategory{},
		&catalog.ProductManufacturer{},
		&catalog.ProductPicture{},
		&discount.Discount{},
		&discount.UsageHistory{},
		&cart.Item{},
		&order.Order{},
		&order.Item{},
		&order.Note{},
		&content.Poll{},
		&content.PollAnswer{},
		&content.PollVotingRecord{},
		&content.NewsItem{},
		&content.NewsComment{},
		&content.BlogPost{},
		&content.BlogComment{},
		&content.NewsLetterSubscription{},
		&scheduling.ScheduleTask{},
		&plugin.InstalledPlugin{},
	}
}
