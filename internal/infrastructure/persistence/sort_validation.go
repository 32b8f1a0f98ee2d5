package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"email":            true,
	"username":         true,
	"last_activity_at": true,
}

// ManufacturerSortFields contains allowed sort fields for manufacturers
var ManufacturerSortFields = map[string]bool{
	"id":            true,
	"updated_at":    true,
	"created_at":    true,
	"name":          true,
	"display_order": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":             true,
	"updated_at":     true,
	"created_at":     true,
	"order_total":    true,
	"order_status":   true,
	"payment_status": true,
}

// NewsSortFields contains allowed sort fields for news items
var NewsSortFields = map[string]bool{
	"id":         true,
	"updated_at": true,
	"created_at": true,
	"title":      true,
	"start_date": true,
}

// SubscriptionSortFields contains allowed sort fields for newsletter subscriptions
var SubscriptionSortFields = map[string]bool{
	"id":         true,
	"updated_at": true,
	"created_at": true,
	"email":      true,
}
