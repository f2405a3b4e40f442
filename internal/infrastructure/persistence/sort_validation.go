package persistence

import (
	"strings"

	"github.com/travelpkg/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// PackageSortFields contains allowed sort fields for packages
var PackageSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"title":        true,
	"price":        true,
	"rating":       true,
	"review_count": true,
	"duration":     true,
}

// ReservationSortFields contains allowed sort fields for reservations
var ReservationSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"departure_date": true,
	"total_price":    true,
	"travelers":      true,
	"status":         true,
}

// NoticeSortFields contains allowed sort fields for notices
var NoticeSortFields = map[string]bool{
	"created_at": true,
	"title":      true,
}

// orderAndPage applies whitelisted ordering and pagination. id breaks ties so
// pages are stable when the sort column has duplicates.
func orderAndPage(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
