package catalog

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// Season is the travel season derived from a package's first departure
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// IsValid checks if the season is one of the four known values
func (s Season) IsValid() bool {
	switch s {
	case SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter:
		return true
	}
	return false
}

// SeasonForMonth maps a calendar month onto its quarter season
func SeasonForMonth(m time.Month) Season {
	switch m {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

// ConflictKey selects the column used to deduplicate packages on bulk upsert
type ConflictKey string

const (
	ConflictKeyID   ConflictKey = "id"
	ConflictKeySlug ConflictKey = "slug"
)

// IsValid checks if the conflict key is supported
func (k ConflictKey) IsValid() bool {
	return k == ConflictKeyID || k == ConflictKeySlug
}

// ParseConflictKey parses a conflict key, defaulting to id when empty
func ParseConflictKey(s string) (ConflictKey, error) {
	if s == "" {
		return ConflictKeyID, nil
	}
	k := ConflictKey(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", shared.NewValidationError("conflictKey", "conflict key must be one of: id, slug")
	}
	return k, nil
}

// ItineraryDay is a single day of a package itinerary
type ItineraryDay struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// Package is a sellable travel offering.
// It is the aggregate root of the catalog.
type Package struct {
	shared.BaseAggregateRoot
	Source         SourceKind
	SourceKey      string
	Slug           string
	Title          string
	Destination    string
	Description    string
	Price          int64
	DiscountPrice  *int64
	Duration       *int
	DepartureDates []string
	Images         []string
	Rating         *float64
	ReviewCount    int
	Category       string
	Season         *Season
	Inclusions     []string
	Exclusions     []string
	IsFeatured     bool
	IsOnSale       bool
	Itinerary      []ItineraryDay
}

// Column limits, in characters
const (
	MaxTitleLength       = 200
	MaxDestinationLength = 200
	MaxCategoryLength    = 50
	MaxSlugLength        = 255
	MaxSourceKeyLength   = 255
)

// Validate checks the package invariants
func (p *Package) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return shared.NewValidationError("title", "title cannot be empty")
	}
	if err := maxChars("title", p.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := maxChars("destination", p.Destination, MaxDestinationLength); err != nil {
		return err
	}
	if err := maxChars("category", p.Category, MaxCategoryLength); err != nil {
		return err
	}
	if err := maxChars("slug", p.Slug, MaxSlugLength); err != nil {
		return err
	}
	if err := maxChars("sourceKey", p.SourceKey, MaxSourceKeyLength); err != nil {
		return err
	}
	if p.Price < 0 {
		return shared.NewValidationError("price", "price cannot be negative")
	}
	if p.DiscountPrice != nil {
		if *p.DiscountPrice < 0 {
			return shared.NewValidationError("discountPrice", "discount price cannot be negative")
		}
		if *p.DiscountPrice > p.Price {
			return shared.NewValidationError("discountPrice", "discount price cannot exceed price")
		}
	}
	if p.Duration != nil && *p.Duration <= 0 {
		return shared.NewValidationError("duration", "duration must be positive")
	}
	if len(p.Images) == 0 {
		return shared.NewValidationError("images", "at least one image is required")
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return shared.NewValidationError("rating", "rating must be between 0 and 5")
	}
	if p.ReviewCount < 0 {
		return shared.NewValidationError("reviewCount", "review count cannot be negative")
	}
	if p.Season != nil && !p.Season.IsValid() {
		return shared.NewValidationError("season", "season must be one of spring, summer, fall, winter")
	}
	return nil
}

func maxChars(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return shared.NewValidationError(field, field+" cannot exceed "+strconv.Itoa(limit)+" characters")
	}
	return nil
}

// EffectivePrice returns the discounted price when present, otherwise the list price
func (p *Package) EffectivePrice() int64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// ApplyChanges copies the editable content of next onto p, keeping identity,
// version and creation time. The repository bumps the version on save.
func (p *Package) ApplyChanges(next *Package) error {
	if err := next.Validate(); err != nil {
		return err
	}

	p.Slug = PackageSlug(next.Title, next.Destination, p.ID)
	p.Title = next.Title
	p.Destination = next.Destination
	p.Description = next.Description
	p.Price = next.Price
	p.DiscountPrice = next.DiscountPrice
	p.Duration = next.Duration
	p.DepartureDates = next.DepartureDates
	p.Images = next.Images
	p.Rating = next.Rating
	p.ReviewCount = next.ReviewCount
	p.Category = next.Category
	p.Season = next.Season
	p.Inclusions = next.Inclusions
	p.Exclusions = next.Exclusions
	p.IsFeatured = next.IsFeatured
	p.IsOnSale = next.IsOnSale
	p.Itinerary = next.Itinerary
	p.Touch()

	p.AddDomainEvent(NewPackageUpdatedEvent(p))
	return nil
}

// MarkDeleted records the deletion event for a package about to be removed
func (p *Package) MarkDeleted() {
	p.AddDomainEvent(NewPackageDeletedEvent(p.ID, p.Slug))
}

// IDs returns the ids of the given packages, order preserved
func IDs(pkgs []*Package) []uuid.UUID {
	ids := make([]uuid.UUID, len(pkgs))
	for i, p := range pkgs {
		ids[i] = p.ID
	}
	return ids
}

var _ shared.AggregateRoot = (*Package)(nil)
