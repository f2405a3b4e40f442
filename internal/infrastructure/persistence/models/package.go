package models

import (
	"github.com/travelpkg/backend/internal/domain/catalog"
	"gorm.io/datatypes"
)

// PackageModel is the persistence model for the Package aggregate.
// Ordered sequences are stored as JSON arrays.
type PackageModel struct {
	AggregateModel
	Source         string `gorm:"type:varchar(20);not null;uniqueIndex:idx_package_source_key,priority:1"`
	SourceKey      string `gorm:"type:varchar(255);not null;uniqueIndex:idx_package_source_key,priority:2"`
	Slug           string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Title          string `gorm:"type:varchar(200);not null"`
	Destination    string `gorm:"type:varchar(200);not null;default:'';index"`
	Description    string `gorm:"type:text;not null;default:''"`
	Price          int64  `gorm:"not null"`
	DiscountPrice  *int64
	Duration       *int
	DepartureDates datatypes.JSONSlice[string] `gorm:"not null"`
	Images         datatypes.JSONSlice[string] `gorm:"not null"`
	Rating         *float64
	ReviewCount    int                                       `gorm:"not null;default:0"`
	Category       string                                    `gorm:"type:varchar(50);not null;index"`
	Season         *string                                   `gorm:"type:varchar(10);index"`
	Inclusions     datatypes.JSONSlice[string]               `gorm:"not null"`
	Exclusions     datatypes.JSONSlice[string]               `gorm:"not null"`
	IsFeatured     bool                                      `gorm:"not null;default:false"`
	IsOnSale       bool                                      `gorm:"not null;default:false"`
	Itinerary      datatypes.JSONSlice[catalog.ItineraryDay] `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PackageModel) TableName() string {
	return "packages"
}

// ToDomain converts the persistence model to a domain Package
func (m *PackageModel) ToDomain() *catalog.Package {
	p := &catalog.Package{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Source:            catalog.SourceKind(m.Source),
		SourceKey:         m.SourceKey,
		Slug:              m.Slug,
		Title:             m.Title,
		Destination:       m.Destination,
		Description:       m.Description,
		Price:             m.Price,
		DiscountPrice:     m.DiscountPrice,
		Duration:          m.Duration,
		DepartureDates:    nonNil(m.DepartureDates),
		Images:            nonNil(m.Images),
		Rating:            m.Rating,
		ReviewCount:       m.ReviewCount,
		Category:          m.Category,
		Inclusions:        nonNil(m.Inclusions),
		Exclusions:        nonNil(m.Exclusions),
		IsFeatured:        m.IsFeatured,
		IsOnSale:          m.IsOnSale,
		Itinerary:         nonNil(m.Itinerary),
	}
	if m.Season != nil {
		s := catalog.Season(*m.Season)
		p.Season = &s
	}
	return p
}

// FromDomain populates the persistence model from a domain Package
func (m *PackageModel) FromDomain(p *catalog.Package) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Source = string(p.Source)
	m.SourceKey = p.SourceKey
	m.Slug = p.Slug
	m.Title = p.Title
	m.Destination = p.Destination
	m.Description = p.Description
	m.Price = p.Price
	m.DiscountPrice = p.DiscountPrice
	m.Duration = p.Duration
	m.DepartureDates = datatypes.NewJSONSlice(nonNil(p.DepartureDates))
	m.Images = datatypes.NewJSONSlice(nonNil(p.Images))
	m.Rating = p.Rating
	m.ReviewCount = p.ReviewCount
	m.Category = p.Category
	m.Season = nil
	if p.Season != nil {
		s := string(*p.Season)
		m.Season = &s
	}
	m.Inclusions = datatypes.NewJSONSlice(nonNil(p.Inclusions))
	m.Exclusions = datatypes.NewJSONSlice(nonNil(p.Exclusions))
	m.IsFeatured = p.IsFeatured
	m.IsOnSale = p.IsOnSale
	m.Itinerary = datatypes.NewJSONSlice(nonNil(p.Itinerary))
}

// PackageModelFromDomain creates a new persistence model from a domain Package
func PackageModelFromDomain(p *catalog.Package) *PackageModel {
	m := &PackageModel{}
	m.FromDomain(p)
	return m
}

// PackageContentColumns are the columns an upsert or edit overwrites.
// id, source, source_key and created_at identify the row and are never rewritten.
var PackageContentColumns = []string{
	"slug", "title", "destination", "description", "price", "discount_price",
	"duration", "departure_dates", "images", "rating", "review_count", "category",
	"season", "inclusions", "exclusions", "is_featured", "is_on_sale", "itinerary",
	"updated_at",
}

// nonNil keeps JSON columns as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
