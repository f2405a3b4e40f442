package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// PackageRequest is the admin form for creating or editing a package
type PackageRequest struct {
	SourceKey      string                 `json:"source_key" binding:"max=255"`
	Title          string                 `json:"title" binding:"required,min=1,max=200"`
	Destination    string                 `json:"destination" binding:"max=200"`
	Description    string                 `json:"description" binding:"max=10000"`
	Price          int64                  `json:"price" binding:"min=0"`
	DiscountPrice  *int64                 `json:"discount_price" binding:"omitempty,min=0"`
	Duration       *int                   `json:"duration" binding:"omitempty,min=1"`
	Category       string                 `json:"category" binding:"max=50"`
	DepartureDates []string               `json:"departure_dates"`
	Images         []string               `json:"images" binding:"required,min=1,dive,required"`
	Rating         *float64               `json:"rating" binding:"omitempty,min=0,max=5"`
	ReviewCount    int                    `json:"review_count" binding:"min=0"`
	Inclusions     []string               `json:"inclusions"`
	Exclusions     []string               `json:"exclusions"`
	IsFeatured     bool                   `json:"is_featured"`
	IsOnSale       bool                   `json:"is_on_sale"`
	Itinerary      []catalog.ItineraryDay `json:"itinerary"`
	// Version, when set on an edit, must match the stored version
	Version *int `json:"version" binding:"omitempty,min=1"`
}

// ToListing converts the form into the manual listing shape the normalizer accepts
func (r PackageRequest) ToListing() catalog.ManualListing {
	return catalog.ManualListing{
		SourceKey:      r.SourceKey,
		Title:          r.Title,
		Destination:    r.Destination,
		Description:    r.Description,
		Price:          r.Price,
		DiscountPrice:  r.DiscountPrice,
		Duration:       r.Duration,
		Category:       r.Category,
		DepartureDates: r.DepartureDates,
		Images:         r.Images,
		Rating:         r.Rating,
		ReviewCount:    r.ReviewCount,
		Inclusions:     r.Inclusions,
		Exclusions:     r.Exclusions,
		IsFeatured:     r.IsFeatured,
		IsOnSale:       r.IsOnSale,
		Itinerary:      r.Itinerary,
	}
}

// IngestRequest carries raw listings in any known source format
type IngestRequest struct {
	Listings    []catalog.Envelope `json:"listings" binding:"required,min=1,max=5000"`
	ConflictKey string             `json:"conflict_key" binding:"omitempty,oneof=id slug"`
}

// ResyncRequest carries the complete replacement catalog
type ResyncRequest struct {
	Listings []catalog.Envelope `json:"listings" binding:"required,min=1,max=5000"`
}

// DecodeEnvelopes decodes wire envelopes in order. A failure is reported with
// the position of the offending envelope prefixed to the field path.
func DecodeEnvelopes(envs []catalog.Envelope) ([]catalog.RawListing, error) {
	raws := make([]catalog.RawListing, 0, len(envs))
	for i, env := range envs {
		raw, err := catalog.DecodeRawListing(env)
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				return nil, shared.NewValidationError(fmt.Sprintf("listings[%d].%s", i, de.Field), de.Message)
			}
			return nil, err
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// SyncFeedRequest names the feed object to resync the catalog from
type SyncFeedRequest struct {
	Key string `json:"key" binding:"required,max=1024"`
}

// IngestResult summarizes a bulk write
type IngestResult struct {
	Count       int         `json:"count"`
	ConflictKey string      `json:"conflict_key,omitempty"`
	PackageIDs  []uuid.UUID `json:"package_ids"`
}

// PackageListFilter holds the catalog query parameters
type PackageListFilter struct {
	Search      string `form:"search" binding:"max=100"`
	Category    string `form:"category" binding:"max=50"`
	Season      string `form:"season" binding:"omitempty,oneof=spring summer fall winter"`
	Destination string `form:"destination" binding:"max=200"`
	Featured    *bool  `form:"featured"`
	OnSale      *bool  `form:"on_sale"`
	MinPrice    *int64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice    *int64 `form:"max_price" binding:"omitempty,min=0"`
	Page        int    `form:"page" binding:"min=0"`
	PageSize    int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PackageResponse represents a package in API responses
type PackageResponse struct {
	ID             uuid.UUID              `json:"id"`
	Source         string                 `json:"source"`
	SourceKey      string                 `json:"source_key"`
	Slug           string                 `json:"slug"`
	Title          string                 `json:"title"`
	Destination    string                 `json:"destination"`
	Description    string                 `json:"description"`
	Price          int64                  `json:"price"`
	DiscountPrice  *int64                 `json:"discount_price"`
	Duration       *int                   `json:"duration"`
	DepartureDates []string               `json:"departure_dates"`
	Images         []string               `json:"images"`
	Rating         *float64               `json:"rating"`
	ReviewCount    int                    `json:"review_count"`
	Category       string                 `json:"category"`
	Season         *string                `json:"season"`
	Inclusions     []string               `json:"inclusions"`
	Exclusions     []string               `json:"exclusions"`
	IsFeatured     bool                   `json:"is_featured"`
	IsOnSale       bool                   `json:"is_on_sale"`
	Itinerary      []catalog.ItineraryDay `json:"itinerary"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Version        int                    `json:"version"`
}

// ToPackageResponse converts a domain Package to PackageResponse
func ToPackageResponse(p *catalog.Package) PackageResponse {
	var season *string
	if p.Season != nil {
		s := string(*p.Season)
		season = &s
	}
	return PackageResponse{
		ID:             p.ID,
		Source:         string(p.Source),
		SourceKey:      p.SourceKey,
		Slug:           p.Slug,
		Title:          p.Title,
		Destination:    p.Destination,
		Description:    p.Description,
		Price:          p.Price,
		DiscountPrice:  p.DiscountPrice,
		Duration:       p.Duration,
		DepartureDates: p.DepartureDates,
		Images:         p.Images,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		Category:       p.Category,
		Season:         season,
		Inclusions:     p.Inclusions,
		Exclusions:     p.Exclusions,
		IsFeatured:     p.IsFeatured,
		IsOnSale:       p.IsOnSale,
		Itinerary:      p.Itinerary,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToPackageResponses converts a slice of domain Packages to PackageResponses
func ToPackageResponses(pkgs []catalog.Package) []PackageResponse {
	responses := make([]PackageResponse, len(pkgs))
	for i := range pkgs {
		responses[i] = ToPackageResponse(&pkgs[i])
	}
	return responses
}
