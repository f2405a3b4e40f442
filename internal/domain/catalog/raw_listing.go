package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/travelpkg/backend/internal/domain/shared"
)

// SourceKind identifies the shape a raw listing arrived in
type SourceKind string

const (
	SourceScraped SourceKind = "scraped"
	SourcePartner SourceKind = "partner"
	SourceManual  SourceKind = "manual"
)

// IsValid checks if the source kind is known
func (s SourceKind) IsValid() bool {
	switch s {
	case SourceScraped, SourcePartner, SourceManual:
		return true
	}
	return false
}

// RawListing is a listing record in one of the known source formats.
// The set of implementations is closed; each adapts its own shape into
// the common fields consumed by the Normalizer.
type RawListing interface {
	Source() SourceKind
	fields() (listingFields, error)
}

// listingFields is the source-independent intermediate form.
// Textual values are parsed by the normalizer; typed values are used as-is.
type listingFields struct {
	sourceKey    string
	title        string
	destination  string
	description  string
	priceText    string
	price        *int64
	discountText string
	discount     *int64
	durationText string
	nights       *int
	categoryType string
	category     string
	departures   []string
	gallery      []string
	image        string
	rating       *float64
	reviewCount  int
	inclusions   []string
	exclusions   []string
	featured     bool
	onSale       bool
	itinerary    []ItineraryDay
}

// ScrapedItineraryEntry is an itinerary entry as found on crawled listing pages
type ScrapedItineraryEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// ScrapedListing is the crawler output: formatted prices, free-text durations
// and dotted departure dates.
type ScrapedListing struct {
	ExternalID     string                  `json:"id,omitempty"`
	Title          string                  `json:"title"`
	Destination    string                  `json:"destination"`
	Description    string                  `json:"description"`
	Price          string                  `json:"price"`
	DiscountPrice  string                  `json:"discountPrice,omitempty"`
	Duration       string                  `json:"duration"`
	Type           string                  `json:"type"`
	DepartureDates []string                `json:"departureDates"`
	Gallery        []string                `json:"gallery"`
	Image          string                  `json:"image,omitempty"`
	Rating         *float64                `json:"rating,omitempty"`
	ReviewCount    int                     `json:"reviewCount"`
	Inclusions     []string                `json:"inclusions"`
	Exclusions     []string                `json:"exclusions"`
	IsFeatured     bool                    `json:"isFeatured"`
	IsOnSale       bool                    `json:"isOnSale"`
	Itinerary      []ScrapedItineraryEntry `json:"itinerary"`
}

// Source implements RawListing
func (ScrapedListing) Source() SourceKind { return SourceScraped }

func (l ScrapedListing) fields() (listingFields, error) {
	days := make([]ItineraryDay, len(l.Itinerary))
	for i, e := range l.Itinerary {
		days[i] = ItineraryDay{Title: e.Title, Description: e.Description, Image: e.Image}
	}
	return listingFields{
		sourceKey:    l.ExternalID,
		title:        l.Title,
		destination:  l.Destination,
		description:  l.Description,
		priceText:    l.Price,
		discountText: l.DiscountPrice,
		durationText: l.Duration,
		categoryType: l.Type,
		departures:   l.DepartureDates,
		gallery:      l.Gallery,
		image:        l.Image,
		rating:       l.Rating,
		reviewCount:  l.ReviewCount,
		inclusions:   l.Inclusions,
		exclusions:   l.Exclusions,
		featured:     l.IsFeatured,
		onSale:       l.IsOnSale,
		itinerary:    days,
	}, nil
}

// PartnerScheduleDay is a day entry in a partner feed
type PartnerScheduleDay struct {
	Day     int    `json:"day"`
	Heading string `json:"heading"`
	Body    string `json:"body"`
	Photo   string `json:"photo,omitempty"`
}

// PartnerListing is the structured partner feed format with numeric amounts
// and ISO dates.
type PartnerListing struct {
	ProductCode string               `json:"productCode"`
	Name        string               `json:"name"`
	City        string               `json:"city"`
	Summary     string               `json:"summary"`
	Amount      int64                `json:"amount"`
	SaleAmount  *int64               `json:"saleAmount,omitempty"`
	Nights      *int                 `json:"nights,omitempty"`
	Kind        string               `json:"kind"`
	Departures  []string             `json:"departures"`
	Photos      []string             `json:"photos"`
	Score       *float64             `json:"score,omitempty"`
	Reviews     int                  `json:"reviews"`
	Includes    []string             `json:"includes"`
	Excludes    []string             `json:"excludes"`
	Featured    bool                 `json:"featured"`
	Promotion   bool                 `json:"promotion"`
	Schedule    []PartnerScheduleDay `json:"schedule"`
}

// Source implements RawListing
func (PartnerListing) Source() SourceKind { return SourcePartner }

func (l PartnerListing) fields() (listingFields, error) {
	if l.Amount < 0 {
		return listingFields{}, shared.NewValidationError("price", "price cannot be negative")
	}
	amount := l.Amount
	days := make([]ItineraryDay, len(l.Schedule))
	for i, d := range l.Schedule {
		days[i] = ItineraryDay{Day: d.Day, Title: d.Heading, Description: d.Body, Image: d.Photo}
	}
	return listingFields{
		sourceKey:    l.ProductCode,
		title:        l.Name,
		destination:  l.City,
		description:  l.Summary,
		price:        &amount,
		discount:     l.SaleAmount,
		nights:       l.Nights,
		categoryType: l.Kind,
		departures:   l.Departures,
		gallery:      l.Photos,
		rating:       l.Score,
		reviewCount:  l.Reviews,
		inclusions:   l.Includes,
		exclusions:   l.Excludes,
		featured:     l.Featured,
		onSale:       l.Promotion,
		itinerary:    days,
	}, nil
}

// ManualListing is the admin form shape, already close to canonical.
// Category is taken verbatim rather than looked up.
type ManualListing struct {
	SourceKey      string         `json:"sourceKey,omitempty"`
	Title          string         `json:"title"`
	Destination    string         `json:"destination"`
	Description    string         `json:"description"`
	Price          int64          `json:"price"`
	DiscountPrice  *int64         `json:"discountPrice,omitempty"`
	Duration       *int           `json:"duration,omitempty"`
	Category       string         `json:"category"`
	DepartureDates []string       `json:"departureDates"`
	Images         []string       `json:"images"`
	Rating         *float64       `json:"rating,omitempty"`
	ReviewCount    int            `json:"reviewCount"`
	Inclusions     []string       `json:"inclusions"`
	Exclusions     []string       `json:"exclusions"`
	IsFeatured     bool           `json:"isFeatured"`
	IsOnSale       bool           `json:"isOnSale"`
	Itinerary      []ItineraryDay `json:"itinerary"`
}

// Source implements RawListing
func (ManualListing) Source() SourceKind { return SourceManual }

func (l ManualListing) fields() (listingFields, error) {
	if l.Price < 0 {
		return listingFields{}, shared.NewValidationError("price", "price cannot be negative")
	}
	price := l.Price
	return listingFields{
		sourceKey:   l.SourceKey,
		title:       l.Title,
		destination: l.Destination,
		description: l.Description,
		price:       &price,
		discount:    l.DiscountPrice,
		nights:      l.Duration,
		category:    l.Category,
		departures:  l.DepartureDates,
		gallery:     l.Images,
		rating:      l.Rating,
		reviewCount: l.ReviewCount,
		inclusions:  l.Inclusions,
		exclusions:  l.Exclusions,
		featured:    l.IsFeatured,
		onSale:      l.IsOnSale,
		itinerary:   l.Itinerary,
	}, nil
}

// Envelope is the wire form of a RawListing: a source discriminator plus the
// source-specific payload.
type Envelope struct {
	Source  SourceKind      `json:"source"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeRawListing decodes an envelope into its concrete listing type
func DecodeRawListing(env Envelope) (RawListing, error) {
	var (
		raw RawListing
		err error
	)
	switch env.Source {
	case SourceScraped:
		var l ScrapedListing
		err = json.Unmarshal(env.Payload, &l)
		raw = l
	case SourcePartner:
		var l PartnerListing
		err = json.Unmarshal(env.Payload, &l)
		raw = l
	case SourceManual:
		var l ManualListing
		err = json.Unmarshal(env.Payload, &l)
		raw = l
	default:
		return nil, shared.NewValidationError("source", fmt.Sprintf("unknown listing source %s", strconv.Quote(string(env.Source))))
	}
	if err != nil {
		return nil, shared.NewValidationError("payload", "malformed "+string(env.Source)+" listing: "+err.Error())
	}
	return raw, nil
}
