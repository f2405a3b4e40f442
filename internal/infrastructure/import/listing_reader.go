package csvimport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// Columns of a scraped listing export. List cells use ListSeparator; the
// itinerary cell holds a JSON array of {title, description, image}.
const (
	ColID             = "id"
	ColTitle          = "title"
	ColDestination    = "destination"
	ColDescription    = "description"
	ColPrice          = "price"
	ColDiscountPrice  = "discount_price"
	ColDuration       = "duration"
	ColType           = "type"
	ColDepartureDates = "departure_dates"
	ColGallery        = "gallery"
	ColImage          = "image"
	ColRating         = "rating"
	ColReviewCount    = "review_count"
	ColInclusions     = "inclusions"
	ColExclusions     = "exclusions"
	ColIsFeatured     = "is_featured"
	ColIsOnSale       = "is_on_sale"
	ColItinerary      = "itinerary"

	ListSeparator = "|"
)

// RequiredColumns must be present in the header row
var RequiredColumns = []string{ColTitle, ColPrice}

// ListingReader converts a CSV export into scraped listings
type ListingReader struct {
	maxRows   int
	maxErrors int
	parser    []ParserOption
}

// ReaderOption configures a ListingReader
type ReaderOption func(*ListingReader)

// WithMaxRows caps the number of data rows accepted
func WithMaxRows(n int) ReaderOption {
	return func(r *ListingReader) { r.maxRows = n }
}

// WithMaxErrors caps the number of row errors reported
func WithMaxErrors(n int) ReaderOption {
	return func(r *ListingReader) { r.maxErrors = n }
}

// WithParserOptions forwards options to the underlying CSVParser
func WithParserOptions(opts ...ParserOption) ReaderOption {
	return func(r *ListingReader) { r.parser = append(r.parser, opts...) }
}

// NewListingReader creates a reader with a 5000 row and 50 error limit
func NewListingReader(opts ...ReaderOption) *ListingReader {
	r := &ListingReader{maxRows: 5000, maxErrors: 50}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rules returns the per-column checks applied before a row is converted
func Rules() []FieldRule {
	return []FieldRule{
		Field(ColID).Unique().MaxLength(255).Build(),
		Field(ColTitle).Required().MaxLength(200).Build(),
		Field(ColPrice).Required().Check(requireDigit).Build(),
		Field(ColDiscountPrice).Check(requireDigit).Build(),
		Field(ColRating).Decimal().Min(decimal.Zero).Max(decimal.NewFromInt(5)).Build(),
		Field(ColReviewCount).Int().Min(decimal.Zero).Build(),
		Field(ColIsFeatured).Bool().Build(),
		Field(ColIsOnSale).Bool().Build(),
		Field(ColItinerary).Check(checkItinerary).Build(),
	}
}

// Read parses every row of src. All row problems are collected and returned
// together as one validation error; no listings are returned in that case.
func (lr *ListingReader) Read(src io.Reader) ([]catalog.ScrapedListing, error) {
	p, err := NewCSVParser(src, lr.parser...)
	if err != nil {
		return nil, fileError(err)
	}
	if err := p.ParseHeader(); err != nil {
		return nil, fileError(err)
	}
	if missing := p.MissingHeaders(RequiredColumns); len(missing) > 0 {
		return nil, shared.NewValidationError("header", "missing required columns: "+strings.Join(missing, ", "))
	}

	rows, err := p.ReadAllRows(lr.maxRows)
	if err != nil {
		var rowErr RowError
		if errors.As(err, &rowErr) {
			ec := NewErrorCollection(1)
			ec.Add(rowErr)
			return nil, ec.Err()
		}
		return nil, fileError(err)
	}
	if len(rows) == 0 {
		return nil, fileError(ErrNoDataRows)
	}

	v := NewFieldValidator(Rules(), lr.maxErrors)
	listings := make([]catalog.ScrapedListing, 0, len(rows))
	for _, row := range rows {
		if !v.ValidateRow(row) {
			continue
		}
		listings = append(listings, toListing(row))
	}
	if err := v.Errors().Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

func fileError(err error) error {
	return shared.NewValidationError("file", err.Error())
}

// toListing maps a validated row; numeric and boolean cells already passed their rules
func toListing(row *Row) catalog.ScrapedListing {
	l := catalog.ScrapedListing{
		ExternalID:     row.Get(ColID),
		Title:          row.Get(ColTitle),
		Destination:    row.Get(ColDestination),
		Description:    row.Get(ColDescription),
		Price:          row.Get(ColPrice),
		DiscountPrice:  row.Get(ColDiscountPrice),
		Duration:       row.Get(ColDuration),
		Type:           row.Get(ColType),
		DepartureDates: splitList(row.Get(ColDepartureDates)),
		Gallery:        splitList(row.Get(ColGallery)),
		Image:          row.Get(ColImage),
		Inclusions:     splitList(row.Get(ColInclusions)),
		Exclusions:     splitList(row.Get(ColExclusions)),
		Itinerary:      []catalog.ScrapedItineraryEntry{},
	}
	if s := row.Get(ColRating); s != "" {
		f, _ := decimal.RequireFromString(s).Float64()
		l.Rating = &f
	}
	if s := row.Get(ColReviewCount); s != "" {
		l.ReviewCount = int(decimal.RequireFromString(s).IntPart())
	}
	l.IsFeatured, _ = parseBool(row.Get(ColIsFeatured))
	l.IsOnSale, _ = parseBool(row.Get(ColIsOnSale))
	if s := row.Get(ColItinerary); s != "" {
		_ = json.Unmarshal([]byte(s), &l.Itinerary)
	}
	return l
}

// splitList splits a list cell, dropping blank entries
func splitList(cell string) []string {
	out := []string{}
	for _, part := range strings.Split(cell, ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func requireDigit(value string) error {
	if strings.IndexFunc(value, unicode.IsDigit) < 0 {
		return fmt.Errorf("must contain a number")
	}
	return nil
}

func checkItinerary(value string) error {
	var entries []catalog.ScrapedItineraryEntry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		return fmt.Errorf("itinerary must be a JSON array of {title, description, image}")
	}
	return nil
}
