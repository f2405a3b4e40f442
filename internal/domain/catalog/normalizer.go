package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travelpkg/backend/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// PackageNamespace is the UUID namespace package ids are derived in
var PackageNamespace = uuid.MustParse("6f1c1c1e-4b7a-5d2e-9a57-0c3b8f2e7d41")

// Normalizer defaults
const (
	DefaultDuration    = 3
	DefaultCategory    = "general"
	DefaultSeason      = SeasonSummer
	DefaultNightMarker = "박"
)

// DefaultDiscountRatio is applied to price when a listing has no explicit discount
var DefaultDiscountRatio = decimal.NewFromFloat(0.9)

// DefaultCategoryMap maps listing "type" values onto catalog categories
func DefaultCategoryMap() map[string]string {
	return map[string]string{
		"honeymoon": "honeymoon",
		"family":    "family",
		"golf":      "golf",
		"cruise":    "cruise",
		"domestic":  "domestic",
		"overseas":  "overseas",
		"허니문":       "honeymoon",
		"가족":        "family",
		"골프":        "golf",
		"크루즈":       "cruise",
		"국내":        "domestic",
		"해외":        "overseas",
	}
}

// NormalizerConfig holds the derivation policy. Zero values fall back to the defaults.
type NormalizerConfig struct {
	DiscountRatio   decimal.Decimal
	DefaultDuration int
	DefaultCategory string
	DefaultSeason   Season
	CategoryMap     map[string]string
	NightMarker     string
	Namespace       uuid.UUID
}

// Normalizer converts raw listings into canonical packages.
// It performs no I/O and is safe for concurrent use.
type Normalizer struct {
	cfg        NormalizerConfig
	durationRe *regexp.Regexp
}

// NewNormalizer creates a Normalizer, filling unset config fields with defaults
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	if cfg.DiscountRatio.LessThanOrEqual(decimal.Zero) || cfg.DiscountRatio.GreaterThan(decimal.NewFromInt(1)) {
		cfg.DiscountRatio = DefaultDiscountRatio
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultDuration
	}
	if strings.TrimSpace(cfg.DefaultCategory) == "" {
		cfg.DefaultCategory = DefaultCategory
	}
	if !cfg.DefaultSeason.IsValid() {
		cfg.DefaultSeason = DefaultSeason
	}
	if len(cfg.CategoryMap) == 0 {
		cfg.CategoryMap = DefaultCategoryMap()
	} else {
		lowered := make(map[string]string, len(cfg.CategoryMap))
		for k, v := range cfg.CategoryMap {
			lowered[strings.ToLower(strings.TrimSpace(k))] = v
		}
		cfg.CategoryMap = lowered
	}
	if cfg.NightMarker == "" {
		cfg.NightMarker = DefaultNightMarker
	}
	if cfg.Namespace == uuid.Nil {
		cfg.Namespace = PackageNamespace
	}

	return &Normalizer{
		cfg:        cfg,
		durationRe: regexp.MustCompile(`(\d+)\s*` + regexp.QuoteMeta(cfg.NightMarker)),
	}
}

// Config returns the effective configuration
func (n *Normalizer) Config() NormalizerConfig {
	return n.cfg
}

// Normalize converts a raw listing into a Package.
// The returned error is always a validation DomainError naming the offending field.
func (n *Normalizer) Normalize(raw RawListing) (*Package, error) {
	if raw == nil {
		return nil, shared.NewValidationError("source", "listing is required")
	}
	f, err := raw.fields()
	if err != nil {
		return nil, err
	}

	title := cleanText(f.title)
	destination := cleanText(f.destination)
	if title == "" {
		return nil, shared.NewValidationError("title", "title cannot be empty")
	}

	price, err := n.price(f)
	if err != nil {
		return nil, err
	}
	discount, err := n.discount(f, price)
	if err != nil {
		return nil, err
	}
	images, err := n.images(f)
	if err != nil {
		return nil, err
	}

	sourceKey := cleanText(f.sourceKey)
	if sourceKey == "" {
		sourceKey = truncateRunes(Slugify(title+" "+destination), MaxSourceKeyLength)
	}
	id := n.PackageID(raw.Source(), sourceKey)

	duration := n.duration(f)
	season := n.season(f.departures)

	pkg := &Package{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		Source:            raw.Source(),
		SourceKey:         sourceKey,
		Slug:              PackageSlug(title, destination, id),
		Title:             title,
		Destination:       destination,
		Description:       cleanText(f.description),
		Price:             price,
		DiscountPrice:     &discount,
		Duration:          &duration,
		DepartureDates:    cleanList(f.departures, false),
		Images:            images,
		Rating:            f.rating,
		ReviewCount:       f.reviewCount,
		Category:          n.category(f),
		Season:            &season,
		Inclusions:        cleanList(f.inclusions, true),
		Exclusions:        cleanList(f.exclusions, true),
		IsFeatured:        f.featured,
		IsOnSale:          f.onSale,
		Itinerary:         n.itinerary(f.itinerary),
	}

	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// PackageID derives the stable package id for a source and its natural key
func (n *Normalizer) PackageID(source SourceKind, sourceKey string) uuid.UUID {
	return uuid.NewSHA1(n.cfg.Namespace, []byte(string(source)+":"+sourceKey))
}

func (n *Normalizer) price(f listingFields) (int64, error) {
	if f.price != nil {
		if *f.price < 0 {
			return 0, shared.NewValidationError("price", "price cannot be negative")
		}
		return *f.price, nil
	}
	v, ok := ParseAmount(f.priceText)
	if !ok {
		return 0, shared.NewValidationError("price", "price "+strconv.Quote(f.priceText)+" is not a valid amount")
	}
	return v, nil
}

func (n *Normalizer) discount(f listingFields, price int64) (int64, error) {
	explicit := f.discount
	if explicit == nil && strings.TrimSpace(f.discountText) != "" {
		v, ok := ParseAmount(f.discountText)
		if !ok {
			return 0, shared.NewValidationError("discountPrice", "discount price "+strconv.Quote(f.discountText)+" is not a valid amount")
		}
		explicit = &v
	}
	if explicit != nil {
		if *explicit < 0 || *explicit > price {
			return 0, shared.NewValidationError("discountPrice", "discount price must be between 0 and price")
		}
		return *explicit, nil
	}
	return decimal.NewFromInt(price).Mul(n.cfg.DiscountRatio).Round(0).IntPart(), nil
}

func (n *Normalizer) duration(f listingFields) int {
	if f.nights != nil && *f.nights > 0 {
		return *f.nights
	}
	if m := n.durationRe.FindStringSubmatch(f.durationText); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			return v
		}
	}
	return n.cfg.DefaultDuration
}

func (n *Normalizer) category(f listingFields) string {
	if c := cleanText(f.category); c != "" {
		return c
	}
	if c, ok := n.cfg.CategoryMap[strings.ToLower(cleanText(f.categoryType))]; ok {
		return c
	}
	return n.cfg.DefaultCategory
}

func (n *Normalizer) season(departures []string) Season {
	for _, d := range departures {
		if strings.TrimSpace(d) == "" {
			continue
		}
		if month, ok := ParseDepartureMonth(d); ok {
			return SeasonForMonth(month)
		}
		break
	}
	return n.cfg.DefaultSeason
}

func (n *Normalizer) images(f listingFields) ([]string, error) {
	images := cleanList(f.gallery, false)
	if len(images) == 0 {
		if img := strings.TrimSpace(f.image); img != "" {
			images = []string{img}
		}
	}
	if len(images) == 0 {
		return nil, shared.NewValidationError("images", "at least one image is required")
	}
	return images, nil
}

func (n *Normalizer) itinerary(entries []ItineraryDay) []ItineraryDay {
	days := make([]ItineraryDay, len(entries))
	for i, e := range entries {
		day := e.Day
		if day <= 0 {
			day = i + 1
		}
		days[i] = ItineraryDay{
			Day:         day,
			Title:       cleanText(e.Title),
			Description: cleanText(e.Description),
			Image:       strings.TrimSpace(e.Image),
		}
	}
	return days
}

// ParseAmount keeps only the digit characters of s and parses them as an integer.
// "1,800,000원" yields 1800000. It reports false when no digits remain or the
// value overflows.
func ParseAmount(s string) (int64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var departureDateRe = regexp.MustCompile(`^\s*(\d{4})\s*[./-]\s*(\d{1,2})\s*[./-]\s*(\d{1,2})`)

// ParseDepartureMonth extracts the month of a dotted, dashed or slashed date
func ParseDepartureMonth(s string) (time.Month, bool) {
	m := departureDateRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	month, err := strconv.Atoi(m[2])
	if err != nil || month < 1 || month > 12 {
		return 0, false
	}
	return time.Month(month), true
}

// Slugify lowercases s and joins its letter and digit runs with dashes.
// Non-Latin letters are kept.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFC.String(strings.ToLower(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// slugSuffixLength is the number of id hex digits appended to a package slug
const slugSuffixLength = 8

// PackageSlug builds the URL slug of a package: the slugified title and
// destination followed by the leading hex digits of the package id, so
// packages sharing a title and destination still get distinct slugs.
// The result never exceeds MaxSlugLength characters.
func PackageSlug(title, destination string, id uuid.UUID) string {
	suffix := strings.ReplaceAll(id.String(), "-", "")[:slugSuffixLength]
	base := truncateRunes(Slugify(title+" "+destination), MaxSlugLength-slugSuffixLength-1)
	base = strings.TrimRight(base, "-")
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// cleanList trims entries and drops empty ones; with dedupe, later repeats are dropped.
func cleanList(in []string, dedupe bool) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = cleanText(s)
		if s == "" {
			continue
		}
		if dedupe {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
		}
		out = append(out, s)
	}
	return out
}
