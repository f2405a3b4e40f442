package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
)

const sampleFeed = `id,title,destination,price,discount_price,duration,type,departure_dates,gallery,image,rating,review_count,inclusions,is_featured,is_on_sale,itinerary
jeju-001,제주 힐링 여행,제주,"1,800,000원",,5박 6일,국내,2024.07.15|2024.08.01,a.jpg|b.jpg,,4.5,12,항공|숙박,yes,0,"[{""title"":""도착"",""description"":""공항 픽업""}]"
osaka-002,Osaka Food Tour,Osaka,"250,000원","200,000원",2박 3일,해외,,,c.jpg,,,,,,
`

func TestListingReader_Read(t *testing.T) {
	listings, err := NewListingReader().Read(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	require.Len(t, listings, 2)

	jeju := listings[0]
	assert.Equal(t, "jeju-001", jeju.ExternalID)
	assert.Equal(t, "제주 힐링 여행", jeju.Title)
	assert.Equal(t, "1,800,000원", jeju.Price)
	assert.Equal(t, "5박 6일", jeju.Duration)
	assert.Equal(t, []string{"2024.07.15", "2024.08.01"}, jeju.DepartureDates)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, jeju.Gallery)
	require.NotNil(t, jeju.Rating)
	assert.Equal(t, 4.5, *jeju.Rating)
	assert.Equal(t, 12, jeju.ReviewCount)
	assert.Equal(t, []string{"항공", "숙박"}, jeju.Inclusions)
	assert.True(t, jeju.IsFeatured)
	assert.False(t, jeju.IsOnSale)
	require.Len(t, jeju.Itinerary, 1)
	assert.Equal(t, "도착", jeju.Itinerary[0].Title)

	osaka := listings[1]
	assert.Equal(t, "200,000원", osaka.DiscountPrice)
	assert.Equal(t, "c.jpg", osaka.Image)
	assert.Empty(t, osaka.Gallery)
	assert.Nil(t, osaka.Rating)
}

func TestListingReader_NormalizesEndToEnd(t *testing.T) {
	listings, err := NewListingReader().Read(strings.NewReader(sampleFeed))
	require.NoError(t, err)

	n := catalog.NewNormalizer(catalog.NormalizerConfig{})
	pkg, err := n.Normalize(listings[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1800000), pkg.Price)
	require.NotNil(t, pkg.Duration)
	assert.Equal(t, 5, *pkg.Duration)
}

func TestListingReader_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing required header",
			input:     "title,destination\nA,B\n",
			wantField: "header",
			wantMsg:   "price",
		},
		{
			name:      "no data rows",
			input:     "title,price\n",
			wantField: "file",
		},
		{
			name:      "required cell blank",
			input:     "title,price\n,1000\n",
			wantField: "row 2.title",
		},
		{
			name:      "rating out of range",
			input:     "title,price,rating\nA,1000,7\n",
			wantField: "row 2.rating",
		},
		{
			name:      "duplicate id",
			input:     "id,title,price\nx,A,1\nx,B,2\n",
			wantField: "row 3.id",
			wantMsg:   "first seen in row 2",
		},
		{
			name:      "bad itinerary json",
			input:     "title,price,itinerary\nA,1,not-json\n",
			wantField: "row 2.itinerary",
		},
		{
			name:      "price without digits",
			input:     "title,price\nA,문의\n",
			wantField: "row 2.price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewListingReader().Read(strings.NewReader(tt.input))
			require.Error(t, err)

			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, shared.KindValidation, de.Kind)
			assert.Equal(t, tt.wantField, de.Field)
			if tt.wantMsg != "" {
				assert.Contains(t, de.Message, tt.wantMsg)
			}
		})
	}
}

func TestListingReader_CollectsAllRowErrors(t *testing.T) {
	input := "title,price,review_count\n,1,x\nB,,3\n"

	_, err := NewListingReader(WithMaxErrors(10)).Read(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 error(s) found")
}

func TestListingReader_RowLimit(t *testing.T) {
	_, err := NewListingReader(WithMaxRows(1)).Read(strings.NewReader("title,price\nA,1\nB,2\n"))
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}
