package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/travelpkg/backend/internal/domain/booking"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/infrastructure/config"
	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory sqlite database
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

var testNormalizer = catalog.NewNormalizer(catalog.NormalizerConfig{})

// newTestPackage builds a valid manual package; createdAt offsets keep ordering deterministic
func newTestPackage(t *testing.T, title, category string, price int64, age time.Duration) *catalog.Package {
	t.Helper()
	pkg, err := testNormalizer.Normalize(catalog.ManualListing{
		Title:       title,
		Destination: "Jeju",
		Price:       price,
		Category:    category,
		Images:      []string{"https://img.example.com/" + title + ".jpg"},
	})
	require.NoError(t, err)
	pkg.CreatedAt = time.Now().Add(-age).UTC()
	pkg.UpdatedAt = pkg.CreatedAt
	return pkg
}

func newTestReservation(t *testing.T, pkg *catalog.Package, email string) *booking.Reservation {
	t.Helper()
	r, err := booking.NewReservation(pkg, booking.NewReservationInput{
		DepartureDate: "2024-07-15",
		Travelers:     2,
		Contact:       booking.Contact{Name: "Kim", Email: email, Phone: "010-1234-5678"},
	})
	require.NoError(t, err)
	return r
}
