package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelpkg/backend/internal/domain/booking"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
)

var now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func pkg(title, category string) catalog.Package {
	return catalog.Package{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Title: title, Category: category}
}

func reservation(p catalog.Package, status booking.ReservationStatus, total int64, email string, created time.Time) booking.Reservation {
	r := booking.Reservation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PackageID:         p.ID,
		TotalPrice:        total,
		Status:            status,
		Contact:           booking.Contact{Name: "n-" + email, Email: email},
	}
	r.CreatedAt = created
	return r
}

func TestComputeDashboard_Revenue(t *testing.T) {
	p := pkg("Guam", "family")
	stats := ComputeDashboard(DashboardInput{
		Packages: []catalog.Package{p},
		Reservations: []booking.Reservation{
			reservation(p, booking.StatusConfirmed, 100000, "a@x.com", now),
			reservation(p, booking.StatusCancelled, 50000, "b@x.com", now),
		},
	}, now, 5)

	assert.Equal(t, int64(150000), stats.TotalRevenue, "cancelled reservations count towards revenue")
	assert.Equal(t, 1, stats.ConfirmedCount)
	assert.Equal(t, 1, stats.CancelledCount)
	assert.Equal(t, 2, stats.UniqueUsers)
	assert.Equal(t, 2, stats.ThisMonthReservationCount)
}

func TestComputeDashboard_MonthlyBuckets(t *testing.T) {
	t.Run("six zero buckets without reservations", func(t *testing.T) {
		stats := ComputeDashboard(DashboardInput{}, now, 5)
		require.Len(t, stats.MonthlyStats, MonthlyBuckets)

		months := make([]string, 0, MonthlyBuckets)
		for _, b := range stats.MonthlyStats {
			months = append(months, b.Month)
			assert.Zero(t, b.Count)
		}
		assert.Equal(t, []string{"2023-10", "2023-11", "2023-12", "2024-01", "2024-02", "2024-03"}, months)
	})

	t.Run("fills matching months and skips older ones", func(t *testing.T) {
		p := pkg("Cebu", "family")
		stats := ComputeDashboard(DashboardInput{
			Packages: []catalog.Package{p},
			Reservations: []booking.Reservation{
				reservation(p, booking.StatusPending, 10, "a@x.com", time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC)),
				reservation(p, booking.StatusPending, 20, "a@x.com", time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)),
				reservation(p, booking.StatusPending, 40, "a@x.com", time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)),
				reservation(p, booking.StatusPending, 80, "a@x.com", time.Date(2023, time.September, 30, 0, 0, 0, 0, time.UTC)),
			},
		}, now, 5)

		assert.Equal(t, 2, stats.MonthlyStats[3].Count)
		assert.Equal(t, int64(30), stats.MonthlyStats[3].Revenue)
		assert.Equal(t, 1, stats.MonthlyStats[0].Count)
		assert.Equal(t, 0, stats.ThisMonthReservationCount)
		assert.Equal(t, 1, stats.UniqueUsers)
		assert.Equal(t, int64(150), stats.TotalRevenue)
	})

	t.Run("crosses year boundary in january", func(t *testing.T) {
		jan := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
		stats := ComputeDashboard(DashboardInput{}, jan, 5)
		assert.Equal(t, "2024-08", stats.MonthlyStats[0].Month)
		assert.Equal(t, "2025-01", stats.MonthlyStats[5].Month)
		assert.Equal(t, 2025, stats.MonthlyStats[5].Year)
	})
}

func TestComputeDashboard_Categories(t *testing.T) {
	stats := ComputeDashboard(DashboardInput{
		Packages: []catalog.Package{pkg("a", "family"), pkg("b", "golf"), pkg("c", "family"), pkg("d", ""), pkg("e", " ")},
	}, now, 5)

	assert.Equal(t, []CategoryStat{{Category: "family", Count: 2}, {Category: "golf", Count: 1}}, stats.CategoryStats)
	assert.Equal(t, 5, stats.TotalPackages)
}

func TestComputeDashboard_TopPackages(t *testing.T) {
	a, b, c := pkg("Alpha", "x"), pkg("Beta", "y"), pkg("Gamma", "z")
	res := []booking.Reservation{
		reservation(b, booking.StatusPending, 1, "1@x.com", now),
		reservation(b, booking.StatusPending, 1, "2@x.com", now),
		reservation(a, booking.StatusPending, 1, "3@x.com", now),
		reservation(c, booking.StatusPending, 1, "4@x.com", now),
		{BaseAggregateRoot: shared.NewBaseAggregateRoot(), PackageID: uuid.New(), TotalPrice: 1},
	}

	stats := ComputeDashboard(DashboardInput{Packages: []catalog.Package{a, b, c}, Reservations: res}, now, 2)

	require.Len(t, stats.TopPackages, 2)
	assert.Equal(t, PackageRanking{Rank: 1, PackageID: b.ID, Title: "Beta", Category: "y", ReservationCount: 2}, stats.TopPackages[0])
	assert.Equal(t, "Alpha", stats.TopPackages[1].Title, "ties are broken by title")
	assert.Equal(t, 2, stats.TopPackages[1].Rank)
}

func TestComputeDashboard_RecentCancellations(t *testing.T) {
	p := pkg("Hanoi", "city")
	var res []booking.Reservation
	for i := 0; i < 5; i++ {
		res = append(res, reservation(p, booking.StatusCancelled, int64(i), "c@x.com", now.Add(time.Duration(i)*time.Hour)))
	}
	res = append(res, reservation(p, booking.StatusConfirmed, 99, "d@x.com", now.Add(10*time.Hour)))

	stats := ComputeDashboard(DashboardInput{Packages: []catalog.Package{p}, Reservations: res}, now, 5)

	require.Len(t, stats.RecentCancellations, RecentCancellationLimit)
	assert.Equal(t, int64(4), stats.RecentCancellations[0].TotalPrice)
	assert.Equal(t, int64(3), stats.RecentCancellations[1].TotalPrice)
	assert.Equal(t, int64(2), stats.RecentCancellations[2].TotalPrice)
	assert.Equal(t, "Hanoi", stats.RecentCancellations[0].PackageTitle)
}

func TestComputeDashboard_UniqueUsersIgnoresCase(t *testing.T) {
	p := pkg("Bangkok", "city")
	stats := ComputeDashboard(DashboardInput{
		Packages: []catalog.Package{p},
		Reservations: []booking.Reservation{
			reservation(p, booking.StatusPending, 1, "Lee@x.com", now),
			reservation(p, booking.StatusPending, 1, "lee@x.com ", now),
			reservation(p, booking.StatusPending, 1, "", now),
		},
	}, now, 5)
	assert.Equal(t, 1, stats.UniqueUsers)
}

func TestComputeDashboard_StoreTotals(t *testing.T) {
	p := pkg("Jeju", "domestic")
	windows := MonthWindows(now)
	stats := ComputeDashboard(DashboardInput{
		Packages: []catalog.Package{p},
		Reservations: []booking.Reservation{
			reservation(p, booking.StatusConfirmed, 200000, "a@x.com", now),
			reservation(p, booking.StatusConfirmed, 200000, "b@x.com", now),
		},
		Totals: &booking.ReservationTotals{Count: 3, Revenue: 600000, UniqueContacts: 3, Confirmed: 2, Cancelled: 1},
		Monthly: []booking.PeriodTotals{
			{From: windows[0].From, To: windows[0].To, Count: 1, Revenue: 200000},
			{From: windows[5].From, To: windows[5].To, Count: 2, Revenue: 400000},
		},
	}, now, 5)

	assert.Equal(t, int64(600000), stats.TotalRevenue)
	assert.Equal(t, 3, stats.TotalReservations)
	assert.Equal(t, 3, stats.UniqueUsers)
	assert.Equal(t, 2, stats.ConfirmedCount)
	assert.Equal(t, 1, stats.CancelledCount)
	assert.Equal(t, 2, stats.ThisMonthReservationCount)
	assert.Equal(t, 1, stats.MonthlyStats[0].Count)
	assert.Equal(t, int64(200000), stats.MonthlyStats[0].Revenue)
	assert.Zero(t, stats.MonthlyStats[4].Count)
	assert.Equal(t, int64(400000), stats.MonthlyStats[5].Revenue)

	require.Len(t, stats.TopPackages, 1)
	assert.Equal(t, 2, stats.TopPackages[0].ReservationCount, "ranking uses the sampled reservations")
}

func TestMonthWindows(t *testing.T) {
	windows := MonthWindows(now)
	require.Len(t, windows, MonthlyBuckets)
	assert.Equal(t, "2023-10", windows[0].Month)
	assert.Equal(t, time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC), windows[0].From)
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].To, windows[i].From)
	}
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), windows[5].To)
}

func TestEmptyDashboardStats(t *testing.T) {
	stats := EmptyDashboardStats(now)
	assert.Len(t, stats.MonthlyStats, MonthlyBuckets)
	assert.Zero(t, stats.TotalRevenue)
	assert.NotNil(t, stats.TopPackages)
	assert.NotNil(t, stats.ImportantNotices)
	assert.False(t, stats.Degraded)
}

func TestNewNotice(t *testing.T) {
	n, err := NewNotice("  Typhoon advisory ", "Flights may be delayed", true)
	require.NoError(t, err)
	assert.Equal(t, "Typhoon advisory", n.Title)
	assert.True(t, n.IsImportant)

	_, err = NewNotice("", "x", false)
	assert.Error(t, err)
}
