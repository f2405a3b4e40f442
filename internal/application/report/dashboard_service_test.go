package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/travelpkg/backend/internal/domain/booking"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/report"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/infrastructure/cache"
)

type MockPackageRepository struct {
	catalog.PackageRepository
	mock.Mock
}

func (m *MockPackageRepository) ListAll(ctx context.Context) ([]catalog.Package, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Package), args.Error(1)
}

type MockReservationRepository struct {
	booking.ReservationRepository
	mock.Mock
}

func (m *MockReservationRepository) ListRecent(ctx context.Context, limit int) ([]booking.Reservation, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]booking.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Totals(ctx context.Context) (booking.ReservationTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(booking.ReservationTotals), args.Error(1)
}

func (m *MockReservationRepository) TotalsBetween(ctx context.Context, from, to time.Time) (booking.PeriodTotals, error) {
	args := m.Called(ctx, from, to)
	p := args.Get(0).(booking.PeriodTotals)
	p.From, p.To = from, to
	return p, args.Error(1)
}

type MockNoticeRepository struct {
	mock.Mock
}

func (m *MockNoticeRepository) FindImportant(ctx context.Context, limit int) ([]report.Notice, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]report.Notice), args.Error(1)
}

func (m *MockNoticeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]report.Notice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]report.Notice), args.Error(1)
}

func (m *MockNoticeRepository) Save(ctx context.Context, n *report.Notice) error {
	return m.Called(ctx, n).Error(0)
}

type staticAuthorizer struct{ admin bool }

func (a staticAuthorizer) IsAdmin(context.Context) bool { return a.admin }
func (a staticAuthorizer) RequireAdmin(context.Context) error {
	if !a.admin {
		return shared.ErrForbidden
	}
	return nil
}

var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

type dashboardFixture struct {
	packages     *MockPackageRepository
	reservations *MockReservationRepository
	notices      *MockNoticeRepository
	svc          *DashboardService
}

func newDashboardFixture(admin bool, ttl time.Duration) *dashboardFixture {
	f := &dashboardFixture{
		packages:     new(MockPackageRepository),
		reservations: new(MockReservationRepository),
		notices:      new(MockNoticeRepository),
	}
	f.svc = NewDashboardService(f.packages, f.reservations, f.notices, staticAuthorizer{admin: admin},
		cache.NewInMemoryDashboardCache(),
		DashboardOptions{MaxReservationsScan: 100, CacheTTL: ttl},
		nil,
	)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func reservationAt(pkgID uuid.UUID, email string, status booking.ReservationStatus, total int64, created time.Time) booking.Reservation {
	r := booking.Reservation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PackageID:         pkgID,
		Status:            status,
		PaymentStatus:     booking.PaymentUnpaid,
		TotalPrice:        total,
		Contact:           booking.Contact{Name: "Guest", Email: email, Phone: "010"},
	}
	r.CreatedAt = created
	return r
}

func inMonth(month time.Month) interface{} {
	return mock.MatchedBy(func(from time.Time) bool { return from.Month() == month })
}

func TestDashboardService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("computes the snapshot", func(t *testing.T) {
		f := newDashboardFixture(true, 0)
		pkg := catalog.Package{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Title: "Jeju", Category: "domestic"}

		f.packages.On("ListAll", mock.Anything).Return([]catalog.Package{pkg}, nil)
		f.reservations.On("Totals", mock.Anything).Return(booking.ReservationTotals{
			Count: 2, Revenue: 150, UniqueContacts: 1, Confirmed: 1, Cancelled: 1,
		}, nil)
		f.reservations.On("TotalsBetween", mock.Anything, inMonth(time.March), mock.Anything).
			Return(booking.PeriodTotals{Count: 1, Revenue: 100}, nil)
		f.reservations.On("TotalsBetween", mock.Anything, inMonth(time.January), mock.Anything).
			Return(booking.PeriodTotals{Count: 1, Revenue: 50}, nil)
		f.reservations.On("TotalsBetween", mock.Anything, mock.Anything, mock.Anything).
			Return(booking.PeriodTotals{}, nil)
		f.reservations.On("ListRecent", mock.Anything, 100).Return([]booking.Reservation{
			reservationAt(pkg.ID, "a@example.com", booking.StatusConfirmed, 100, fixedNow.AddDate(0, 0, -1)),
			reservationAt(pkg.ID, "A@example.com ", booking.StatusCancelled, 50, fixedNow.AddDate(0, -2, 0)),
		}, nil)
		notice, err := report.NewNotice("Typhoon advisory", "", true)
		require.NoError(t, err)
		f.notices.On("FindImportant", mock.Anything, 5).Return([]report.Notice{*notice}, nil)

		stats, err := f.svc.Stats(ctx)
		require.NoError(t, err)

		assert.False(t, stats.Degraded)
		assert.Equal(t, 1, stats.UniqueUsers)
		assert.Equal(t, 2, stats.TotalReservations)
		assert.Equal(t, int64(150), stats.TotalRevenue)
		assert.Equal(t, 1, stats.ThisMonthReservationCount)
		assert.Equal(t, 1, stats.ConfirmedCount)
		assert.Equal(t, 1, stats.CancelledCount)
		require.Len(t, stats.TopPackages, 1)
		assert.Equal(t, 2, stats.TopPackages[0].ReservationCount)
		require.Len(t, stats.ImportantNotices, 1)
		require.Len(t, stats.MonthlyStats, report.MonthlyBuckets)
		assert.Equal(t, 1, stats.MonthlyStats[3].Count)
		assert.Equal(t, int64(50), stats.MonthlyStats[3].Revenue)
		assert.Equal(t, 1, stats.MonthlyStats[5].Count)
		f.reservations.AssertNumberOfCalls(t, "TotalsBetween", report.MonthlyBuckets)
	})

	t.Run("totals cover reservations beyond the scan limit", func(t *testing.T) {
		f := newDashboardFixture(true, 0)
		f.svc.opts.MaxReservationsScan = 2
		pkg := catalog.Package{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Title: "Jeju", Category: "domestic"}

		f.packages.On("ListAll", mock.Anything).Return([]catalog.Package{pkg}, nil)
		f.reservations.On("Totals", mock.Anything).Return(booking.ReservationTotals{
			Count: 3, Revenue: 600000, UniqueContacts: 3, Confirmed: 3,
		}, nil)
		f.reservations.On("TotalsBetween", mock.Anything, inMonth(time.March), mock.Anything).
			Return(booking.PeriodTotals{Count: 3, Revenue: 600000}, nil)
		f.reservations.On("TotalsBetween", mock.Anything, mock.Anything, mock.Anything).
			Return(booking.PeriodTotals{}, nil)
		f.reservations.On("ListRecent", mock.Anything, 2).Return([]booking.Reservation{
			reservationAt(pkg.ID, "a@example.com", booking.StatusConfirmed, 200000, fixedNow.Add(-time.Hour)),
			reservationAt(pkg.ID, "b@example.com", booking.StatusConfirmed, 200000, fixedNow.Add(-2*time.Hour)),
		}, nil)
		f.notices.On("FindImportant", mock.Anything, 5).Return([]report.Notice{}, nil)

		stats, err := f.svc.Stats(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(600000), stats.TotalRevenue)
		assert.Equal(t, 3, stats.TotalReservations)
		assert.Equal(t, 3, stats.UniqueUsers)
		assert.Equal(t, 3, stats.ConfirmedCount)
		assert.Equal(t, 3, stats.ThisMonthReservationCount)
		assert.Equal(t, int64(600000), stats.MonthlyStats[5].Revenue)
		require.Len(t, stats.TopPackages, 1)
		assert.Equal(t, 2, stats.TopPackages[0].ReservationCount)
	})

	t.Run("read failure yields a degraded empty snapshot", func(t *testing.T) {
		f := newDashboardFixture(true, 0)
		f.packages.On("ListAll", mock.Anything).Return([]catalog.Package{}, nil)
		f.reservations.On("Totals", mock.Anything).
			Return(booking.ReservationTotals{}, shared.NewRetryableError(errors.New("timeout")))

		stats, err := f.svc.Stats(ctx)
		require.NoError(t, err)

		assert.True(t, stats.Degraded)
		assert.Zero(t, stats.TotalReservations)
		assert.Zero(t, stats.TotalRevenue)
		assert.Empty(t, stats.TopPackages)
		require.Len(t, stats.MonthlyStats, report.MonthlyBuckets)
		assert.Equal(t, "2025-10", stats.MonthlyStats[0].Month)
		assert.Equal(t, "2026-03", stats.MonthlyStats[5].Month)
		for _, m := range stats.MonthlyStats {
			assert.Zero(t, m.Count)
		}
		f.reservations.AssertNotCalled(t, "ListRecent", mock.Anything, mock.Anything)
	})

	t.Run("serves the cached snapshot within the ttl", func(t *testing.T) {
		f := newDashboardFixture(true, time.Minute)
		f.packages.On("ListAll", mock.Anything).Return([]catalog.Package{}, nil).Once()
		f.reservations.On("Totals", mock.Anything).Return(booking.ReservationTotals{Count: 4, Revenue: 400}, nil).Once()
		f.reservations.On("TotalsBetween", mock.Anything, mock.Anything, mock.Anything).
			Return(booking.PeriodTotals{}, nil).Times(report.MonthlyBuckets)
		f.reservations.On("ListRecent", mock.Anything, 100).Return([]booking.Reservation{}, nil).Once()
		f.notices.On("FindImportant", mock.Anything, 5).Return([]report.Notice{}, nil).Once()

		first, err := f.svc.Stats(ctx)
		require.NoError(t, err)
		second, err := f.svc.Stats(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int64(400), second.TotalRevenue)
		f.packages.AssertNumberOfCalls(t, "ListAll", 1)
		f.reservations.AssertNumberOfCalls(t, "Totals", 1)
	})

	t.Run("non admin is forbidden", func(t *testing.T) {
		f := newDashboardFixture(false, 0)

		_, err := f.svc.Stats(ctx)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.packages.AssertNotCalled(t, "ListAll", mock.Anything)
	})
}

func TestDashboardService_ImportantNotices(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(false, 0)

	notice, err := report.NewNotice("Holiday schedule", "Office closed", true)
	require.NoError(t, err)
	f.notices.On("FindImportant", mock.Anything, 5).Return([]report.Notice{*notice}, nil)

	items, err := f.svc.ImportantNotices(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Holiday schedule", items[0].Title)
}
