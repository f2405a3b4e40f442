package report

import (
	"time"

	"github.com/google/uuid"
)

// MonthlyBuckets is the number of months covered by DashboardStats.MonthlyStats
const MonthlyBuckets = 6

// RecentCancellationLimit caps DashboardStats.RecentCancellations
const RecentCancellationLimit = 3

// DashboardStats is the admin dashboard snapshot.
// This is a CQRS read model; it is eventually consistent with concurrent writes.
type DashboardStats struct {
	UniqueUsers               int                   `json:"unique_users"`
	ThisMonthReservationCount int                   `json:"this_month_reservation_count"`
	TotalReservations         int                   `json:"total_reservations"`
	TotalPackages             int                   `json:"total_packages"`
	TotalRevenue              int64                 `json:"total_revenue"`
	ConfirmedCount            int                   `json:"confirmed_count"`
	CancelledCount            int                   `json:"cancelled_count"`
	CategoryStats             []CategoryStat        `json:"category_stats"`
	MonthlyStats              []MonthlyStat         `json:"monthly_stats"`
	TopPackages               []PackageRanking      `json:"top_packages"`
	RecentCancellations       []CancellationSummary `json:"recent_cancellations"`
	ImportantNotices          []NoticeSummary       `json:"important_notices"`
	GeneratedAt               time.Time             `json:"generated_at"`
	// Degraded is set when the snapshot was zeroed because a read failed
	Degraded bool `json:"degraded"`
}

// CategoryStat counts packages in a category
type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MonthlyStat is one calendar month of reservation activity
type MonthlyStat struct {
	Month   string `json:"month"` // YYYY-MM
	Year    int    `json:"year"`
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

// PackageRanking is a package ranked by reservation count
type PackageRanking struct {
	Rank             int       `json:"rank"`
	PackageID        uuid.UUID `json:"package_id"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	ReservationCount int       `json:"reservation_count"`
}

// CancellationSummary describes a cancelled reservation
type CancellationSummary struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	PackageID     uuid.UUID `json:"package_id"`
	PackageTitle  string    `json:"package_title,omitempty"`
	ContactName   string    `json:"contact_name"`
	TotalPrice    int64     `json:"total_price"`
	CreatedAt     time.Time `json:"created_at"`
}

// NoticeSummary is the dashboard view of a notice
type NoticeSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// EmptyDashboardStats returns the zeroed snapshot: all counters zero, empty
// lists and six zero monthly buckets ending in now's month.
func EmptyDashboardStats(now time.Time) DashboardStats {
	return DashboardStats{
		CategoryStats:       []CategoryStat{},
		MonthlyStats:        monthlyBuckets(now),
		TopPackages:         []PackageRanking{},
		RecentCancellations: []CancellationSummary{},
		ImportantNotices:    []NoticeSummary{},
		GeneratedAt:         now,
	}
}

// MonthWindow is the [From, To) range of one monthly bucket
type MonthWindow struct {
	Month string
	From  time.Time
	To    time.Time
}

// MonthWindows returns the ranges of the monthly buckets ending in now's month, oldest first
func MonthWindows(now time.Time) []MonthWindow {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	windows := make([]MonthWindow, MonthlyBuckets)
	for i := 0; i < MonthlyBuckets; i++ {
		from := first.AddDate(0, i-(MonthlyBuckets-1), 0)
		windows[i] = MonthWindow{Month: from.Format("2006-01"), From: from, To: from.AddDate(0, 1, 0)}
	}
	return windows
}

// monthlyBuckets returns the current month and the five before it, oldest first
func monthlyBuckets(now time.Time) []MonthlyStat {
	buckets := make([]MonthlyStat, 0, MonthlyBuckets)
	for _, w := range MonthWindows(now) {
		buckets = append(buckets, MonthlyStat{Month: w.Month, Year: w.From.Year()})
	}
	return buckets
}
