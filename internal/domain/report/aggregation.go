package report

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/travelpkg/backend/internal/domain/booking"
	"github.com/travelpkg/backend/internal/domain/catalog"
)

// DefaultTopPackages is the ranking size used when none is configured
const DefaultTopPackages = 5

// DashboardInput is the data set a dashboard snapshot is computed over.
// When Totals is set, Reservations may be a bounded newest-first sample used
// only for the ranking and the recent cancellations; the counters and the
// monthly buckets then come from Totals and Monthly.
type DashboardInput struct {
	Reservations []booking.Reservation
	Packages     []catalog.Package
	Notices      []Notice
	Totals       *booking.ReservationTotals
	Monthly      []booking.PeriodTotals
}

// ComputeDashboard derives the dashboard snapshot.
// Revenue sums every reservation regardless of status, cancelled ones included.
func ComputeDashboard(in DashboardInput, now time.Time, topN int) DashboardStats {
	if topN <= 0 {
		topN = DefaultTopPackages
	}

	stats := EmptyDashboardStats(now)
	stats.TotalReservations = len(in.Reservations)
	stats.TotalPackages = len(in.Packages)

	titles := make(map[uuid.UUID]*catalog.Package, len(in.Packages))
	for i := range in.Packages {
		titles[in.Packages[i].ID] = &in.Packages[i]
	}

	bucketIndex := make(map[string]int, len(stats.MonthlyStats))
	for i, b := range stats.MonthlyStats {
		bucketIndex[b.Month] = i
	}

	emails := make(map[string]struct{})
	perPackage := make(map[uuid.UUID]int)
	cancelled := make([]booking.Reservation, 0)

	for _, r := range in.Reservations {
		if email := strings.ToLower(strings.TrimSpace(r.Contact.Email)); email != "" {
			emails[email] = struct{}{}
		}

		created := r.CreatedAt.In(now.Location())
		if created.Year() == now.Year() && created.Month() == now.Month() {
			stats.ThisMonthReservationCount++
		}
		if i, ok := bucketIndex[created.Format("2006-01")]; ok {
			stats.MonthlyStats[i].Count++
			stats.MonthlyStats[i].Revenue += r.TotalPrice
		}

		stats.TotalRevenue += r.TotalPrice

		switch r.Status {
		case booking.StatusConfirmed:
			stats.ConfirmedCount++
		case booking.StatusCancelled:
			stats.CancelledCount++
			cancelled = append(cancelled, r)
		}

		perPackage[r.PackageID]++
	}
	stats.UniqueUsers = len(emails)
	if in.Totals != nil {
		applyTotals(&stats, *in.Totals, in.Monthly, now)
	}

	stats.CategoryStats = categoryHistogram(in.Packages)
	stats.TopPackages = rankPackages(perPackage, titles, topN)
	stats.RecentCancellations = recentCancellations(cancelled, titles)

	for _, n := range in.Notices {
		stats.ImportantNotices = append(stats.ImportantNotices, NoticeSummary{ID: n.ID, Title: n.Title, CreatedAt: n.CreatedAt})
	}

	return stats
}

// applyTotals replaces the sampled counters with store-wide aggregates
func applyTotals(stats *DashboardStats, t booking.ReservationTotals, monthly []booking.PeriodTotals, now time.Time) {
	stats.TotalReservations = t.Count
	stats.TotalRevenue = t.Revenue
	stats.UniqueUsers = t.UniqueContacts
	stats.ConfirmedCount = t.Confirmed
	stats.CancelledCount = t.Cancelled

	stats.MonthlyStats = monthlyBuckets(now)
	stats.ThisMonthReservationCount = 0
	current := now.Format("2006-01")
	for _, p := range monthly {
		month := p.From.In(now.Location()).Format("2006-01")
		for i := range stats.MonthlyStats {
			if stats.MonthlyStats[i].Month == month {
				stats.MonthlyStats[i].Count = p.Count
				stats.MonthlyStats[i].Revenue = p.Revenue
			}
		}
		if month == current {
			stats.ThisMonthReservationCount = p.Count
		}
	}
}

// categoryHistogram counts packages per category, skipping empty categories.
// Sorted by count descending, then name.
func categoryHistogram(pkgs []catalog.Package) []CategoryStat {
	counts := make(map[string]int)
	for _, p := range pkgs {
		if c := strings.TrimSpace(p.Category); c != "" {
			counts[c]++
		}
	}

	out := make([]CategoryStat, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryStat{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// rankPackages returns the topN packages by reservation count.
// Reservations pointing at packages outside the set are not ranked.
func rankPackages(counts map[uuid.UUID]int, pkgs map[uuid.UUID]*catalog.Package, topN int) []PackageRanking {
	ranked := make([]PackageRanking, 0, len(counts))
	for id, n := range counts {
		p, ok := pkgs[id]
		if !ok {
			continue
		}
		ranked = append(ranked, PackageRanking{
			PackageID:        id,
			Title:            p.Title,
			Category:         p.Category,
			ReservationCount: n,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ReservationCount != ranked[j].ReservationCount {
			return ranked[i].ReservationCount > ranked[j].ReservationCount
		}
		if ranked[i].Title != ranked[j].Title {
			return ranked[i].Title < ranked[j].Title
		}
		return ranked[i].PackageID.String() < ranked[j].PackageID.String()
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func recentCancellations(cancelled []booking.Reservation, pkgs map[uuid.UUID]*catalog.Package) []CancellationSummary {
	sort.SliceStable(cancelled, func(i, j int) bool {
		return cancelled[i].CreatedAt.After(cancelled[j].CreatedAt)
	})
	if len(cancelled) > RecentCancellationLimit {
		cancelled = cancelled[:RecentCancellationLimit]
	}

	out := make([]CancellationSummary, len(cancelled))
	for i, r := range cancelled {
		out[i] = CancellationSummary{
			ReservationID: r.ID,
			PackageID:     r.PackageID,
			ContactName:   r.Contact.Name,
			TotalPrice:    r.TotalPrice,
			CreatedAt:     r.CreatedAt,
		}
		if p, ok := pkgs[r.PackageID]; ok {
			out[i].PackageTitle = p.Title
		}
	}
	return out
}
