package report

import (
	"context"
	"time"

	"github.com/travelpkg/backend/internal/domain/booking"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/identity"
	"github.com/travelpkg/backend/internal/domain/report"
	"github.com/travelpkg/backend/internal/infrastructure/cache"
	"github.com/travelpkg/backend/internal/infrastructure/logger"
	"github.com/travelpkg/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	dashboardCacheKey          = "stats"
	defaultMaxReservationsScan = 10000
	defaultNoticeLimit         = 5
)

// DashboardOptions tunes the aggregation
type DashboardOptions struct {
	TopPackages         int
	MaxReservationsScan int
	NoticeLimit         int
	CacheTTL            time.Duration
}

// DashboardService computes the admin dashboard snapshot.
// Reads are bounded and the result is served from cache for CacheTTL.
type DashboardService struct {
	packages     catalog.PackageRepository
	reservations booking.ReservationRepository
	notices      report.NoticeRepository
	authz        identity.Authorizer
	cache        cache.DashboardCache
	opts         DashboardOptions
	now          func() time.Time
	logger       *zap.Logger
}

// NewDashboardService creates a new DashboardService. A nil cache disables caching.
func NewDashboardService(
	packages catalog.PackageRepository,
	reservations booking.ReservationRepository,
	notices report.NoticeRepository,
	authz identity.Authorizer,
	dashboardCache cache.DashboardCache,
	opts DashboardOptions,
	log *zap.Logger,
) *DashboardService {
	if opts.TopPackages <= 0 {
		opts.TopPackages = report.DefaultTopPackages
	}
	if opts.MaxReservationsScan <= 0 {
		opts.MaxReservationsScan = defaultMaxReservationsScan
	}
	if opts.NoticeLimit <= 0 {
		opts.NoticeLimit = defaultNoticeLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DashboardService{
		packages:     packages,
		reservations: reservations,
		notices:      notices,
		authz:        authz,
		cache:        dashboardCache,
		opts:         opts,
		now:          time.Now,
		logger:       log,
	}
}

// Stats returns the dashboard snapshot. Any read failure yields the zeroed
// snapshot marked Degraded; the failure is logged and never returned.
// Only the authorization check can fail the call.
func (s *DashboardService) Stats(ctx context.Context) (report.DashboardStats, error) {
	if err := s.authz.RequireAdmin(ctx); err != nil {
		return report.DashboardStats{}, err
	}
	log := logger.Enrich(ctx, s.logger)

	if s.cache != nil && s.opts.CacheTTL > 0 {
		cached, ok, err := s.cache.Get(ctx, dashboardCacheKey)
		if err != nil {
			log.Warn("dashboard cache read failed", zap.Error(err))
		} else if ok {
			return *cached, nil
		}
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "report", "dashboard_stats")
	defer span.End()

	now := s.now()
	input, err := s.load(ctx, now)
	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.SetAttributes(span, "dashboard.degraded", true)
		log.Error("dashboard aggregation failed, serving empty snapshot", zap.Error(err))
		stats := report.EmptyDashboardStats(now)
		stats.Degraded = true
		return stats, nil
	}

	stats := report.ComputeDashboard(input, now, s.opts.TopPackages)
	if len(input.Reservations) >= s.opts.MaxReservationsScan {
		log.Warn("dashboard ranking sampled the newest reservations only", zap.Int("limit", s.opts.MaxReservationsScan))
	}

	if s.cache != nil && s.opts.CacheTTL > 0 {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.opts.CacheTTL); err != nil {
			log.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// load reads the counters from store-wide aggregates. The bounded
// newest-first scan only feeds the ranking and the recent cancellations.
func (s *DashboardService) load(ctx context.Context, now time.Time) (report.DashboardInput, error) {
	pkgs, err := s.packages.ListAll(ctx)
	if err != nil {
		return report.DashboardInput{}, err
	}
	totals, err := s.reservations.Totals(ctx)
	if err != nil {
		return report.DashboardInput{}, err
	}
	windows := report.MonthWindows(now)
	monthly := make([]booking.PeriodTotals, 0, len(windows))
	for _, w := range windows {
		p, err := s.reservations.TotalsBetween(ctx, w.From, w.To)
		if err != nil {
			return report.DashboardInput{}, err
		}
		monthly = append(monthly, p)
	}
	rs, err := s.reservations.ListRecent(ctx, s.opts.MaxReservationsScan)
	if err != nil {
		return report.DashboardInput{}, err
	}
	notices, err := s.notices.FindImportant(ctx, s.opts.NoticeLimit)
	if err != nil {
		return report.DashboardInput{}, err
	}
	return report.DashboardInput{
		Reservations: rs,
		Packages:     pkgs,
		Notices:      notices,
		Totals:       &totals,
		Monthly:      monthly,
	}, nil
}

// ImportantNotices lists the important notices shown on the storefront
func (s *DashboardService) ImportantNotices(ctx context.Context) ([]NoticeResponse, error) {
	notices, err := s.notices.FindImportant(ctx, s.opts.NoticeLimit)
	if err != nil {
		return nil, err
	}
	return ToNoticeResponses(notices), nil
}

// NoticeResponse represents a notice in API responses
type NoticeResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	IsImportant bool      `json:"is_important"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToNoticeResponses converts domain notices to responses
func ToNoticeResponses(notices []report.Notice) []NoticeResponse {
	out := make([]NoticeResponse, len(notices))
	for i, n := range notices {
		out[i] = NoticeResponse{
			ID:          n.ID.String(),
			Title:       n.Title,
			Content:     n.Content,
			IsImportant: n.IsImportant,
			CreatedAt:   n.CreatedAt,
		}
	}
	return out
}
