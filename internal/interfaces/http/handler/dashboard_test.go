package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	reportapp "github.com/travelpkg/backend/internal/application/report"
	"github.com/travelpkg/backend/internal/domain/report"
)

func seedNotice(t *testing.T, env *testEnv, title string, important bool) {
	t.Helper()
	n, err := report.NewNotice(title, "details", important)
	require.NoError(t, err)
	require.NoError(t, env.notices.Save(context.Background(), n))
}

func TestDashboardHandler_Stats(t *testing.T) {
	env := newTestEnv(t)
	golf := env.createPackage(t, "Jeju Golf")
	env.createPackage(t, "Busan Golf")
	r := env.createReservation(t, golf, customerEmail)
	env.createReservation(t, golf, "lee@example.com")
	seedNotice(t, env, "Typhoon advisory", true)

	w, _ := env.do(t, call{method: http.MethodPut, path: "/api/v1/reservations/" + r.ID.String() + "/status", body: map[string]any{"status": "confirmed"}, as: adminEmail})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, call{method: http.MethodGet, path: "/api/v1/dashboard/stats"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = env.do(t, call{method: http.MethodGet, path: "/api/v1/dashboard/stats", as: customerEmail})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := env.do(t, call{method: http.MethodGet, path: "/api/v1/dashboard/stats", as: adminEmail})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats report.DashboardStats
	decodeData(t, resp, &stats)
	assert.False(t, stats.Degraded)
	assert.Equal(t, 2, stats.TotalPackages)
	assert.Equal(t, 2, stats.TotalReservations)
	assert.Equal(t, 1, stats.ConfirmedCount)
	assert.Len(t, stats.ImportantNotices, 1)
}

func TestDashboardHandler_ImportantNotices(t *testing.T) {
	env := newTestEnv(t)
	seedNotice(t, env, "Typhoon advisory", true)
	seedNotice(t, env, "New brochure", false)

	w, resp := env.do(t, call{method: http.MethodGet, path: "/api/v1/notices/important"})

	require.Equal(t, http.StatusOK, w.Code)
	var notices []reportapp.NoticeResponse
	decodeData(t, resp, &notices)
	require.Len(t, notices, 1)
	assert.Equal(t, "Typhoon advisory", notices[0].Title)
	assert.True(t, notices[0].IsImportant)
}
