package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	bookingapp "github.com/travelpkg/backend/internal/application/booking"
	catalogapp "github.com/travelpkg/backend/internal/application/catalog"
	reportapp "github.com/travelpkg/backend/internal/application/report"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/identity"
	"github.com/travelpkg/backend/internal/infrastructure/auth"
	"github.com/travelpkg/backend/internal/infrastructure/cache"
	"github.com/travelpkg/backend/internal/infrastructure/config"
	"github.com/travelpkg/backend/internal/infrastructure/persistence"
	"github.com/travelpkg/backend/internal/infrastructure/storage"
	"github.com/travelpkg/backend/internal/interfaces/http/dto"
	"github.com/travelpkg/backend/internal/interfaces/http/middleware"
)

const (
	adminEmail    = "admin@example.com"
	customerEmail = "kim@example.com"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires real services over an in-memory sqlite database
type testEnv struct {
	router  *gin.Engine
	jwt     *auth.JWTService
	db      *persistence.Database
	notices *persistence.GormNoticeRepository
	feedDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	middleware.SetupValidator()

	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })

	jwtSvc, err := auth.NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "test-issuer"})
	require.NoError(t, err)

	feedDir := t.TempDir()
	feed, err := storage.NewLocalFeedSource(feedDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = feed.Close() })

	idem := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = idem.Close() })

	authz := auth.NewAdminAllowlist([]string{adminEmail})
	packages := persistence.NewGormPackageRepository(database.DB)
	reservations := persistence.NewGormReservationRepository(database.DB)
	notices := persistence.NewGormNoticeRepository(database.DB)

	packageSvc := catalogapp.NewPackageService(packages, catalog.NewNormalizer(catalog.NormalizerConfig{}), authz,
		catalogapp.WithFeedSource(feed))
	reservationSvc := bookingapp.NewReservationService(reservations, packages, authz,
		bookingapp.WithIdempotencyStore(idem, time.Hour))
	dashboardSvc := reportapp.NewDashboardService(packages, reservations, notices, authz, nil, reportapp.DashboardOptions{}, nil)

	pkgH := NewPackageHandler(packageSvc)
	resH := NewReservationHandler(reservationSvc)
	dashH := NewDashboardHandler(dashboardSvc)
	healthH := NewHealthHandler("travel-backend", "test", map[string]Pinger{"database": database})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Authenticate(jwtSvc, nil))
	r.GET("/health", healthH.Health)
	api := r.Group("/api/v1")
	api.POST("/packages/normalize", pkgH.Normalize)
	api.POST("/packages/ingest", pkgH.Ingest)
	api.POST("/packages/resync", pkgH.Resync)
	api.POST("/packages/import", pkgH.ImportCSV)
	api.POST("/packages/sync-feed", pkgH.SyncFeed)
	api.GET("/packages", pkgH.List)
	api.POST("/packages", pkgH.Create)
	api.GET("/packages/:id", pkgH.Get)
	api.PUT("/packages/:id", pkgH.Update)
	api.DELETE("/packages/:id", pkgH.Delete)
	api.POST("/reservations", resH.Create)
	api.GET("/reservations/mine", middleware.RequireAuth(), resH.Mine)
	api.GET("/reservations", resH.List)
	api.GET("/reservations/:id", resH.Get)
	api.PUT("/reservations/:id/status", resH.UpdateStatus)
	api.PUT("/reservations/:id/payment", resH.UpdatePayment)
	api.DELETE("/reservations/:id", resH.Delete)
	api.GET("/dashboard/stats", dashH.Stats)
	api.GET("/notices/important", dashH.ImportantNotices)

	return &testEnv{router: r, jwt: jwtSvc, db: database, notices: notices, feedDir: feedDir}
}

// token issues a bearer token for email
func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := e.jwt.IssueToken(identity.Principal{Email: email}, time.Hour)
	require.NoError(t, err)
	return tok
}

type call struct {
	method  string
	path    string
	body    any
	as      string
	headers map[string]string
}

func (e *testEnv) do(t *testing.T, c call) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var body *bytes.Buffer
	switch b := c.body.(type) {
	case nil:
		body = &bytes.Buffer{}
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.as != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+e.token(t, c.as))
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// decodeData re-decodes the envelope data into out
func decodeData(t *testing.T, resp dto.Response, out any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func packageForm(title string) catalogapp.PackageRequest {
	return catalogapp.PackageRequest{
		Title:       title,
		Destination: "Jeju",
		Price:       300000,
		Category:    "golf",
		Images:      []string{"https://img.example.com/" + title + ".jpg"},
	}
}

// createPackage stores a package through the admin API
func (e *testEnv) createPackage(t *testing.T, title string) catalogapp.PackageResponse {
	t.Helper()
	w, resp := e.do(t, call{method: http.MethodPost, path: "/api/v1/packages", body: packageForm(title), as: adminEmail})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var pkg catalogapp.PackageResponse
	decodeData(t, resp, &pkg)
	return pkg
}

func reservationForm(pkg catalogapp.PackageResponse, email string) bookingapp.CreateReservationRequest {
	return bookingapp.CreateReservationRequest{
		PackageID:     pkg.ID,
		DepartureDate: "2024-07-15",
		Travelers:     2,
		ContactName:   "Kim",
		ContactEmail:  email,
		ContactPhone:  "010-1234-5678",
	}
}

// createReservation books pkg anonymously under email
func (e *testEnv) createReservation(t *testing.T, pkg catalogapp.PackageResponse, email string) bookingapp.ReservationResponse {
	t.Helper()
	w, resp := e.do(t, call{method: http.MethodPost, path: "/api/v1/reservations", body: reservationForm(pkg, email)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var r bookingapp.ReservationResponse
	decodeData(t, resp, &r)
	return r
}
