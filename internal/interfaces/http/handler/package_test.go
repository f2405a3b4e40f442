package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/travelpkg/backend/internal/application/catalog"
	"github.com/travelpkg/backend/internal/interfaces/http/dto"
	"github.com/travelpkg/backend/internal/interfaces/http/middleware"
)

func scrapedEnvelope(id, title, price string) map[string]any {
	return map[string]any{
		"source": "scraped",
		"payload": map[string]any{
			"id":          id,
			"title":       title,
			"destination": "Jeju",
			"price":       price,
			"duration":    "2박 3일",
			"gallery":     []string{"https://img.example.com/" + id + ".jpg"},
		},
	}
}

func TestPackageHandler_Normalize(t *testing.T) {
	env := newTestEnv(t)

	t.Run("returns the canonical package without storing it", func(t *testing.T) {
		w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/normalize", body: scrapedEnvelope("a1", "Jeju Escape", "250,000원")})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var pkg catalogapp.PackageResponse
		decodeData(t, resp, &pkg)
		assert.Equal(t, int64(250000), pkg.Price)
		assert.Equal(t, "scraped", pkg.Source)

		_, list := env.do(t, call{method: http.MethodGet, path: "/api/v1/packages"})
		assert.Equal(t, int64(0), list.Meta.Total)
	})

	t.Run("unknown source", func(t *testing.T) {
		w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/normalize", body: `{"source": "fax", "payload": {}}`})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "source", resp.Error.Field)
	})

	t.Run("malformed body", func(t *testing.T) {
		w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/normalize", body: `{"source": `})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, resp.Success)
	})
}

func TestPackageHandler_CreateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	form := packageForm("Golf Week")

	w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages", body: form})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)

	w, resp = env.do(t, call{method: http.MethodPost, path: "/api/v1/packages", body: form, as: customerEmail})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)

	w, _ = env.do(t, call{method: http.MethodPost, path: "/api/v1/packages", body: form, as: adminEmail})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = env.do(t, call{method: http.MethodPost, path: "/api/v1/packages", body: form, as: adminEmail})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPackageHandler_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	form := packageForm("No Images")
	form.Images = nil

	w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages", body: form, as: adminEmail})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, "images", resp.Error.Details[0].Field)
}

func TestPackageHandler_Get(t *testing.T) {
	env := newTestEnv(t)
	pkg := env.createPackage(t, "Jeju Golf")

	t.Run("by id", func(t *testing.T) {
		w, resp := env.do(t, call{method: http.MethodGet, path: "/api/v1/packages/" + pkg.ID.String()})

		require.Equal(t, http.StatusOK, w.Code)
		var got catalogapp.PackageResponse
		decodeData(t, resp, &got)
		assert.Equal(t, pkg.ID, got.ID)
	})

	t.Run("by slug", func(t *testing.T) {
		w, resp := env.do(t, call{method: http.MethodGet, path: "/api/v1/packages/" + pkg.Slug})

		require.Equal(t, http.StatusOK, w.Code)
		var got catalogapp.PackageResponse
		decodeData(t, resp, &got)
		assert.Equal(t, pkg.ID, got.ID)
	})

	t.Run("unknown", func(t *testing.T) {
		w, resp := env.do(t, call{method: http.MethodGet, path: "/api/v1/packages/no-such-package"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})
}

func TestPackageHandler_List(t *testing.T) {
	env := newTestEnv(t)
	env.createPackage(t, "Jeju Golf")
	env.createPackage(t, "Busan Golf")
	env.createPackage(t, "Osaka Food")

	w, resp := env.do(t, call{method: http.MethodGet, path: "/api/v1/packages?page_size=2"})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 2, resp.Meta.PageSize)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	var pkgs []catalogapp.PackageResponse
	decodeData(t, resp, &pkgs)
	assert.Len(t, pkgs, 2)

	w, _ = env.do(t, call{method: http.MethodGet, path: "/api/v1/packages?page_size=500"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPackageHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	pkg := env.createPackage(t, "Jeju Golf")
	path := "/api/v1/packages/" + pkg.ID.String()

	form := packageForm("Jeju Golf Deluxe")
	form.Price = 450000
	form.Version = &pkg.Version

	w, resp := env.do(t, call{method: http.MethodPut, path: path, body: form, as: adminEmail})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated catalogapp.PackageResponse
	decodeData(t, resp, &updated)
	assert.Equal(t, int64(450000), updated.Price)
	assert.Equal(t, "Jeju Golf Deluxe", updated.Title)

	w, resp = env.do(t, call{method: http.MethodPut, path: path, body: form, as: adminEmail})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeConcurrencyConflict, resp.Error.Code)

	w, resp = env.do(t, call{method: http.MethodPut, path: "/api/v1/packages/not-a-uuid", body: form, as: adminEmail})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", resp.Error.Field)
}

func TestPackageHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	booked := env.createPackage(t, "Booked")
	free := env.createPackage(t, "Free")
	env.createReservation(t, booked, customerEmail)

	w, _ := env.do(t, call{method: http.MethodDelete, path: "/api/v1/packages/" + booked.ID.String(), as: adminEmail})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = env.do(t, call{method: http.MethodDelete, path: "/api/v1/packages/" + free.ID.String(), as: adminEmail})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = env.do(t, call{method: http.MethodGet, path: "/api/v1/packages/" + free.ID.String()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPackageHandler_Ingest(t *testing.T) {
	env := newTestEnv(t)

	t.Run("upserts every listing", func(t *testing.T) {
		body := map[string]any{
			"listings": []any{
				scrapedEnvelope("a1", "Jeju", "100,000원"),
				scrapedEnvelope("a2", "Busan", "200,000원"),
			},
		}
		w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/ingest", body: body, as: adminEmail})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result catalogapp.IngestResult
		decodeData(t, resp, &result)
		assert.Equal(t, 2, result.Count)
		assert.Equal(t, "id", result.ConflictKey)
		assert.Len(t, result.PackageIDs, 2)

		// the same batch again updates in place
		w, _ = env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/ingest", body: body, as: adminEmail})
		require.Equal(t, http.StatusOK, w.Code)
		_, list := env.do(t, call{method: http.MethodGet, path: "/api/v1/packages"})
		assert.Equal(t, int64(2), list.Meta.Total)
	})

	t.Run("bad envelope names its position", func(t *testing.T) {
		body := map[string]any{
			"listings": []any{
				scrapedEnvelope("a1", "Jeju", "100,000원"),
				map[string]any{"source": "fax", "payload": map[string]any{}},
			},
		}
		w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/ingest", body: body, as: adminEmail})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "listings[1].source", resp.Error.Field)
	})

	t.Run("unknown conflict key", func(t *testing.T) {
		body := map[string]any{
			"listings":     []any{scrapedEnvelope("a1", "Jeju", "100,000원")},
			"conflict_key": "title",
		}
		w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/ingest", body: body, as: adminEmail})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("customers cannot ingest", func(t *testing.T) {
		body := map[string]any{"listings": []any{scrapedEnvelope("a1", "Jeju", "100,000원")}}
		w, _ := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/ingest", body: body, as: customerEmail})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestPackageHandler_Resync(t *testing.T) {
	env := newTestEnv(t)
	env.createPackage(t, "Stale")

	body := map[string]any{"listings": []any{scrapedEnvelope("n1", "Fresh", "150,000원")}}
	w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/resync", body: body, as: adminEmail})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result catalogapp.IngestResult
	decodeData(t, resp, &result)
	assert.Equal(t, 1, result.Count)

	_, list := env.do(t, call{method: http.MethodGet, path: "/api/v1/packages"})
	var pkgs []catalogapp.PackageResponse
	decodeData(t, list, &pkgs)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "Fresh", pkgs[0].Title)

	w, _ = env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/resync", body: map[string]any{"listings": []any{}}, as: adminEmail})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func csvUpload(t *testing.T, env *testEnv, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "listings.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/packages/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+env.token(t, adminEmail))
	return req
}

func TestPackageHandler_ImportCSV(t *testing.T) {
	env := newTestEnv(t)

	t.Run("imports every row", func(t *testing.T) {
		csv := "id,title,price,gallery\njeju-1,Jeju,\"1,800,000원\",a.jpg|b.jpg\nbusan-1,Busan,900000,c.jpg\n"
		w, resp := env.serve(t, csvUpload(t, env, csv))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result catalogapp.IngestResult
		decodeData(t, resp, &result)
		assert.Equal(t, 2, result.Count)
	})

	t.Run("missing file", func(t *testing.T) {
		w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/import", as: adminEmail})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "file", resp.Error.Field)
	})
}

func TestPackageHandler_SyncFeed(t *testing.T) {
	env := newTestEnv(t)
	feed := `[{"id":"j1","title":"Jeju","price":"100,000원","gallery":["a.jpg"]},{"id":"j2","title":"Busan","price":"200,000원","gallery":["b.jpg"]}]`
	require.NoError(t, os.WriteFile(filepath.Join(env.feedDir, "nightly.json"), []byte(feed), 0o600))

	w, resp := env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/sync-feed", body: map[string]string{"key": "nightly.json"}, as: adminEmail})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result catalogapp.IngestResult
	decodeData(t, resp, &result)
	assert.Equal(t, 2, result.Count)

	w, _ = env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/sync-feed", body: map[string]string{"key": "absent.json"}, as: adminEmail})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, call{method: http.MethodPost, path: "/api/v1/packages/sync-feed", body: map[string]string{"key": "../escape.json"}, as: adminEmail})
	assert.Equal(t, http.StatusBadRequest, w.Code)

}
