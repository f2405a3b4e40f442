package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/travelpkg/backend/internal/interfaces/http/dto"
)

// limitedRouter echoes the number of body bytes it managed to read
func limitedRouter(limit int64) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	echo := func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "truncated")
			return
		}
		c.String(http.StatusOK, "%d", len(body))
	}
	router.POST("/packages/ingest", echo)
	router.GET("/packages", echo)
	return router
}

func TestBodyLimit(t *testing.T) {
	cases := []struct {
		name          string
		limit         int64
		method        string
		body          string
		contentLength int64
		wantStatus    int
		wantBody      string
	}{
		{name: "within limit", limit: 64, method: http.MethodPost, body: `{"listings":[]}`, contentLength: 15, wantStatus: http.StatusOK, wantBody: "15"},
		{name: "declared length over limit", limit: 32, method: http.MethodPost, body: strings.Repeat("x", 100), contentLength: 100, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "unknown length cut off while reading", limit: 32, method: http.MethodPost, body: strings.Repeat("x", 100), contentLength: -1, wantStatus: http.StatusBadRequest, wantBody: "truncated"},
		{name: "zero limit disables the check", limit: 0, method: http.MethodPost, body: strings.Repeat("x", 500), contentLength: 500, wantStatus: http.StatusOK, wantBody: "500"},
		{name: "bodyless GET", limit: 8, method: http.MethodGet, wantStatus: http.StatusOK, wantBody: "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := "/packages/ingest"
			if tc.method == http.MethodGet {
				path = "/packages"
			}
			req := httptest.NewRequest(tc.method, path, strings.NewReader(tc.body))
			req.ContentLength = tc.contentLength
			w := httptest.NewRecorder()
			limitedRouter(tc.limit).ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, w.Body.String())
			}
			if tc.wantStatus == http.StatusRequestEntityTooLarge {
				assert.Contains(t, w.Body.String(), dto.ErrCodeRequestTooBig)
				assert.NotEmpty(t, w.Header().Get(RequestIDKey))
			}
		})
	}
}
