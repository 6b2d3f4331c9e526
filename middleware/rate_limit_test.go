package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cliphost/cliphost/config"
)

func TestRateLimitMiddlewareRejectsBurst(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "1")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.POST("/upload/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/upload/", nil)
		req.RemoteAddr = "203.0.113.7:4242"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the bucket is drained, got %d", rec.Code)
	}
	if rec.Body.String() != `{"error":"Rate limit exceeded"}` {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRateLimitTracksClientsSeparately(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "1")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.POST("/upload/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/upload/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("198.51.100.1:1000"); code != http.StatusOK {
		t.Fatalf("first client should pass, got %d", code)
	}
	if code := do("198.51.100.1:1000"); code != http.StatusTooManyRequests {
		t.Fatalf("first client should be limited, got %d", code)
	}
	// A different client IP gets its own bucket.
	if code := do("198.51.100.2:1000"); code != http.StatusOK {
		t.Errorf("second client must not share the first client's bucket, got %d", code)
	}
}
