package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/assessrec/internal/bootstrap"
	"github.com/okian/assessrec/internal/config"
	"github.com/okian/assessrec/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func testComponents(t *testing.T) *bootstrap.Components {
	cfg := config.New()
	cfg.CatalogURL = ""
	cfg.CatalogStore = config.StoreSQLite
	cfg.CatalogPath = filepath.Join(t.TempDir(), "catalog.db")
	c, err := bootstrap.Build(cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the assembled server handler", t, func() {
		ctx := context.Background()
		h := newHandler(ctx, testComponents(t), logger.NewNop())

		convey.Convey("Then every route is served", func() {
			for _, path := range []string{"/healthz", "/stats", "/api/catalog", "/api-docs", "/openapi.yaml"} {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest("GET", path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("And responses carry a request id", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", "/stats", http.NoBody))
			convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
		})

		convey.Convey("And recommendations are returned", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/recommend", strings.NewReader(`{"query":"python developer"}`))
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "Python")
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("updateSystemMetrics should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("It stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			cancel()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("updater did not stop")
			}
		})
	})
}

func TestRunFailsOnInvalidConfig(t *testing.T) {
	convey.Convey("Given an invalid configuration", t, func() {
		cfg := config.New()
		cfg.TopK = 0
		err := run(context.Background(), cfg, logger.NewNop())
		convey.So(err, convey.ShouldNotBeNil)
	})
}
