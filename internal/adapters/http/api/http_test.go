package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/assessrec/internal/adapters/catalog"
	"github.com/okian/assessrec/internal/adapters/http/api"
	service "github.com/okian/assessrec/internal/app"
	"github.com/okian/assessrec/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type mockCatalog struct {
	recs []model.AssessmentRecord
	err  error
}

func (m *mockCatalog) Catalog(context.Context) ([]model.AssessmentRecord, error) {
	return m.recs, m.err
}

type mockFetcher struct {
	text string
	err  error
}

func (m *mockFetcher) FetchText(context.Context, string) (string, error) {
	return m.text, m.err
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

func newMux(cat *mockCatalog, f *mockFetcher) *http.ServeMux {
	svc := service.New(service.WithCatalog(cat), service.WithFetcher(f))
	server := api.NewServer(svc, &mockStatsProvider{stats: map[string]any{"requests": 3}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(&mockCatalog{recs: catalog.SampleRecords()}, &mockFetcher{})

		Convey("Then health endpoint serves metrics", func() {
			w := do(mux, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats endpoint returns the provider stats", func() {
			w := do(mux, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"requests":3`)
		})

		Convey("And unsupported methods are not allowed", func() {
			w := do(mux, "DELETE", "/api/recommend", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, "GET, POST")
			So(w.Body.String(), ShouldContainSubstring, `"error":"method_not_allowed"`)

			w = do(mux, "PUT", "/api/explain", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, "GET, POST")

			w = do(mux, "POST", "/api/catalog", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, "GET")

			w = do(mux, "POST", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, "GET")
		})
	})

	Convey("Given a nil mux", t, func() {
		server := api.NewServer(service.New(), nil)
		So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
	})
}

func TestRecommendHandler(t *testing.T) {
	Convey("Given the recommend endpoint", t, func() {
		cat := &mockCatalog{recs: []model.AssessmentRecord{
			{Name: "Coding Pro Assessment", TestType: "Technical Skills", Duration: "60 minutes"},
			{Name: "Leadership Assessment", TestType: "Leadership", Duration: "45 minutes"},
		}}
		f := &mockFetcher{text: "leadership role"}
		mux := newMux(cat, f)

		Convey("When posting a query", func() {
			w := do(mux, "POST", "/api/recommend", `{"query":"Team manager position requiring leadership skills"}`)

			Convey("Then the ranked recommendations are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				var body struct {
					Recommendations []model.AssessmentRecord `json:"recommendations"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(len(body.Recommendations), ShouldBeGreaterThan, 0)
				So(body.Recommendations[0].Name, ShouldEqual, "Leadership Assessment")
			})
		})

		Convey("When using GET with a url", func() {
			w := do(mux, "GET", "/api/recommend?url=https://jobs.example.com/42", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Leadership Assessment")
		})

		Convey("When neither query nor url is given", func() {
			w := do(mux, "POST", "/api/recommend", `{"query":"   "}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["error"], ShouldEqual, "invalid_request")
		})

		Convey("When the body is empty", func() {
			w := do(mux, "POST", "/api/recommend", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is malformed", func() {
			w := do(mux, "POST", "/api/recommend", `{"query":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["error"], ShouldEqual, "invalid_request")
		})

		Convey("When the url cannot be fetched", func() {
			f.err = errors.New("connection refused")
			w := do(mux, "POST", "/api/recommend", `{"url":"http://unreachable.invalid"}`)
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			body := decodeError(w)
			So(body["error"], ShouldEqual, "source_fetch_error")
			So(body["message"], ShouldContainSubstring, "connection refused")
			So(w.Body.String(), ShouldNotContainSubstring, "recommendations")
		})

		Convey("When the catalog is unavailable", func() {
			cat.err = catalog.ErrCatalogEmpty
			w := do(mux, "GET", "/api/recommend?query=java", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w)["error"], ShouldEqual, "catalog_unavailable")
		})

		Convey("When asking for an explanation", func() {
			w := do(mux, "POST", "/api/explain", `{"query":"leadership in under 50 minutes"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var exp service.Explanation
			So(json.Unmarshal(w.Body.Bytes(), &exp), ShouldBeNil)
			So(exp.Features.Skills, ShouldResemble, []string{"leadership"})
			So(exp.Features.MaxDuration, ShouldEqual, 50)
			So(exp.CatalogSize, ShouldEqual, 2)
			So(exp.Fallback, ShouldBeFalse)
		})
	})
}

func TestCatalogHandler(t *testing.T) {
	Convey("Given the catalog endpoint", t, func() {
		cat := &mockCatalog{recs: catalog.SampleRecords()}
		mux := newMux(cat, &mockFetcher{})

		Convey("Then it lists every record with a count", func() {
			w := do(mux, "GET", "/api/catalog", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Count       int                      `json:"count"`
				Assessments []model.AssessmentRecord `json:"assessments"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body.Count, ShouldEqual, len(catalog.SampleRecords()))
			So(len(body.Assessments), ShouldEqual, body.Count)
		})

		Convey("Then a failing provider is a 503", func() {
			cat.err = errors.New("disk gone")
			w := do(mux, "GET", "/api/catalog", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given the request id middleware", t, func() {
		var seen string
		h := api.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = api.RequestID(r.Context())
		}))

		Convey("An incoming id is propagated", func() {
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(seen, ShouldEqual, "abc-123")
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})

		Convey("A missing id is generated", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", "/", http.NoBody))
			So(len(seen), ShouldEqual, 36)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, seen)
		})
	})
}

func TestOpError(t *testing.T) {
	Convey("Given operation errors", t, func() {
		cause := errors.New("bad json")

		Convey("WrapKind exposes kind and cause", func() {
			err := api.WrapKind("api.recommend", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.recommend: bad json")
		})

		Convey("NewKind carries only the kind", func() {
			err := api.NewKind("api.catalog", service.ErrCatalogUnavailable)
			So(service.KindOf(err), ShouldEqual, service.KindCatalog)
			So(err.Error(), ShouldEqual, "api.catalog: assessment catalog unavailable")
		})

		Convey("Wrap of nil is nil", func() {
			So(api.Wrap("op", nil), ShouldBeNil)
		})

		Convey("Wrap keeps service kinds visible", func() {
			err := api.Wrap("api.recommend", service.ErrSourceFetch)
			So(service.KindOf(err), ShouldEqual, service.KindSourceFetch)
		})
	})
}
