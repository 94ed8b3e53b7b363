package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/assessrec/internal/adapters/fetch"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFetchText(t *testing.T) {
	Convey("Given a job posting server", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/job", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><head><title>Job</title><style>p{}</style></head>
<body><h1>Team Manager</h1><script>var x = "hidden";</script>
<p>Requires&nbsp;leadership   skills, 40 minutes test.</p></body></html>`))
		})
		mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("Python developer\nwith SQL"))
		})
		mux.HandleFunc("/ua", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(r.UserAgent()))
		})
		mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		ctx := context.Background()
		f := fetch.New(fetch.WithUserAgent("test-agent"))

		Convey("HTML is reduced to visible text", func() {
			text, err := f.FetchText(ctx, srv.URL+"/job")
			So(err, ShouldBeNil)
			So(text, ShouldEqual, "Team Manager Requires leadership skills, 40 minutes test.")
		})

		Convey("Plain text is returned as-is", func() {
			text, err := f.FetchText(ctx, srv.URL+"/plain")
			So(err, ShouldBeNil)
			So(text, ShouldEqual, "Python developer\nwith SQL")
		})

		Convey("The configured user agent is sent", func() {
			text, err := f.FetchText(ctx, srv.URL+"/ua")
			So(err, ShouldBeNil)
			So(text, ShouldEqual, "test-agent")
		})

		Convey("The body is capped", func() {
			capped := fetch.New(fetch.WithMaxBytes(6))
			text, err := capped.FetchText(ctx, srv.URL+"/plain")
			So(err, ShouldBeNil)
			So(text, ShouldEqual, "Python")
		})

		Convey("Non-2xx responses fail", func() {
			_, err := f.FetchText(ctx, srv.URL+"/missing")
			So(errors.Is(err, fetch.ErrFetch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "404")
		})

		Convey("Timeouts fail", func() {
			quick := fetch.New(fetch.WithTimeout(50 * time.Millisecond))
			_, err := quick.FetchText(ctx, srv.URL+"/slow")
			So(errors.Is(err, fetch.ErrFetch), ShouldBeTrue)
		})
	})

	Convey("Given unusable URLs", t, func() {
		f := fetch.New()
		ctx := context.Background()

		Convey("Non-http schemes are rejected", func() {
			_, err := f.FetchText(ctx, "file:///etc/passwd")
			So(errors.Is(err, fetch.ErrFetch), ShouldBeTrue)
		})

		Convey("Unreachable hosts fail", func() {
			_, err := f.FetchText(ctx, "http://127.0.0.1:1/job")
			So(errors.Is(err, fetch.ErrFetch), ShouldBeTrue)
		})

		Convey("Garbage is rejected", func() {
			_, err := f.FetchText(ctx, "not a url")
			So(errors.Is(err, fetch.ErrFetch), ShouldBeTrue)
		})
	})
}

func TestCleanText(t *testing.T) {
	Convey("Whitespace is collapsed", t, func() {
		So(fetch.CleanText("  a b \n\t c "), ShouldEqual, "a b c")
		So(strings.TrimSpace(fetch.CleanText("")), ShouldEqual, "")
	})
}
