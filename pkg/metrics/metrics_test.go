package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating a manager with custom options", func() {
			reg := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("custom"),
				WithSubsystem("sub"),
				WithLatencyBuckets([]float64{1, 2, 3}),
				WithPrometheusRegistry(reg),
			)

			Convey("Then the options are applied", func() {
				So(m.namespace, ShouldEqual, "custom")
				So(m.subsystem, ShouldEqual, "sub")
				So(m.latencyBuckets, ShouldResemble, []float64{1, 2, 3})
				So(m.registry, ShouldEqual, reg)
			})
		})

		Convey("When empty values are passed", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithLatencyBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "assessrec")
				So(m.subsystem, ShouldEqual, "recommender")
				So(len(m.latencyBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When a manager registers its collectors", func() {
			m := NewManager(WithPrometheusRegistry(reg))
			m.recommendations.WithLabelValues("ok").Inc()
			m.catalogCache.WithLabelValues("hit").Inc()

			Convey("Then the registry exposes them", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "assessrec_recommender_recommendations_total")
				So(names, ShouldContain, "assessrec_catalog_cache_total")
				So(names, ShouldContain, "assessrec_catalog_size")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Recording functions should not panic", func() {
			So(func() { RecordRecommendation("ok", 12.5) }, ShouldNotPanic)
			So(func() { RecordCandidatesRanked(42) }, ShouldNotPanic)
			So(func() { RecordFilterFallback() }, ShouldNotPanic)
			So(func() { RecordCatalogRefresh("crawler") }, ShouldNotPanic)
			So(func() { RecordCatalogCache(true) }, ShouldNotPanic)
			So(func() { RecordCatalogCache(false) }, ShouldNotPanic)
			So(func() { RecordFetchError() }, ShouldNotPanic)
			So(func() { RecordHTTPRequest("/api/recommend", "POST", "200") }, ShouldNotPanic)
			So(func() { RecordHTTPRequestDuration("/api/recommend", "POST", "200", 3.2) }, ShouldNotPanic)
			So(func() { RecordErrorByEndpoint("/api/recommend", "POST", "invalid_request") }, ShouldNotPanic)
			So(func() { RecordErrorByType("invalid_request", "warning") }, ShouldNotPanic)
			So(func() { UpdateSystemMemoryUsage(1024) }, ShouldNotPanic)
			So(func() { UpdateSystemGoroutineCount(8) }, ShouldNotPanic)
		})

		Convey("Gauges reflect the last value set", func() {
			UpdateCatalogSize(17)
			So(testutil.ToFloat64(globalManager.catalogSize), ShouldEqual, 17)

			before := testutil.ToFloat64(globalManager.filterFallbacks)
			RecordFilterFallback()
			So(testutil.ToFloat64(globalManager.filterFallbacks), ShouldEqual, before+1)
		})

		Convey("GetRegistry returns the custom registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
