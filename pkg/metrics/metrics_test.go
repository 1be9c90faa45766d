package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// sum returns the total of all samples of the named family in reg.
func sum(reg *prometheus.Registry, name string) (float64, bool) {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		total := 0.0
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		return total, true
	}
	return 0, false
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.runsTotal.Inc()
				v, ok := sum(registry, "test_unit_runs_total")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a fresh global manager", t, func() {
		Init(WithNamespace("rec"))
		reg := GetRegistry()

		Convey("When a run is recorded", func() {
			RecordRunStarted()
			RecordRowsIngested("Muži", 40)
			RecordRowsIngested("Muži", 2)
			RecordDiagnostic("warning", "name-order")
			RecordSimilarPairs("category", 3)
			RecordCategoryComputed("Muži", 35, 12*time.Millisecond)
			RecordRunCompleted(time.Second)

			Convey("Then the counters reflect it", func() {
				v, _ := sum(reg, "rec_series_rows_ingested_total")
				So(v, ShouldEqual, 42)
				v, _ = sum(reg, "rec_series_diagnostics_total")
				So(v, ShouldEqual, 1)
				v, _ = sum(reg, "rec_series_similar_pairs_total")
				So(v, ShouldEqual, 3)
				v, _ = sum(reg, "rec_series_category_participants")
				So(v, ShouldEqual, 35)
				v, _ = sum(reg, "rec_series_run_duration_milliseconds")
				So(v, ShouldEqual, 1)
				v, _ = sum(reg, "rec_series_run_last_success_unix")
				So(v, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When HTTP and store metrics are recorded", func() {
			RecordHTTPRequest("/standings", "GET", "200")
			RecordHTTPRequestDuration("/standings", "GET", "200", 3.5)
			UpdateStoredCategories(7)
			RecordRunFailed()

			v, _ := sum(reg, "rec_series_http_requests_total")
			So(v, ShouldEqual, 1)
			v, _ = sum(reg, "rec_series_store_categories")
			So(v, ShouldEqual, 7)
			v, _ = sum(reg, "rec_series_runs_failed_total")
			So(v, ShouldEqual, 1)
		})

		Convey("When metrics are disabled", func() {
			Init(WithNamespace("off"), WithMetricsEnabled(false))
			So(func() {
				RecordRunStarted()
				RecordRowsIngested("x", 1)
				RecordHTTPRequest("/", "GET", "200")
			}, ShouldNotPanic)
			_, ok := sum(GetRegistry(), "off_series_runs_total")
			So(ok, ShouldBeTrue)
			v, _ := sum(GetRegistry(), "off_series_runs_total")
			So(v, ShouldEqual, 0)
		})
	})
}
