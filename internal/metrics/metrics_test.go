package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/dudu/poseperfect/internal/metrics"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(registry), metrics.WithNamespace("test"))

		Convey("When counters are recorded", func() {
			m.RecordAnalysis("static", metrics.OutcomeSuccess)
			m.RecordAnalysis("static", metrics.OutcomeSuccess)
			m.RecordNoPose()
			m.RecordDegenerateRatio()
			m.RecordRemovalFailure()
			m.RecordBatchFile(metrics.OutcomeError)

			Convey("Then the registry exposes them", func() {
				expected := `
# HELP test_analyses_total Analyses run, by mode and outcome
# TYPE test_analyses_total counter
test_analyses_total{mode="static",outcome="success"} 2
`
				So(testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_analyses_total"), ShouldBeNil)

				count, err := testutil.GatherAndCount(registry,
					"test_no_pose_total",
					"test_degenerate_ratio_total",
					"test_background_removal_failures_total",
					"test_batch_files_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 4)
			})
		})

		Convey("When a stage is observed", func() {
			m.ObserveStage(metrics.StageLighting, 20*time.Millisecond)

			Convey("Then the histogram has one series", func() {
				count, err := testutil.GatherAndCount(registry, "test_stage_duration_seconds")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When the handler is scraped", func() {
			m.RecordNoPose()
			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then the exposition contains the metric", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "test_no_pose_total 1")
			})
		})

		So(m.Registry(), ShouldEqual, registry)
	})

	Convey("Given a nil manager", t, func() {
		var m *metrics.Manager

		Convey("Then recording is a no-op", func() {
			So(func() {
				m.ObserveStage(metrics.StageDetection, time.Second)
				m.RecordAnalysis("dynamic", metrics.OutcomeError)
				m.RecordNoPose()
				m.RecordDegenerateRatio()
				m.RecordRemovalFailure()
				m.RecordBatchFile(metrics.OutcomeSuccess)
			}, ShouldNotPanic)
		})
	})
}
