package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("reports"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the collectors are registered on that registry", func() {
				So(m, ShouldNotBeNil)
				m.reportsBuilt.WithLabelValues("team").Inc()

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_reports_reports_built_total"], ShouldBeTrue)
				So(names["test_reports_queue_capacity"], ShouldBeTrue)
			})

			Convey("And the constant labels are attached", func() {
				m.queueSize.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() != "test_reports_queue_size" {
						continue
					}
					for _, lp := range f.GetMetric()[0].GetLabel() {
						if lp.GetName() == "env" && lp.GetValue() == "test" {
							found = true
						}
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When a report is built", func() {
			before := testutil.ToFloat64(globalManager.reportsBuilt.WithLabelValues("executive"))
			RecordReportBuilt("executive", 12.5, 240)

			Convey("Then the counter for its kind increases", func() {
				after := testutil.ToFloat64(globalManager.reportsBuilt.WithLabelValues("executive"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When the store fails", func() {
			before := testutil.ToFloat64(globalManager.storeErrors)
			loaded := testutil.ToFloat64(globalManager.storeCallsLoaded)
			RecordStoreQuery(3, 100, errors.New("boom"))

			Convey("Then errors increase and no calls are counted", func() {
				So(testutil.ToFloat64(globalManager.storeErrors)-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.storeCallsLoaded), ShouldEqual, loaded)
			})
		})

		Convey("When recording queue and worker metrics", func() {
			So(func() {
				UpdateQueueCapacity(64)
				UpdateQueueSize(2)
				RecordQueueEnqueue()
				RecordQueueDequeue(0.4)
				RecordQueueRejection()
				UpdateWorkerCount(4)
				AddWorkerBusy(1)
				AddWorkerBusy(-1)
				RecordWorkerError()
				RecordReportFailed("team")
			}, ShouldNotPanic)

			Convey("Then gauges reflect the last value", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
			})
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("/reports/team", "GET", "200")
				RecordHTTPRequestDuration("/reports/team", "GET", "200", 15.0)
				RecordHTTPError("/reports/team", "GET", "bad_request")
			}, ShouldNotPanic)
		})

		Convey("The registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global manager rebuilt with options", t, func() {
		Configure(
			WithNamespace("acme"),
			WithSubsystem("calls"),
			WithHistogramBuckets([]float64{5, 50}),
			WithConstLabels(map[string]string{"region": "eu"}),
		)
		defer Configure()

		RecordReportBuilt("team", 7, 10)

		Convey("Then the new names and labels are served from the registry", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var found bool
			for _, f := range families {
				if f.GetName() != "acme_calls_reports_built_total" {
					continue
				}
				for _, lp := range f.GetMetric()[0].GetLabel() {
					if lp.GetName() == "region" && lp.GetValue() == "eu" {
						found = true
					}
				}
			}
			So(found, ShouldBeTrue)
		})
	})

	Convey("Without options the defaults come back", t, func() {
		Configure()
		RecordReportFailed("team")
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)
		names := map[string]bool{}
		for _, f := range families {
			names[f.GetName()] = true
		}
		So(names["nakama_analytics_reports_failed_total"], ShouldBeTrue)
	})
}
