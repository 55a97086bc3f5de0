package metrics

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "fakeplayers"

	reasonLabelName = "reason"
	modeLabelName   = "mode"
)

// 失败原因
const (
	ReasonCreate      = "create"
	ReasonNoSnapshot  = "no_snapshot"
	ReasonUnconfirmed = "unconfirmed"
	ReasonRegister    = "register"
	ReasonTeardown    = "teardown"
)

var (
	// confirmBuckets 为确认耗时直方图的桶划分，单位为毫秒
	confirmBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000}

	FakePlayersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "number of fake players confirmed in the roster",
		}, []string{modeLabelName})

	FakePlayersFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_total",
			Help:      "number of fake players abandoned, by reason",
		}, []string{reasonLabelName})

	FakePlayersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active",
			Help:      "number of fake players currently tracked",
		})

	ConfirmLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirm_latency_ms",
			Help:      "time from login to observed roster membership",
			Buckets:   confirmBuckets,
		}, []string{modeLabelName})

	RosterSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "roster_size",
			Help:      "number of players in the host roster",
		})

	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "number of websocket clients",
		})
)

// Register 将全部指标注册到 r，已注册的指标会被跳过
func Register(r prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		FakePlayersCreated,
		FakePlayersFailed,
		FakePlayersActive,
		ConfirmLatency,
		RosterSize,
		ConnectedClients,
	}
	for _, c := range collectors {
		if err := r.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
