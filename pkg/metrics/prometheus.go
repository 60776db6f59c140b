package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	portfolioTotal   prometheus.Gauge
	portfolioCount   prometheus.Gauge
	portfolioAverage prometheus.Gauge
	added            prometheus.Counter
	rejected         *prometheus.CounterVec
	frames           *prometheus.CounterVec
	restarts         *prometheus.CounterVec
	syncRuns         prometheus.Counter
	activeViews      prometheus.Gauge
	errorsTotal      *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	queueDepth       *prometheus.GaugeVec
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// New returns the process-wide recorder registered on the default registry.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewWithRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		portfolioTotal: f.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_total_value",
			Help: "Sum of all investment amounts",
		}),
		portfolioCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_investments",
			Help: "Number of investments in the portfolio",
		}),
		portfolioAverage: f.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_average_value",
			Help: "Average investment amount",
		}),
		added: f.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_investments_added_total",
			Help: "Investments accepted by the entry form",
		}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_validation_rejections_total",
			Help: "Entry form submissions rejected, by field",
		}, []string{"field"}),
		frames: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_chart_frames_total",
			Help: "Chart frames rendered, by format",
		}, []string{"format"}),
		restarts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_chart_animation_restarts_total",
			Help: "Chart animation restarts",
		}, []string{"reduce_motion"}),
		syncRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "portfolio_sync_runs_total",
			Help: "Background sync computations",
		}),
		activeViews: f.NewGauge(prometheus.GaugeOpts{
			Name: "portfolio_active_views",
			Help: "Connected portfolio views",
		}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_errors_total",
			Help: "Total number of errors encountered",
		}, []string{"type"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_operation_duration_seconds",
			Help:    "Duration of operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		queueDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "portfolio_queue_depth",
			Help: "Items waiting in an internal queue",
		}, []string{"queue"}),
	}
}

func (r *Recorder) RecordPortfolio(total float64, count int, average float64) {
	r.portfolioTotal.Set(total)
	r.portfolioCount.Set(float64(count))
	r.portfolioAverage.Set(average)
}

func (r *Recorder) RecordInvestmentAdded() { r.added.Inc() }

func (r *Recorder) RecordValidationRejected(field string) {
	r.rejected.WithLabelValues(field).Inc()
}

func (r *Recorder) RecordFrame(format string) { r.frames.WithLabelValues(format).Inc() }

func (r *Recorder) RecordAnimationRestart(reduceMotion bool) {
	r.restarts.WithLabelValues(strconv.FormatBool(reduceMotion)).Inc()
}

func (r *Recorder) RecordSyncRun() { r.syncRuns.Inc() }

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordQueueDepth sets the current length of an internal queue.
func (r *Recorder) RecordQueueDepth(queue string, depth int) {
	r.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

func (r *Recorder) ViewOpened() { r.activeViews.Inc() }
func (r *Recorder) ViewClosed() { r.activeViews.Dec() }
