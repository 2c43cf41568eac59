package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives the events the converter core reports.
type Recorder interface {
	ObserveRefresh(outcome string, duration time.Duration)
	SetRatesLoaded(count int)
	IncConversion(fallback bool)
}

// Collector records converter metrics into its own registry.
type Collector struct {
	registry        *prometheus.Registry
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	ratesLoaded     prometheus.Gauge
	conversions     *prometheus.CounterVec
}

// New builds a Collector with a fresh registry that also exposes Go runtime metrics.
func New() *Collector {
	collector := &Collector{
		registry: prometheus.NewRegistry(),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "currency_rate_refresh_total",
			Help: "Rate refresh attempts by outcome.",
		}, []string{"outcome"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "currency_rate_refresh_duration_seconds",
			Help:    "Duration of rate refresh attempts.",
			Buckets: prometheus.DefBuckets,
		}),
		ratesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "currency_rates_loaded",
			Help: "Number of currency rates in the current table.",
		}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "currency_conversions_total",
			Help: "Conversions performed, labelled by whether the identity fallback was used.",
		}, []string{"fallback"}),
	}

	collector.registry.MustRegister(
		collector.refreshTotal,
		collector.refreshDuration,
		collector.ratesLoaded,
		collector.conversions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return collector
}

func (collector *Collector) ObserveRefresh(outcome string, duration time.Duration) {
	collector.refreshTotal.WithLabelValues(outcome).Inc()
	collector.refreshDuration.Observe(duration.Seconds())
}

func (collector *Collector) SetRatesLoaded(count int) {
	collector.ratesLoaded.Set(float64(count))
}

func (collector *Collector) IncConversion(fallback bool) {
	collector.conversions.WithLabelValues(strconv.FormatBool(fallback)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (collector *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(collector.registry, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveRefresh(string, time.Duration) {}
func (Nop) SetRatesLoaded(int)                   {}
func (Nop) IncConversion(bool)                   {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
