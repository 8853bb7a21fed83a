// Package metrics owns the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketplace"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec   // method, route, status
	httpDuration *prometheus.HistogramVec // method, route

	ordersPlaced   prometheus.Counter
	orderAmount    prometheus.Histogram
	ordersRejected *prometheus.CounterVec // reason

	stockSweeps   *prometheus.CounterVec // outcome
	productsSwept prometheus.Counter
}

// New builds a private registry with the process and Go runtime collectors plus the application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersPlaced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders written successfully.",
		}),
		orderAmount: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_amount",
			Help:      "Total amount of placed orders.",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000},
		}),
		ordersRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Order placements that failed, by error kind.",
		}, []string{"reason"}),
		stockSweeps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_sweeps_total",
			Help:      "Stock status sweep runs by outcome.",
		}, []string{"outcome"}),
		productsSwept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_sweep_products_changed_total",
			Help:      "Products whose status was changed by the stock sweep.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveHTTP records one finished request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) OrderPlaced(totalAmount float64) {
	m.ordersPlaced.Inc()
	m.orderAmount.Observe(totalAmount)
}

func (m *Metrics) OrderRejected(reason string) {
	m.ordersRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) StockSweep(changed int64, err error) {
	if err != nil {
		m.stockSweeps.WithLabelValues("error").Inc()
		return
	}
	m.stockSweeps.WithLabelValues("ok").Inc()
	m.productsSwept.Add(float64(changed))
}
