// Package obs содержит метрики Prometheus клиента и его веб-интерфейса.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics объединяет коллекторы исходящих вызовов API и входящих запросов к страницам.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	refreshes   *prometheus.CounterVec

	pageInFlight prometheus.Gauge
	pageRequests *prometheus.CounterVec
	pageDuration *prometheus.HistogramVec
}

// NewMetrics создаёт коллекторы и регистрирует их в собственном реестре.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodorder_api_requests_total",
			Help: "Outbound API requests by method, endpoint and status.",
		}, []string{"method", "endpoint", "status"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foodorder_api_request_duration_seconds",
			Help:    "Outbound API request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodorder_token_refresh_total",
			Help: "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
		pageInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foodorder_page_in_flight_requests",
			Help: "In-flight page requests.",
		}),
		pageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodorder_page_requests_total",
			Help: "Page requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		pageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "foodorder_page_request_duration_seconds",
			Help:    "Page request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.apiRequests, m.apiDuration, m.refreshes,
		m.pageInFlight, m.pageRequests, m.pageDuration,
	)
	return m
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAPI учитывает один исходящий запрос. status == 0 означает сетевую ошибку.
func (m *Metrics) ObserveAPI(method, endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

// ObserveRefresh учитывает попытку обновления токена доступа.
func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

// Instrument возвращает middleware, измеряющее запросы к страницам.
// route вычисляется после обработки, чтобы учитывать шаблон маршрута.
func (m *Metrics) Instrument(route func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.pageInFlight.Inc()
			defer m.pageInFlight.Dec()

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sw, r)

			name := route(r)
			m.pageRequests.WithLabelValues(r.Method, name, strconv.Itoa(sw.code)).Inc()
			m.pageDuration.WithLabelValues(r.Method, name).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
