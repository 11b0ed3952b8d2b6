package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	attendanceWrite *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	importRows      *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	attendanceWrite := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_writes_total",
		Help: "Ledger writes by person kind and status",
	}, []string{"kind", "status"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Absence notification attempts by channel and outcome",
	}, []string{"channel", "status"})

	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_import_rows_total",
		Help: "Spreadsheet rows processed by kind and outcome",
	}, []string{"kind", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, attendanceWrite, notifications, importRows, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		attendanceWrite: attendanceWrite,
		notifications:   notifications,
		importRows:      importRows,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordAttendanceWrite counts one ledger write.
func (m *MetricsService) RecordAttendanceWrite(kind, status string) {
	if m == nil {
		return
	}
	m.attendanceWrite.WithLabelValues(kind, status).Inc()
}

// RecordNotification counts one delivery attempt.
func (m *MetricsService) RecordNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, status).Inc()
}

// RecordImportRow counts one processed spreadsheet row.
func (m *MetricsService) RecordImportRow(kind, outcome string) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues(kind, outcome).Inc()
}
