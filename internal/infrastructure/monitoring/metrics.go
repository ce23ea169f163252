package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomersCreatedTotal prometheus.Counter
	CustomersDeletedTotal prometheus.Counter
	CreditsCreatedTotal   prometheus.Counter
	CreditsByStatus       *prometheus.GaugeVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_system_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_system_customers_created_total",
				Help: "Total number of customers successfully registered.",
			},
		),
		CustomersDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_system_customers_deleted_total",
				Help: "Total number of customers deleted.",
			},
		),
		CreditsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_system_credits_created_total",
				Help: "Total number of credit requests successfully registered.",
			},
		),
		CreditsByStatus: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "credit_system_credits_by_status",
				Help: "Number of stored credits per status, refreshed by the portfolio job.",
			},
			[]string{"status"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

// ObserveDBQuery is meant to be deferred: defer monitoring.ObserveDBQuery("name", time.Now(), &err).
func ObserveDBQuery(queryName string, start time.Time, err *error) {
	status := "success"
	if err != nil && *err != nil {
		status = "error"
	}
	RecordDBQuery(queryName, status, time.Since(start))
}

func RecordCustomerCreated() {
	Business.CustomersCreatedTotal.Inc()
}

func RecordCustomerDeleted() {
	Business.CustomersDeletedTotal.Inc()
}

func RecordCreditCreated() {
	Business.CreditsCreatedTotal.Inc()
}

func SetCreditsByStatus(status string, count int64) {
	Business.CreditsByStatus.WithLabelValues(status).Set(float64(count))
}
