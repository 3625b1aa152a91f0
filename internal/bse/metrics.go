package bse

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики протокольного ядра
// ============================================================
//
// Использование:
// - Grafana дашборды по исходам подачи поручений
// - Alertmanager: всплеск rejected/failed - повод для вмешательства
// - Контроль латентности order entry биржи

// OrderSubmissions - счетчик попыток подачи поручений по исходам.
// outcome: submitted, rejected, failed
var OrderSubmissions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "starmf",
		Subsystem: "orders",
		Name:      "submissions_total",
		Help:      "Order submission attempts by order type and outcome",
	},
	[]string{"order_type", "outcome"},
)

// OrderCancellations - счетчик попыток отмены поручений.
// outcome: cancelled, rejected, failed
var OrderCancellations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "starmf",
		Subsystem: "orders",
		Name:      "cancellations_total",
		Help:      "Order cancellation attempts by outcome",
	},
	[]string{"outcome"},
)

// ExchangeRequestDuration - латентность SOAP запросов к бирже.
// Buckets рассчитаны на медленный order entry (сотни мс - десятки секунд)
var ExchangeRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "starmf",
		Subsystem: "exchange",
		Name:      "request_duration_seconds",
		Help:      "BSE SOAP request duration in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"api"},
)

// ParseFailures - счетчик фатальных ошибок разбора ответов биржи
var ParseFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "starmf",
		Subsystem: "exchange",
		Name:      "parse_failures_total",
		Help:      "Responses that failed envelope or pipe parsing",
	},
)
