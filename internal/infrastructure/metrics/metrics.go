package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExchangeMetrics содержит все метрики обмена
type ExchangeMetrics struct {
	// Решения по заявкам (approved / declined / error)
	AdmissionsTotal *prometheus.CounterVec
	// Одобренный объем в Discoin по валюте назначения
	AdmittedDiscoinTotal *prometheus.CounterVec
	// Отказы по лимитам
	LimitDeclinesTotal *prometheus.CounterVec

	AdmissionDuration *prometheus.HistogramVec

	// Ошибки уведомлений (kafka, webhook)
	NotificationErrorsTotal *prometheus.CounterVec
	// Ошибки инфраструктуры (БД, кеш)
	InfrastructureErrorsTotal *prometheus.CounterVec
}

// NewExchangeMetrics registers the exchange metrics on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewExchangeMetrics(reg prometheus.Registerer) *ExchangeMetrics {
	factory := promauto.With(reg)
	return &ExchangeMetrics{
		AdmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discoin_admissions_total",
				Help: "Количество решений по заявкам на обмен",
			},
			[]string{"source", "destination", "outcome"},
		),

		AdmittedDiscoinTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discoin_admitted_discoin_total",
				Help: "Сумма одобренных обменов в Discoin",
			},
			[]string{"destination"},
		),

		LimitDeclinesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discoin_limit_declines_total",
				Help: "Количество отказов по лимитам",
			},
			[]string{"destination", "reason"},
		),

		AdmissionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "discoin_admission_duration_seconds",
				Help:    "Время обработки заявки на обмен в секундах",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms, 2ms, 4ms...
			},
			[]string{"outcome"},
		),

		NotificationErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discoin_notification_errors_total",
				Help: "Количество неудачных уведомлений о транзакциях",
			},
			[]string{"sink"},
		),

		InfrastructureErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discoin_infrastructure_errors_total",
				Help: "Количество ошибок хранилища при обработке заявок",
			},
			[]string{"stage"},
		),
	}
}

// RecordAdmission записывает решение по заявке
func (m *ExchangeMetrics) RecordAdmission(source, destination, outcome string, durationSeconds float64) {
	m.AdmissionsTotal.WithLabelValues(source, destination, outcome).Inc()
	m.AdmissionDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

// RecordAdmitted записывает одобренный объем
func (m *ExchangeMetrics) RecordAdmitted(destination string, amountDiscoin float64) {
	m.AdmittedDiscoinTotal.WithLabelValues(destination).Add(amountDiscoin)
}

func (m *ExchangeMetrics) RecordLimitDecline(destination, reason string) {
	m.LimitDeclinesTotal.WithLabelValues(destination, reason).Inc()
}

func (m *ExchangeMetrics) RecordNotificationError(sink string) {
	m.NotificationErrorsTotal.WithLabelValues(sink).Inc()
}

func (m *ExchangeMetrics) RecordInfrastructureError(stage string) {
	m.InfrastructureErrorsTotal.WithLabelValues(stage).Inc()
}
