// Package metrics defines Prometheus metrics for the notification relay and
// the payments API: broker consumption, reconnects, mail delivery and
// notification publishing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Broker consumer metrics
	MessagesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_messages_received_total",
		Help: "Total number of broker deliveries handed to the dispatcher",
	})
	MessagesAcked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_messages_acked_total",
		Help: "Total number of broker deliveries acknowledged",
	})
	// reason is one of malformed, invalid, delivery_failed
	MessagesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_messages_rejected_total",
		Help: "Total number of broker deliveries rejected without requeue",
	}, []string{"reason"})
	BrokerReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_broker_reconnects_total",
		Help: "Total number of scheduled broker reconnect attempts",
	})
	BrokerConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notifier_broker_connected",
		Help: "1 while the consumer holds an open broker connection, 0 otherwise",
	})

	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"host"})

	// Payments API metrics
	NotificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_notifications_published_total",
		Help: "Total number of notifications published by the payments API",
	}, []string{"event"})
	NotificationPublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_notifications_publish_failures_total",
		Help: "Total number of notifications the payments API failed to publish",
	}, []string{"event"})
)

func init() {
	prometheus.MustRegister(MessagesReceived)
	prometheus.MustRegister(MessagesAcked)
	prometheus.MustRegister(MessagesRejected)
	prometheus.MustRegister(BrokerReconnects)
	prometheus.MustRegister(BrokerConnected)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(NotificationsPublished)
	prometheus.MustRegister(NotificationPublishFailures)
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
