package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "practice_booking"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	slotEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_events_total",
			Help:      "Slot lifecycle events (created, duplicate, deleted, cleaned, reserved).",
		},
		[]string{"event"},
	)

	contactEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_events_total",
			Help:      "Contact submissions and notification outcomes.",
		},
		[]string{"event"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, slotEvents, contactEvents)
	})
}

// IncHTTP counts one handled request.
func IncHTTP(route, method, status string) {
	httpRequests.WithLabelValues(route, method, status).Inc()
}

// AddSlotEvent adds n to the counter for a slot lifecycle event.
func AddSlotEvent(event string, n int) {
	if n <= 0 {
		return
	}
	slotEvents.WithLabelValues(event).Add(float64(n))
}

// IncContactEvent counts a contact submission outcome.
func IncContactEvent(event string) {
	contactEvents.WithLabelValues(event).Inc()
}
