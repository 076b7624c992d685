// Package metrics holds the Prometheus collectors of the bot and the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Finished quiz sessions by outcome: passed/failed.
	TestsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeguard_tests_completed_total",
			Help: "Total number of finished certification tests",
		},
		[]string{"outcome"},
	)

	// Results kept in memory because the store rejected them.
	ResultsPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safeguard_results_pending_current",
			Help: "Current number of test results waiting to be persisted",
		},
	)

	QuizzesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safeguard_quizzes_active_current",
			Help: "Current number of quiz sessions in progress",
		},
	)

	// Notification failures by kind: test_completed/account_deleted/reminder.
	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeguard_notifications_failed_total",
			Help: "Total number of notifications that could not be delivered",
		},
		[]string{"kind"},
	)

	RemindersSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safeguard_reminders_sent_total",
			Help: "Total number of compliance reminders delivered",
		},
	)

	// Registrations and logins by status: success/failure.
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safeguard_auth_attempts_total",
			Help: "Total number of registration and login attempts",
		},
		[]string{"action", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safeguard_http_request_duration_seconds",
			Help:    "Time spent processing API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

const (
	KindTestCompleted  = "test_completed"
	KindAccountDeleted = "account_deleted"
	KindReminder       = "reminder"
)
