package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_application_transitions_total",
			Help: "Status transitions applied to loan applications",
		},
		[]string{"from", "to"},
	)

	RestorationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_restoration_requests_total",
			Help: "Restoration requests by outcome (requested, conflict, approved, rejected)",
		},
		[]string{"outcome"},
	)

	SoftDeleteCascade = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_soft_delete_cascade_total",
			Help: "Per-application results of account delete/restore cascades",
		},
		[]string{"operation", "result"},
	)

	ApplicationPurges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_application_purges_total",
			Help: "Loan applications permanently purged",
		},
	)

	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_notifications_failed_total",
			Help: "Notification dispatches that failed and were swallowed",
		},
		[]string{"kind"},
	)

	IdempotencyOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_idempotency_outcomes_total",
			Help: "Mutating requests seen by the idempotency guard, by outcome",
		},
		[]string{"outcome"},
	)
)
