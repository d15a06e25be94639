package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fashionmuse_credit_reservations_total",
		Help: "Credit reservations attempted at submission, by outcome.",
	}, []string{"outcome"})

	refundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fashionmuse_credit_refunds_total",
		Help: "Reservations restored after a failed generation.",
	})

	reconciliationAlarmsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fashionmuse_reconciliation_alarms_total",
		Help: "Refund attempts that failed and left a job charged without delivery.",
	})

	slotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fashionmuse_generation_slots_total",
		Help: "Per-slot synthesis results, by outcome.",
	}, []string{"outcome"})

	jobsFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fashionmuse_generation_jobs_finished_total",
		Help: "Generation jobs reaching a terminal status.",
	}, []string{"status"})

	jobDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fashionmuse_generation_job_duration_seconds",
		Help:    "Wall-clock pipeline duration for finished jobs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	sweptJobsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fashionmuse_swept_jobs_total",
		Help: "Stale processing jobs failed and refunded by the recovery sweep.",
	})
)
