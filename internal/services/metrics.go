package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// propagationEvents counts propagation events by operation and outcome.
	propagationEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackit_propagation_events_total",
			Help: "Propagation events by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	// propagationDuration records end-to-end event latency including retries.
	propagationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stackit_propagation_duration_seconds",
			Help:    "Duration of propagation events in seconds, retries included.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"op"},
	)

	// txRetries counts transaction replays after a transient conflict.
	txRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackit_tx_retries_total",
			Help: "Transactions replayed after a transient write conflict.",
		},
		[]string{"op"},
	)

	// consistencyMismatches is the mismatch count of the latest verification.
	consistencyMismatches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stackit_consistency_mismatches",
			Help: "Stored aggregates that disagreed with the fact tables at the last verification.",
		},
	)

	// aggregatesRepaired counts aggregate fields rewritten by Repair.
	aggregatesRepaired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stackit_aggregates_repaired_total",
			Help: "Aggregate fields rewritten by the repair routine.",
		},
	)
)

func init() {
	prometheus.MustRegister(propagationEvents, propagationDuration, txRetries, consistencyMismatches, aggregatesRepaired)
}

// outcomeLabel maps an operation result onto a bounded label value.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuthorization):
		return "unauthorized"
	case errors.Is(err, ErrSelfVote):
		return "self_vote"
	case errors.Is(err, ErrQuestionClosed):
		return "closed"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	default:
		return "error"
	}
}
