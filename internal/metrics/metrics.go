package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operations counts ledger operations by kind and outcome.
var Operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "labledger",
	Name:      "stock_operations_total",
	Help:      "Stock ledger operations by operation and outcome.",
}, []string{"operation", "outcome"})

// VersionConflicts counts optimistic-concurrency retries observed while
// committing ledger mutations.
var VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "labledger",
	Name:      "version_conflicts_total",
	Help:      "Versioned writes that lost a concurrent race and were retried.",
})

// MoveCompensations counts moves whose credit half failed and whose debit
// was reversed.
var MoveCompensations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "labledger",
	Name:      "move_compensations_total",
	Help:      "Stock moves rolled back by a compensating entry.",
})
