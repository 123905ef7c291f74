// Package metrics expone los colectores Prometheus del motor de stock.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MovementsCommittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "magazzino_movements_committed_total",
		Help: "Movimientos registrados por estado de autorización",
	}, []string{"status"})

	MovementsDecidedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "magazzino_movements_decided_total",
		Help: "Movimientos pendientes aprobados o rechazados",
	}, []string{"decision"})

	MovementsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "magazzino_movements_rejected_total",
		Help: "Movimientos rechazados por protección de invariantes",
	}, []string{"reason"})

	WriteConflictRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "magazzino_write_conflict_retries_total",
		Help: "Reintentos por conflicto de escritura concurrente",
	}, []string{"operation"})

	UDCOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "magazzino_udc_operations_total",
		Help: "Operaciones de capacidad sobre UDC",
	}, []string{"operation", "result"})

	ReconciliationsClosedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "magazzino_reconciliations_closed_total",
		Help: "Sesiones de inventario cerradas",
	})

	AdjustmentMovementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "magazzino_adjustment_movements_total",
		Help: "Movimientos de ajuste generados por el cierre de inventario",
	})

	OperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "magazzino_operation_latency_seconds",
		Help:    "Latencia de las operaciones del núcleo",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
