package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SalesTotal counts processed sales by outcome (ok, validation_error, schema_error, not_found, error).
	SalesTotal *prometheus.CounterVec
	// SaleLineItems records the number of line items per successful sale.
	SaleLineItems prometheus.Histogram
	// SaleAmount records the pre-discount total of successful sales.
	SaleAmount prometheus.Histogram
	// CatalogCacheTotal counts product cache lookups by result (hit, miss).
	CatalogCacheTotal *prometheus.CounterVec
	// ReceiptsTotal counts receipt enqueue and persistence outcomes.
	ReceiptsTotal *prometheus.CounterVec
	// BreakerState reports circuit breaker state per target: 0=closed, 1=open, 2=half-open.
	BreakerState *prometheus.GaugeVec
	// BreakerTransitions counts circuit breaker state changes.
	BreakerTransitions *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SalesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Count of processed sales by outcome.",
		}, []string{"result"})
		SaleLineItems = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_line_items",
			Help:      "Number of line items per successful sale.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		})
		SaleAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_amount",
			Help:      "Pre-discount total of successful sales.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		})
		CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Count of product cache lookups by result.",
		}, []string{"result"})
		ReceiptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_total",
			Help:      "Count of sale receipt operations by stage and outcome.",
		}, []string{"stage", "result"})
		BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Current breaker state: 0=closed, 1=open, 2=half-open.",
		}, []string{"target"})
		BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_transitions_total",
			Help:      "Count of breaker state transitions.",
		}, []string{"target", "from", "to"})

		mustRegisterCollector(reg, SalesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SalesTotal = v
			}
		})
		mustRegisterCollector(reg, SaleLineItems, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				SaleLineItems = v
			}
		})
		mustRegisterCollector(reg, SaleAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				SaleAmount = v
			}
		})
		mustRegisterCollector(reg, CatalogCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogCacheTotal = v
			}
		})
		mustRegisterCollector(reg, ReceiptsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ReceiptsTotal = v
			}
		})
		mustRegisterCollector(reg, BreakerState, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.GaugeVec); ok {
				BreakerState = v
			}
		})
		mustRegisterCollector(reg, BreakerTransitions, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BreakerTransitions = v
			}
		})
	})
}

// ObserveBreakerState records the current state of a breaker.
func ObserveBreakerState(target string, state float64) {
	if BreakerState != nil {
		BreakerState.WithLabelValues(target).Set(state)
	}
}

// ObserveBreakerTransition records a breaker moving between states.
func ObserveBreakerTransition(target, from, to string) {
	if BreakerTransitions != nil {
		BreakerTransitions.WithLabelValues(target, from, to).Inc()
	}
}

// ObserveSale records a sale outcome. Size and amount are only observed for successful sales.
func ObserveSale(result string, lineItems int, amount float64) {
	if SalesTotal != nil {
		SalesTotal.WithLabelValues(result).Inc()
	}
	if result != "ok" {
		return
	}
	if SaleLineItems != nil {
		SaleLineItems.Observe(float64(lineItems))
	}
	if SaleAmount != nil {
		SaleAmount.Observe(amount)
	}
}

// ObserveCatalogCache records a product cache lookup result.
func ObserveCatalogCache(result string) {
	if CatalogCacheTotal != nil {
		CatalogCacheTotal.WithLabelValues(result).Inc()
	}
}

// ObserveReceipt records a receipt operation outcome.
func ObserveReceipt(stage, result string) {
	if ReceiptsTotal != nil {
		ReceiptsTotal.WithLabelValues(stage, result).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
