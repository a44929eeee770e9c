package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestDomainMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegisterDomainMetrics("kasir_test", reg)

	ObserveSale("ok", 2, 249.99)
	ObserveSale("not_found", 0, 0)
	ObserveCatalogCache("hit")
	ObserveReceipt("enqueue", "ok")
	ObserveBreakerState("receipts", 1)
	ObserveBreakerTransition("receipts", "closed", "open")

	require.Equal(t, 1.0, testutil.ToFloat64(SalesTotal.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(SalesTotal.WithLabelValues("not_found")))
	require.Equal(t, 1, testutil.CollectAndCount(SaleLineItems))
	require.Equal(t, 1.0, testutil.ToFloat64(CatalogCacheTotal.WithLabelValues("hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(ReceiptsTotal.WithLabelValues("enqueue", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(BreakerState.WithLabelValues("receipts")))
	require.Equal(t, 1.0, testutil.ToFloat64(BreakerTransitions.WithLabelValues("receipts", "closed", "open")))

	// a second registration is a no-op
	MustRegisterDomainMetrics("kasir_test", reg)
}
