package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStoreOp(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveStoreOp("tanks", "load", nil)
	m.ObserveStoreOp("tanks", "load", nil)
	m.ObserveStoreOp("tanks", "save", errors.New("disk full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeOps.WithLabelValues("tanks", "load", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("tanks", "save", "error")))

	n, err := testutil.GatherAndCount(reg, "aquarium_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMalformedRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.MalformedRecord("fish")
	m.MalformedRecord("fish")
	m.MalformedRecord("maintenance")

	assert.Equal(t, 2.0, m.MalformedCount("fish"))
	assert.Equal(t, 1.0, m.MalformedCount("maintenance"))
	assert.Equal(t, 0.0, m.MalformedCount("tanks"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveStoreOp("tanks", "load", nil)
	m.MalformedRecord("tanks")
	assert.Equal(t, 0.0, m.MalformedCount("tanks"))
}

func TestNewWithoutRegistry(t *testing.T) {
	m := New(nil)
	m.MalformedRecord("tanks")
	assert.Equal(t, 1.0, m.MalformedCount("tanks"))
}
