package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAndRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.EditScheduled(false)
	m.EditScheduled(true)
	m.Persisted(nil)
	m.Persisted(errors.New("boom"))
	m.ObserveSave(120 * time.Millisecond)
	m.StaleResponse("load_post")
	m.AIRequest("summary", nil)
	m.CacheWrite(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EditsScheduled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EditsCoalesced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Persists.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Persists.WithLabelValues(OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleResponses.WithLabelValues("load_post")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AIRequests.WithLabelValues("summary", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheWrites.WithLabelValues(OutcomeOK)))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetrics_IsSafe(t *testing.T) {
	var m *Metrics
	m.EditScheduled(true)
	m.Persisted(nil)
	m.ObserveSave(time.Second)
	m.StaleResponse("x")
	m.AIRequest("grammar", errors.New("x"))
	m.CacheWrite(nil)
}
