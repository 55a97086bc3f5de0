package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
	require.NoError(t, Register(prometheus.NewRegistry()), "collectors can be shared between registries")

	FakePlayersFailed.WithLabelValues(ReasonUnconfirmed).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(FakePlayersFailed.WithLabelValues(ReasonUnconfirmed)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fakeplayers_failed_total")
}
