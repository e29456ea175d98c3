package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlansCreatedIncrements(t *testing.T) {
	before := testutil.ToFloat64(PlansCreated)
	PlansCreated.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PlansCreated))
}

func TestSubtasksDispatchedAddsCount(t *testing.T) {
	before := testutil.ToFloat64(SubtasksDispatched)
	SubtasksDispatched.Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(SubtasksDispatched))
}

func TestRegistryTransitionsLabelsByStatus(t *testing.T) {
	RegistryTransitions.WithLabelValues("ready").Inc()
	before := testutil.ToFloat64(RegistryTransitions.WithLabelValues("blocked"))
	RegistryTransitions.WithLabelValues("blocked").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RegistryTransitions.WithLabelValues("blocked")))
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	PlansCreated.Inc()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "zoeorch_plans_created_total"))
}
