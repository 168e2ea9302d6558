package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{
		ServiceName:    "finlink-api",
		ServiceVersion: "1.4.2",
		Environment:    "staging",
	})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "finlink-api", attrs[string(semconv.ServiceNameKey)])
	assert.Equal(t, "1.4.2", attrs[string(semconv.ServiceVersionKey)])
	assert.Equal(t, "staging", attrs[string(semconv.DeploymentEnvironmentKey)])
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "AlwaysOnSampler"},
		{1, "AlwaysOnSampler"},
		{1.5, "AlwaysOnSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		assert.True(t, strings.HasPrefix(sampler(tt.ratio).Description(), "ParentBased{root:"+tt.want),
			"ratio %v: %s", tt.ratio, sampler(tt.ratio).Description())
	}
}

func TestStopper_ReverseOrderAndJoinedErrors(t *testing.T) {
	var order []string
	var s stopper
	s.add(func(context.Context) error { order = append(order, "meter"); return errors.New("meter failed") })
	s.add(func(context.Context) error { order = append(order, "tracer"); return nil })
	s.add(func(context.Context) error { order = append(order, "metrics server"); return nil })

	err := s.stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meter failed")
	assert.Equal(t, []string{"metrics server", "tracer", "meter"}, order)

	var empty stopper
	assert.NoError(t, empty.stop(context.Background()))
}

func TestMetricsServer(t *testing.T) {
	srv := newMetricsServer("9464")
	assert.Equal(t, ":9464", srv.Addr)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
