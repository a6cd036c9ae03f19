package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Operaciones-api/pkg/config"
)

func TestSetup_Deshabilitado(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_Habilitado(t *testing.T) {
	// los exportadores OTLP/HTTP no conectan al crearse; el shutdown solo intenta vaciar lo pendiente
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled: true, OTLPEndpoint: "127.0.0.1:4318", ServiceName: "operaciones-test",
	}, "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
