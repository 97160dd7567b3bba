package tracing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, Config{ServiceName: "tasktracker", Environment: "test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitWithEndpointReturnsProviderShutdown(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, Config{
		Endpoint:    "127.0.0.1:4318",
		ServiceName: "tasktracker",
		Environment: "test",
		StoreDriver: "memory",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestResourceAttributes(t *testing.T) {
	attrs := resourceAttributes(Config{ServiceName: "tasktracker", Environment: "prod", StoreDriver: "postgres"})
	assert.Contains(t, attrs, semconv.ServiceName("tasktracker"))
	assert.Contains(t, attrs, semconv.DeploymentEnvironment("prod"))
	assert.Contains(t, attrs, attribute.String("tasktracker.store.driver", "postgres"))

	attrs = resourceAttributes(Config{ServiceName: "tasktracker"})
	assert.Len(t, attrs, 2)
}
