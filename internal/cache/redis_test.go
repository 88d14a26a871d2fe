package cache

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketboard/marketboard-go/internal/config"
)

func cacheConfigFor(t *testing.T, addr string) config.CacheConfig {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return config.CacheConfig{Enabled: true, Host: host, Port: port}
}

func TestNewRedisConnection(t *testing.T) {
	redisServer := miniredis.RunT(t)
	defer redisServer.Close()

	client, err := NewRedisConnection(cacheConfigFor(t, redisServer.Addr()))
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestNewRedisConnection_Unreachable(t *testing.T) {
	redisServer := miniredis.RunT(t)
	cfg := cacheConfigFor(t, redisServer.Addr())
	redisServer.Close()

	client, err := NewRedisConnection(cfg)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestRedisClient_HealthCheckAfterServerStops(t *testing.T) {
	redisServer := miniredis.RunT(t)

	client, err := NewRedisConnection(cacheConfigFor(t, redisServer.Addr()))
	require.NoError(t, err)
	defer client.Close()

	redisServer.Close()
	assert.Error(t, client.HealthCheck(context.Background()))
}
