package storage

import (
	"context"
	"os"
	"testing"

	"github.com/eventcal/eventcal/internal/config"
	"github.com/eventcal/eventcal/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var pg *test_utils.PostgresSuite

func TestMain(m *testing.M) {
	pg = test_utils.NewPostgresSuite()
	code := m.Run()
	pg.Terminate()
	os.Exit(code)
}

// assertKeyValueContract runs the behaviour every adapter must share.
func assertKeyValueContract(t *testing.T, kv KeyValue) {
	ctx := context.Background()

	t.Run("should return ErrNotFound for missing key", func(t *testing.T) {
		_, err := kv.Load(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should save and overwrite values", func(t *testing.T) {
		require.NoError(t, kv.Save(ctx, "calendar-integrations:u1", []byte(`[1]`)))
		require.NoError(t, kv.Save(ctx, "calendar-integrations:u1", []byte(`[2]`)))

		value, err := kv.Load(ctx, "calendar-integrations:u1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[2]`), value)
	})

	t.Run("should delete keys idempotently", func(t *testing.T) {
		require.NoError(t, kv.Save(ctx, "calendar-authenticated:token", []byte("true")))
		require.NoError(t, kv.Delete(ctx, "calendar-authenticated:token"))
		require.NoError(t, kv.Delete(ctx, "calendar-authenticated:token"))

		_, err := kv.Load(ctx, "calendar-authenticated:token")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemory(t *testing.T) {
	assertKeyValueContract(t, NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	kv := NewMemory()
	value := []byte("abc")
	require.NoError(t, kv.Save(context.Background(), "k", value))
	value[0] = 'x'

	loaded, err := kv.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), loaded)
}

func TestPostgres(t *testing.T) {
	assertKeyValueContract(t, NewPostgres(pg.Open(t)))
}

func TestRedis(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	container, err := testcontainers.Run(ctx, "redis:7-alpine",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("6379/tcp")),
	)
	if err != nil {
		t.Skipf("redis container not available: %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})
	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, config.Redis{Addr: endpoint})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assertKeyValueContract(t, NewRedis(client))
}

func TestParseDriver(t *testing.T) {
	d, err := ParseDriver("redis")
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, d)

	_, err = ParseDriver("etcd")
	assert.Error(t, err)
}
