package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSelectsDatabase(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("hunter2")

	client, err := Open(context.Background(), Options{Addr: mr.Addr(), Password: "hunter2", DB: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.Select(2)
	assert.True(t, mr.Exists("k"))
}

func TestOpenFailsWhenPingFails(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("hunter2")

	_, err := Open(context.Background(), Options{Addr: mr.Addr(), Password: "wrong", PingTimeout: time.Second})
	assert.Error(t, err)

	addr := mr.Addr()
	mr.Close()
	_, err = Open(context.Background(), Options{Addr: addr, PingTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
