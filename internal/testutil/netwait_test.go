package testutil

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForTCP(t *testing.T) {
	t.Run("open port", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer func() { _ = listener.Close() }()

		addr, ok := listener.Addr().(*net.TCPAddr)
		require.True(t, ok)

		assert.NoError(t, WaitForTCP("127.0.0.1", addr.Port, 5*time.Second))
	})

	t.Run("closed port times out", func(t *testing.T) {
		port, err := GetFreePort()
		require.NoError(t, err)

		err = WaitForTCP("127.0.0.1", port, 100*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout waiting for TCP port")
	})
}

func TestGetFreePort(t *testing.T) {
	port, err := GetFreePort()
	require.NoError(t, err)
	assert.Positive(t, port)

	// The returned port must be bindable.
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", "0"))
	require.NoError(t, err)
	_ = listener.Close()
}
