package server_test

import (
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/0xRadioAc7iv/go-slotstore/internal/logger"
	"github.com/0xRadioAc7iv/go-slotstore/internal/server"
)

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

func echo(conn net.Conn) {
	defer conn.Close()
	_, _ = io.Copy(conn, conn)
}

func TestServerEchoAndShutdown(t *testing.T) {
	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx, "127.0.0.1", port, echo, logger.Discard())
	}()

	var conn net.Conn
	require.Eventually(t, func() bool {
		var err error
		conn, err = net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		return err == nil
	}, time.Second, 10*time.Millisecond)
	defer conn.Close()

	_, err := conn.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServerBindsGivenHost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := server.Start(ctx, "203.0.113.254", freePort(t), echo, logger.Discard())
	require.Error(t, err, "listening on an address this host does not own must fail")
}
