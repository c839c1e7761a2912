package server

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Starts the TCP Server on host and blocks until ctx is cancelled. An empty
// host listens on all interfaces.
//
// If port is taken, the next free port above it is used. The address that
// was finally bound is logged.
func Start(ctx context.Context, host string, port int, handler func(conn net.Conn), log logrus.FieldLogger) error {
	var ln net.Listener
	var err error

	// Look for an open port
	for {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		ln, err = net.Listen("tcp", addr)
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				log.WithField("port", port).Warn("port in use, trying next")
				port++
				continue
			}
			return err
		}
		break
	}

	log.WithField("addr", ln.Addr().String()).Info("server listening")

	// When ctx is cancelled, close listener
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	// Accept Loop
	for {
		conn, err := ln.Accept()
		if err != nil {
			// When ln.Close() is called, Accept() returns an error.
			// This is how we break out of the loop cleanly.
			select {
			case <-ctx.Done():
				log.Info("server stopped")
				return nil
			default:
				log.WithError(err).Warn("error accepting connection")
				continue
			}
		}

		go handler(conn)
	}
}
