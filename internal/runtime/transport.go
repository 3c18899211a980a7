package runtime

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/docker/go-connections/sockets"
)

// DefaultSocket is the engine's conventional socket path
const DefaultSocket = "/var/run/docker.sock"

// baseURL is a placeholder; the transport ignores the host and dials the socket.
const baseURL = "http://localhost"

// Transport carries HTTP/1.1 requests over a Unix domain socket
type Transport struct {
	socket string
	tr     *http.Transport
}

// NewTransport returns a transport bound to socketPath. No connection is
// made until the first request or an explicit Connect.
func NewTransport(socketPath string) (*Transport, error) {
	if socketPath == "" {
		socketPath = DefaultSocket
	}
	tr := &http.Transport{}
	if err := sockets.ConfigureTransport(tr, "unix", socketPath); err != nil {
		return nil, fmt.Errorf("configure transport for %s: %w", socketPath, err)
	}
	return &Transport{socket: socketPath, tr: tr}, nil
}

// Socket returns the socket path the transport dials
func (t *Transport) Socket() string {
	return t.socket
}

// Connect opens one connection to the socket. It fails fast when the path
// is missing or is not a socket; there is no retry.
func (t *Transport) Connect(ctx context.Context) (net.Conn, error) {
	info, err := os.Stat(t.socket)
	if err != nil {
		return nil, &ConnectionError{Socket: t.socket, Err: err}
	}
	if info.Mode()&os.ModeSocket == 0 {
		return nil, &ConnectionError{Socket: t.socket, Err: fmt.Errorf("not a socket")}
	}
	conn, err := t.tr.DialContext(ctx, "unix", t.socket)
	if err != nil {
		return nil, &ConnectionError{Socket: t.socket, Err: err}
	}
	return conn, nil
}

// HTTPClient returns a client using this transport. It has no overall
// timeout so attach and exec bodies can stream for as long as the
// container runs; bound calls with their context instead.
func (t *Transport) HTTPClient() *http.Client {
	return &http.Client{Transport: t.tr}
}

// Close releases idle connections
func (t *Transport) Close() error {
	t.tr.CloseIdleConnections()
	return nil
}
