// Package enginetest provides a fake container engine serving canned
// Engine API responses on a real Unix domain socket.
package enginetest

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Request is a request received by the fake engine
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// Key returns "METHOD /path"
func (r Request) Key() string {
	return r.Method + " " + r.Path
}

// FakeEngine is an HTTP server on a Unix socket that records every request
// and answers from a route table. Unrouted requests get a 404 with an
// engine-style error body.
type FakeEngine struct {
	// Socket is the path of the listening socket
	Socket string

	server *httptest.Server

	mu       sync.Mutex
	requests []Request
	routes   map[string]http.HandlerFunc
}

// New starts a fake engine that is shut down when the test ends
func New(t testing.TB) *FakeEngine {
	t.Helper()

	// Unix socket paths are limited to ~108 bytes; t.TempDir can exceed that.
	dir, err := os.MkdirTemp("", "engine")
	if err != nil {
		t.Fatalf("create socket dir: %v", err)
	}
	socket := filepath.Join(dir, "docker.sock")

	ln, err := net.Listen("unix", socket)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("listen on %s: %v", socket, err)
	}

	f := &FakeEngine{
		Socket: socket,
		routes: make(map[string]http.HandlerFunc),
	}
	f.server = httptest.NewUnstartedServer(http.HandlerFunc(f.serve))
	f.server.Listener.Close()
	f.server.Listener = ln
	f.server.Start()

	t.Cleanup(func() {
		f.server.CloseClientConnections()
		f.server.Close()
		os.RemoveAll(dir)
	})
	return f
}

// Handle routes method and path to h
func (f *FakeEngine) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

// Respond routes method and path to a fixed status and body
func (f *FakeEngine) Respond(method, path string, status int, body string) {
	f.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

// RespondJSON routes method and path to v encoded as JSON
func (f *FakeEngine) RespondJSON(method, path string, status int, v any) {
	f.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	})
}

// RespondStream routes method and path to a raw multiplexed stream
func (f *FakeEngine) RespondStream(method, path string, stream []byte) {
	f.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.docker.multiplexed-stream")
		w.WriteHeader(http.StatusOK)
		w.Write(stream)
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
	})
}

// Requests returns a copy of every request received so far
func (f *FakeEngine) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Keys returns "METHOD /path" for every request received so far
func (f *FakeEngine) Keys() []string {
	reqs := f.Requests()
	keys := make([]string, len(reqs))
	for i, r := range reqs {
		keys[i] = r.Key()
	}
	return keys
}

func (f *FakeEngine) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   body,
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	h, ok := f.routes[req.Key()]
	f.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"page not found"}`)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	h(w, r)
}
