package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/cargo-sandbox/internal/telemetry"
)

const tracerName = "cargo-sandbox/runtime"

// Client issues Engine API calls over a Transport. A Client holds no
// per-call state and may be shared between goroutines.
type Client struct {
	transport *Transport
	http      *http.Client
	tracer    trace.Tracer
}

// Compile-time interface check
var _ Runtime = (*Client)(nil)

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTracerProvider makes the client start its spans from tp instead of
// the global provider
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewClient creates a client for the engine listening on socketPath
func NewClient(socketPath string, opts ...ClientOption) (*Client, error) {
	tr, err := NewTransport(socketPath)
	if err != nil {
		return nil, err
	}
	c := &Client{
		transport: tr,
		http:      tr.HTTPClient(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Socket returns the socket path this client talks to
func (c *Client) Socket() string {
	return c.transport.Socket()
}

// Transport returns the underlying transport
func (c *Client) Transport() *Transport {
	return c.transport
}

// Close releases idle connections
func (c *Client) Close() error {
	return c.transport.Close()
}

// ListContainers implements Runtime
func (c *Client) ListContainers(ctx context.Context, opts ListOptions) ([]ContainerSummary, error) {
	q := url.Values{}
	if opts.All {
		q.Set("all", "1")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if len(opts.Filters) > 0 {
		f, err := json.Marshal(opts.Filters)
		if err != nil {
			return nil, fmt.Errorf("encode filters: %w", err)
		}
		q.Set("filters", string(f))
	}

	var out []ContainerSummary
	err := c.traced(ctx, "list containers", "", func(ctx context.Context) error {
		return c.doJSON(ctx, "list containers", http.MethodGet, "/containers/json", q, nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateContainer implements Runtime
func (c *Client) CreateContainer(ctx context.Context, spec ContainerSpec) (*CreateResponse, error) {
	var out CreateResponse
	err := c.traced(ctx, "create container", "", func(ctx context.Context) error {
		return c.doJSON(ctx, "create container", http.MethodPost, "/containers/create", nil, spec, &out)
	})
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &ProtocolError{Op: "create container", Err: fmt.Errorf("response has no container ID")}
	}
	return &out, nil
}

// StartContainer implements Runtime. The engine answers 304 for a
// container that is already running, which is treated as success.
func (c *Client) StartContainer(ctx context.Context, id string) error {
	return c.traced(ctx, "start container", id, func(ctx context.Context) error {
		resp, err := c.do(ctx, "start container", http.MethodPost, containerPath(id, "start"), nil, nil, http.StatusNotModified)
		if err != nil {
			return err
		}
		return drain(resp)
	})
}

// KillContainer implements Runtime
func (c *Client) KillContainer(ctx context.Context, id string) error {
	return c.traced(ctx, "kill container", id, func(ctx context.Context) error {
		resp, err := c.do(ctx, "kill container", http.MethodPost, containerPath(id, "kill"), nil, nil)
		if err != nil {
			return err
		}
		return drain(resp)
	})
}

// RemoveContainer implements Runtime
func (c *Client) RemoveContainer(ctx context.Context, id string, opts RemoveOptions) error {
	q := url.Values{}
	q.Set("force", strconv.FormatBool(opts.Force))
	q.Set("v", strconv.FormatBool(opts.RemoveVolumes))
	return c.traced(ctx, "remove container", id, func(ctx context.Context) error {
		resp, err := c.do(ctx, "remove container", http.MethodDelete, containerPath(id, ""), q, nil)
		if err != nil {
			return err
		}
		return drain(resp)
	})
}

// WaitContainer implements Runtime
func (c *Client) WaitContainer(ctx context.Context, id string) (*WaitResponse, error) {
	var out WaitResponse
	err := c.traced(ctx, "wait container", id, func(ctx context.Context) error {
		return c.doJSON(ctx, "wait container", http.MethodPost, containerPath(id, "wait"), nil, nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Attach implements Runtime
func (c *Client) Attach(ctx context.Context, id string) (io.ReadCloser, error) {
	q := url.Values{}
	q.Set("stream", "1")
	q.Set("stdout", "1")
	q.Set("stdin", "1")
	q.Set("stderr", "1")

	var body io.ReadCloser
	err := c.traced(ctx, "attach container", id, func(ctx context.Context) error {
		resp, err := c.do(ctx, "attach container", http.MethodPost, containerPath(id, "attach"), q, nil, http.StatusSwitchingProtocols)
		if err != nil {
			return err
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// CreateExec implements Runtime
func (c *Client) CreateExec(ctx context.Context, id string, spec ExecSpec) (string, error) {
	var out execCreateResponse
	err := c.traced(ctx, "create exec", id, func(ctx context.Context) error {
		return c.doJSON(ctx, "create exec", http.MethodPost, containerPath(id, "exec"), nil, spec, &out)
	})
	if err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &ProtocolError{Op: "create exec", Err: fmt.Errorf("response has no exec ID")}
	}
	return out.ID, nil
}

// StartExec implements Runtime
func (c *Client) StartExec(ctx context.Context, execID string, opts ExecStartOptions) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := c.traced(ctx, "start exec", execID, func(ctx context.Context) error {
		resp, err := c.do(ctx, "start exec", http.MethodPost, "/exec/"+url.PathEscape(execID)+"/start", nil, opts, http.StatusSwitchingProtocols)
		if err != nil {
			return err
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// InspectExec implements Runtime
func (c *Client) InspectExec(ctx context.Context, execID string) (*ExecInspect, error) {
	var out ExecInspect
	err := c.traced(ctx, "inspect exec", execID, func(ctx context.Context) error {
		return c.doJSON(ctx, "inspect exec", http.MethodGet, "/exec/"+url.PathEscape(execID)+"/json", nil, nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping implements Runtime
func (c *Client) Ping(ctx context.Context) error {
	return c.traced(ctx, "ping", "", func(ctx context.Context) error {
		resp, err := c.do(ctx, "ping", http.MethodGet, "/_ping", nil, nil)
		if err != nil {
			return err
		}
		return drain(resp)
	})
}

// traced runs fn inside a client span named after op
func (c *Client) traced(ctx context.Context, op, id string, fn func(context.Context) error) error {
	attrs := []attribute.KeyValue{attribute.String("engine.socket", c.transport.Socket())}
	if id != "" {
		attrs = append(attrs, telemetry.ObjectIDKey.String(id))
	}
	ctx, span := c.tracer.Start(ctx, op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// do sends one request and returns the response when its status is 2xx or
// one of extraOK. Any other status is turned into an error and the body is
// closed.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any, extraOK ...int) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	target := baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.Debug("engine request", "op", op, "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ConnectionError{Socket: c.transport.Socket(), Err: err}
	}
	logging.Debug("engine response", "op", op, "status", resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	for _, code := range extraOK {
		if resp.StatusCode == code {
			return resp, nil
		}
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 400 {
		return nil, &ProtocolError{Op: op, Status: resp.StatusCode, Snippet: snippet(raw), Err: fmt.Errorf("unexpected status")}
	}
	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
		apiErr.Message = eb.Message
	} else {
		apiErr.Message = string(bytes.TrimSpace([]byte(snippet(raw))))
	}
	return nil, apiErr
}

// doJSON sends a request and decodes a JSON response body into out
func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, op, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProtocolError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ProtocolError{Op: op, Status: resp.StatusCode, Snippet: snippet(raw), Err: err}
	}
	return nil
}

func drain(resp *http.Response) error {
	defer resp.Body.Close()
	_, err := io.Copy(io.Discard, resp.Body)
	return err
}

func containerPath(id, action string) string {
	p := "/containers/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}
