package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/apierrors"
)

const defaultTimeout = 10 * time.Second

// Invoker performs exactly one network round trip. It never retries.
// A 401 is returned as an *apierrors.HTTPError matching ErrUnauthorized, any
// other failure status as a plain *apierrors.HTTPError and a missing response
// as an *apierrors.NetworkError.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// InvokerFunc adapts a function to the Invoker interface
type InvokerFunc func(ctx context.Context, req Request) (*Response, error)

func (f InvokerFunc) Invoke(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPDoer is satisfied by *http.Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ Invoker = (*HTTPInvoker)(nil)

type HTTPInvoker struct {
	baseURL *url.URL
	client  HTTPDoer
	timeout time.Duration
}

type HTTPInvokerOption func(*HTTPInvoker)

func WithHTTPClient(client HTTPDoer) HTTPInvokerOption {
	return func(i *HTTPInvoker) {
		i.client = client
	}
}

// WithTimeout bounds a single round trip, including reading the body
func WithTimeout(d time.Duration) HTTPInvokerOption {
	return func(i *HTTPInvoker) {
		i.timeout = d
	}
}

func NewHTTPInvoker(baseURL string, options ...HTTPInvokerOption) (*HTTPInvoker, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing host", baseURL)
	}

	i := &HTTPInvoker{baseURL: u, timeout: defaultTimeout}
	for _, opt := range options {
		opt(i)
	}
	if i.client == nil {
		i.client = &http.Client{Timeout: i.timeout}
	}
	return i, nil
}

// BaseURL returns the URL every request path is resolved against
func (i *HTTPInvoker) BaseURL() string {
	return i.baseURL.String()
}

func (i *HTTPInvoker) Invoke(ctx context.Context, req Request) (*Response, error) {
	target, err := i.resolve(req.Path)
	if err != nil {
		return nil, err
	}

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if len(req.Body) > 0 && httpReq.Header.Get(HeaderContentType) == "" {
		httpReq.Header.Set(HeaderContentType, contentTypeJSON)
	}
	if httpReq.Header.Get(HeaderAccept) == "" {
		httpReq.Header.Set(HeaderAccept, contentTypeJSON)
	}

	res, err := i.client.Do(httpReq)
	if err != nil {
		return nil, &apierrors.NetworkError{Op: req.String(), Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(res.Body)

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &apierrors.NetworkError{Op: req.String(), Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if res.StatusCode >= http.StatusBadRequest {
		return nil, &apierrors.HTTPError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: res.StatusCode,
			Body:       resBody,
		}
	}

	return &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       resBody,
	}, nil
}

// resolve joins path onto the base URL, keeping any query string in path.
// Absolute URLs are used as-is.
func (i *HTTPInvoker) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}

	rawPath, rawQuery, _ := strings.Cut(path, "?")
	u := i.baseURL.JoinPath(rawPath)
	if rawQuery != "" {
		u.RawQuery = rawQuery
	}
	if u.String() == "" {
		return "", fmt.Errorf("cannot resolve path %q", path)
	}
	return u.String(), nil
}
