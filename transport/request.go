package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderRequestID     = "X-Request-ID"

	contentTypeJSON = "application/json"
)

// Request is a fully formed outbound request. Path is resolved against the
// invoker's base URL.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

func NewRequest(method, path string, body []byte) Request {
	return Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
		Body:   body,
	}
}

// NewJSONRequest marshals payload (when non-nil) into the request body
func NewJSONRequest(method, path string, payload any) (Request, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return Request{}, fmt.Errorf("failed to serialize request: %w", err)
		}
	}
	req := NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(HeaderContentType, contentTypeJSON)
	}
	return req, nil
}

// Clone returns a deep copy so a retry never shares headers or body with the original
func (r Request) Clone() Request {
	clone := Request{
		Method: r.Method,
		Path:   r.Path,
		Header: r.Header.Clone(),
	}
	if clone.Header == nil {
		clone.Header = make(http.Header)
	}
	if r.Body != nil {
		clone.Body = append([]byte(nil), r.Body...)
	}
	return clone
}

func (r Request) String() string {
	return r.Method + " " + r.Path
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the response body into v
func (r *Response) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
