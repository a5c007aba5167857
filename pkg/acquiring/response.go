package acquiring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Response is a decoded API answer.
type Response struct {
	StatusCode int
	Body       map[string]any
	Raw        []byte
	TraceID    string
}

// DecodeResponse decodes a JSON body. Numbers are kept as json.Number.
func DecodeResponse(status int, raw []byte) (*Response, error) {
	r := &Response{StatusCode: status, Raw: raw, Body: map[string]any{}}
	if len(bytes.TrimSpace(raw)) == 0 {
		return r, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if m, ok := v.(map[string]any); ok {
		r.Body = m
	}
	return r, nil
}

// Lookup walks a dotted path such as "payment.status" through the body.
func (r *Response) Lookup(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	var cur any = r.Body
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// String returns the value at path rendered as text, or "".
func (r *Response) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}

// First returns the first non-empty value among paths.
func (r *Response) First(paths ...string) string {
	for _, p := range paths {
		if v := r.String(p); v != "" {
			return v
		}
	}
	return ""
}

// Status is the business status, top level or nested under payment or refund.
func (r *Response) Status() string {
	return r.First("status", "payment.status", "refund.status")
}

func (r *Response) ResponseCode() string {
	return r.String("responseCode")
}
