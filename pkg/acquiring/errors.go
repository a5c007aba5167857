package acquiring

import "fmt"

// APIError is a transport failure or an HTTP error answer of the API.
type APIError struct {
	// StatusCode is zero when no HTTP answer was received.
	StatusCode int
	Body       string
	Title      string
	Detail     string
	TraceID    string
	Response   *Response
	Err        error
}

func newAPIError(r *Response) *APIError {
	e := &APIError{
		StatusCode: r.StatusCode,
		Body:       string(r.Raw),
		TraceID:    r.TraceID,
		Response:   r,
		Title:      r.String("title"),
		Detail:     r.String("detail"),
	}
	if e.Title == "" {
		e.Title = r.String("message")
	}
	return e
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("API error (%d): %v", e.StatusCode, e.Err)
	case e.Title != "" && e.Detail != "":
		return fmt.Sprintf("API error (%d): %s: %s", e.StatusCode, e.Title, e.Detail)
	case e.Title != "":
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Title)
	default:
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}
