package gateway

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrRepeatedCursor is returned when the API hands back a page cursor that was already consumed.
var ErrRepeatedCursor = errors.New("pagination cursor repeated")

// OperationError is a failed discovery-phase request.
type OperationError struct {
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *OperationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// failureRecorder keeps the status and body of the last non-2xx response that
// passed through it, leaving the response readable for the caller.
type failureRecorder struct {
	base   http.RoundTripper
	status int
	body   string
}

func (r *failureRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	base := r.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read error response body: %w", err)
	}
	r.status = resp.StatusCode
	r.body = strings.TrimSpace(string(body))
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (r *failureRecorder) reset() {
	r.status, r.body = 0, ""
}

func (r *failureRecorder) operationError(op string, err error) *OperationError {
	return &OperationError{
		Operation:  op,
		StatusCode: r.status,
		Body:       r.body,
		Err:        err,
	}
}
