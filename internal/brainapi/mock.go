package brainapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
)

// MockResponse is a canned response for the MockDoer.
type MockResponse struct {
	Status int
	Body   any // string, []byte or a value encoded as JSON
	Header http.Header
	Err    error
}

// RecordedCall is a request seen by the MockDoer with its body read out.
type RecordedCall struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// MockDoer is a deterministic Doer for testing.
// It returns canned responses in FIFO order and records all requests.
type MockDoer struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []RecordedCall
}

// NewMockDoer creates a MockDoer with the given canned responses.
func NewMockDoer(responses ...MockResponse) *MockDoer {
	return &MockDoer{responses: responses}
}

// Do returns the next canned response, or a transport error if the queue is
// empty.
func (m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, RecordedCall{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.RawQuery,
		Header: req.Header.Clone(),
		Body:   body,
	})

	if len(m.responses) == 0 {
		return nil, errors.New("mock doer: no responses queued")
	}
	r := m.responses[0]
	m.responses = m.responses[1:]

	if r.Err != nil {
		return nil, r.Err
	}

	var payload []byte
	switch b := r.Body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	case []byte:
		payload = b
	default:
		var err error
		if payload, err = json.Marshal(b); err != nil {
			return nil, err
		}
	}

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := r.Header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(payload)),
		Request:    req,
	}, nil
}

// AddResponse appends a canned response to the queue.
func (m *MockDoer) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Do calls made.
func (m *MockDoer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or the zero value if none.
func (m *MockDoer) LastCall() RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return RecordedCall{}
	}
	return m.Calls[len(m.Calls)-1]
}
