// Package testutil provides testing utilities for the Searchbase client.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// SearchRequest is the decoded wire envelope of one recorded search call.
type SearchRequest struct {
	Query struct {
		Index   string           `json:"index"`
		Filters []map[string]any `json:"filters"`
		Sort    []map[string]any `json:"sort"`
		Select  []string         `json:"select"`
		Limit   int              `json:"limit"`
		Offset  int              `json:"offset"`

		// Raw carries the query object exactly as received so tests can
		// assert on field presence, not just decoded values.
		Raw map[string]json.RawMessage `json:"-"`
	} `json:"query"`
}

// ScriptedFailure makes the mock fail one specific call (1-based) with the
// given status and body instead of serving records.
type ScriptedFailure struct {
	Call       int
	StatusCode int
	Body       string
}

// MockSearchbase is a configurable in-process Searchbase server for testing.
// It serves the wire protocol over an in-memory record set, slicing by the
// requested limit/offset and reporting a live total, and records every
// decoded request for assertions.
type MockSearchbase struct {
	server *httptest.Server

	mu       sync.RWMutex
	records  []json.RawMessage
	failures []ScriptedFailure
	handler  http.HandlerFunc

	// Tracking
	requests  []SearchRequest
	lastToken string
}

// NewMockSearchbase starts a mock server with the given record set. Close it
// with Close when the test ends.
func NewMockSearchbase(records ...json.RawMessage) *MockSearchbase {
	mock := &MockSearchbase{records: records}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		custom := mock.handler
		mock.mu.Unlock()

		if custom != nil {
			custom(w, r)
			return
		}

		mock.searchHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSearchbase) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSearchbase) Close() {
	m.server.Close()
}

// SetRecords replaces the backing record set. Combined with a custom handler
// wrapping searchHandler, this simulates a result set changing mid-traversal.
func (m *MockSearchbase) SetRecords(records []json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

// SetHandler replaces the default search handler entirely.
func (m *MockSearchbase) SetHandler(handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// FailCall scripts call number n (1-based, counted across all requests) to
// respond with the given status and body.
func (m *MockSearchbase) FailCall(n, statusCode int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, ScriptedFailure{Call: n, StatusCode: statusCode, Body: body})
}

// RequestCount returns the number of search requests received.
func (m *MockSearchbase) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// Requests returns a copy of all decoded requests received so far.
func (m *MockSearchbase) Requests() []SearchRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]SearchRequest(nil), m.requests...)
}

// LastToken returns the x-searchbase-token header of the most recent request.
func (m *MockSearchbase) LastToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastToken
}

// Reset clears request tracking and scripted failures.
func (m *MockSearchbase) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.failures = nil
	m.lastToken = ""
}

// searchHandler implements the Searchbase wire protocol over the in-memory
// record set.
func (m *MockSearchbase) searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/search" {
		writeError(w, http.StatusNotFound, "unknown endpoint")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	var req SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	var envelope struct {
		Query map[string]json.RawMessage `json:"query"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		req.Query.Raw = envelope.Query
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.lastToken = r.Header.Get("x-searchbase-token")
	call := len(m.requests)

	var failure *ScriptedFailure
	for i := range m.failures {
		if m.failures[i].Call == call {
			failure = &m.failures[i]
			break
		}
	}
	records := m.records
	m.mu.Unlock()

	if failure != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failure.StatusCode)
		fmt.Fprint(w, failure.Body)
		return
	}

	total := len(records)
	start := req.Query.Offset
	if start > total {
		start = total
	}
	end := total
	if req.Query.Limit > 0 && start+req.Query.Limit < end {
		end = start + req.Query.Limit
	}

	page := records[start:end]
	if page == nil {
		page = []json.RawMessage{}
	}
	resp := map[string]any{
		"total":   total,
		"range":   map[string]int{"start": start, "end": end},
		"records": page,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return
	}
}

// writeError emits the service's error convention: JSON with a message field.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"message": %q}`, message)
}

// Records builds n distinct opaque records for test datasets.
func Records(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(fmt.Sprintf(`{"id": %d}`, i+1))
	}
	return out
}
