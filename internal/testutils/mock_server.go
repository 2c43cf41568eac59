package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"
)

// MockRatesServer is an upstream rates API whose answers can be changed between requests
type MockRatesServer struct {
	server *httptest.Server
	hits   atomic.Int64

	mu         sync.Mutex
	statusCode int
	body       []byte
	delay      time.Duration
	release    chan struct{}
}

// NewMockRatesServer starts a server answering 200 with the given rates
func NewMockRatesServer(rates map[string]float64) *MockRatesServer {
	mock := &MockRatesServer{}
	mock.RespondWithRates(rates)
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handler))
	return mock
}

// URL returns the server base URL
func (m *MockRatesServer) URL() string {
	return m.server.URL
}

// Close shuts the server down
func (m *MockRatesServer) Close() {
	m.server.Close()
}

// Hits returns how many requests the server received
func (m *MockRatesServer) Hits() int {
	return int(m.hits.Load())
}

// RespondWithRates answers 200 with {"base":"USD","timestamp":...,"rates":rates}
func (m *MockRatesServer) RespondWithRates(rates map[string]float64) {
	body, _ := json.Marshal(map[string]interface{}{
		"success":   true,
		"base":      "USD",
		"timestamp": time.Now().Unix(),
		"rates":     rates,
	})
	m.Respond(http.StatusOK, body)
}

// Respond answers every following request with statusCode and body
func (m *MockRatesServer) Respond(statusCode int, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCode = statusCode
	m.body = body
}

// SetDelay holds each response for delay before answering
func (m *MockRatesServer) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = delay
}

// Block makes requests wait until Unblock is called
func (m *MockRatesServer) Block() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release = make(chan struct{})
}

// Unblock releases requests held by Block
func (m *MockRatesServer) Unblock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.release != nil {
		close(m.release)
		m.release = nil
	}
}

func (m *MockRatesServer) handler(w http.ResponseWriter, r *http.Request) {
	m.hits.Add(1)

	m.mu.Lock()
	statusCode, body, delay, release := m.statusCode, m.body, m.delay, m.release
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// UnreachableURL returns a URL whose server has already been shut down
func UnreachableURL() string {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}
