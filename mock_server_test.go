/*
 * Copyright 2024 QuestDB
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package questdb

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type mockResponse struct {
	status int
	body   string
}

// mockServer serves a fixed table through /exec and /exp like QuestDB does.
type mockServer struct {
	*httptest.Server

	columns []execColumn
	rows    [][]string
	// count overrides the row count reported by /exec.
	count *int64

	// execError and expError, if set, are returned instead of the data.
	execError *mockResponse
	expError  func(start, end int64) *mockResponse
	// expDelay delays /exp responses.
	expDelay time.Duration

	mu      sync.Mutex
	headers []http.Header
	limits  []string
}

func newMockServer(t *testing.T, columns []execColumn, rows [][]string) *mockServer {
	s := &mockServer{columns: columns, rows: rows}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *mockServer) endpoint(t *testing.T, config EndpointConfig) *Endpoint {
	addr := s.Listener.Addr().(*net.TCPAddr)
	config.Host = addr.IP.String()
	config.Port = addr.Port
	endpoint, err := NewEndpoint(config)
	require.NoError(t, err)
	return endpoint
}

func (s *mockServer) requestHeaders() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

func (s *mockServer) requestedLimits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.limits...)
}

func (s *mockServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.headers = append(s.headers, r.Header.Clone())
	s.mu.Unlock()

	switch r.URL.Path {
	case "/exec":
		s.serveExec(w, r)
	case "/exp":
		s.serveExp(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *mockServer) serveExec(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("count") != "true" || q.Get("limit") != "0" {
		writeMockResponse(w, &mockResponse{status: http.StatusBadRequest, body: `{"error":"unexpected metadata request"}`})
		return
	}
	if s.execError != nil {
		writeMockResponse(w, s.execError)
		return
	}

	count := int64(len(s.rows))
	if s.count != nil {
		count = *s.count
	}
	body, _ := json.Marshal(map[string]any{
		"query":   q.Get("query"),
		"columns": s.columns,
		"count":   count,
		"dataset": []any{},
	})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *mockServer) serveExp(w http.ResponseWriter, r *http.Request) {
	limit := r.URL.Query().Get("limit")
	s.mu.Lock()
	s.limits = append(s.limits, limit)
	s.mu.Unlock()

	bounds := strings.Split(limit, ",")
	if len(bounds) != 2 {
		writeMockResponse(w, &mockResponse{status: http.StatusBadRequest, body: `{"error":"bad limit"}`})
		return
	}
	start, _ := strconv.ParseInt(bounds[0], 10, 64)
	end, _ := strconv.ParseInt(bounds[1], 10, 64)

	if s.expDelay > 0 {
		select {
		case <-time.After(s.expDelay):
		case <-r.Context().Done():
			return
		}
	}
	if s.expError != nil {
		if resp := s.expError(start, end); resp != nil {
			writeMockResponse(w, resp)
			return
		}
	}

	end = min(end, int64(len(s.rows)))
	start = min(start, end)

	var b strings.Builder
	for i, col := range s.columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(col.Name))
	}
	b.WriteString("\r\n")
	for _, row := range s.rows[start:end] {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\r\n")
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func writeMockResponse(w http.ResponseWriter, resp *mockResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
