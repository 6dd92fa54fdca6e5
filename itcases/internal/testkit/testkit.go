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

package testkit

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/lucasepe/codename"
	questdb "github.com/questdb/questdb-query-go"
	"github.com/stretchr/testify/require"
)

// TestKit runs statements against the QuestDB server named by QDB_HTTP_ENDPOINT and drops
// the tables it created on Close.
type TestKit struct {
	t testing.TB

	endpoint *questdb.Endpoint
	client   *http.Client

	tables []string
}

// NewTestKit returns nil if QDB_HTTP_ENDPOINT is not set.
func NewTestKit(t testing.TB) *TestKit {
	addr := os.Getenv("QDB_HTTP_ENDPOINT")
	if addr == "" {
		return nil
	}

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	endpoint, err := questdb.NewEndpoint(questdb.EndpointConfig{
		Host:     host,
		Port:     p,
		HTTPS:    os.Getenv("QDB_HTTPS") == "true",
		Username: os.Getenv("QDB_USERNAME"),
		Password: os.Getenv("QDB_PASSWORD"),
		Token:    os.Getenv("QDB_TOKEN"),
	})
	require.NoError(t, err)

	return &TestKit{
		t:        t,
		endpoint: endpoint,
		client:   &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
	}
}

func (tk *TestKit) Endpoint() *questdb.Endpoint {
	return tk.endpoint
}

func (tk *TestKit) Close() {
	ctx := context.Background()
	for _, table := range tk.tables {
		tk.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table))
	}
	tk.client.CloseIdleConnections()
}

// RandomName generates a random name.
func (tk *TestKit) RandomName() string {
	rng, err := codename.DefaultRNG()
	require.NoError(tk.t, err)
	return strings.ReplaceAll(codename.Generate(rng, 10), "-", "_")
}

// NewTable creates a new table and track it for close.
func (tk *TestKit) NewTable(ctx context.Context, tableName string, createTableStatement string) {
	tk.Exec(ctx, createTableStatement)
	tk.tables = append(tk.tables, tableName)
}

// Exec runs a statement that returns no rows, e.g. DDL or INSERT.
func (tk *TestKit) Exec(ctx context.Context, statement string) {
	u, err := url.Parse(tk.endpoint.URL() + "/exec")
	require.NoError(tk.t, err)
	u.RawQuery = url.Values{"query": []string{statement}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	require.NoError(tk.t, err)
	if header, ok := tk.endpoint.Credential().HeaderValue(); ok {
		req.Header.Set("Authorization", header)
	}

	resp, err := tk.client.Do(req)
	require.NoError(tk.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(tk.t, err)
	require.Equal(tk.t, http.StatusOK, resp.StatusCode, string(body))
}
