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
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// Client runs queries against a single QuestDB endpoint.
//
// A Client holds configuration only; every query opens its own HTTP session and releases
// it before returning, so a Client is safe for concurrent use.
type Client struct {
	config *Config
}

// NewClient creates a new client.
func NewClient(config *Config) *Client {
	return &Client{
		config: config,
	}
}

// HTTPClient is the HTTP session of a single query.
type HTTPClient interface {
	// Get sends an authenticated GET request to the QuestDB server.
	Get(context.Context, *url.URL) (*http.Response, error)
	// Close releases the pooled connections of the session.
	Close()
}

type httpClient struct {
	client    *http.Client
	transport *http.Transport
	auth      string
}

// newHTTPClient creates the session shared by the requests of one query.
//
// The timeout applies to each request individually, including reading its body.
func newHTTPClient(endpoint *Endpoint, timeout time.Duration, conns int) *httpClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = max(conns, 1)

	auth, _ := endpoint.Credential().HeaderValue()
	return &httpClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		transport: transport,
		auth:      auth,
	}
}

// Ensure httpClient implements HTTPClient.
var _ HTTPClient = (*httpClient)(nil)

func (c *httpClient) Get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: http.MethodGet, URL: u.Scheme + "://" + u.Host + u.Path, Err: err}
	}
	return resp, nil
}

func (c *httpClient) Close() {
	c.transport.CloseIdleConnections()
}
