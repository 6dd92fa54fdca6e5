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
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// EndpointConfig describes a QuestDB HTTP endpoint before validation.
type EndpointConfig struct {
	// Host is the server host name or address. Defaults to DefaultHost.
	Host string `json:"host" mapstructure:"host"`
	// Port is the HTTP port. Defaults to DefaultHTTPSPort with HTTPS, DefaultHTTPPort otherwise.
	Port int `json:"port" mapstructure:"port"`
	// HTTPS selects TLS transport.
	HTTPS bool `json:"https" mapstructure:"https"`

	// Username and Password enable basic auth. Both or neither must be set.
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	// Token enables bearer auth. Cannot be combined with Username.
	Token string `json:"token" mapstructure:"token"`
}

// Endpoint is a validated, immutable description of a QuestDB HTTP server.
type Endpoint struct {
	host       string
	port       int
	https      bool
	credential Credential
}

// NewEndpoint validates the configuration and returns the endpoint it describes.
func NewEndpoint(config EndpointConfig) (*Endpoint, error) {
	credential, err := NewCredential(config.Username, config.Password, config.Token)
	if err != nil {
		return nil, err
	}

	host := config.Host
	if host == "" {
		host = DefaultHost
	}

	port := config.Port
	switch {
	case port < 0 || port > 65535:
		return nil, &ConfigError{Message: fmt.Sprintf("invalid port: %d", port)}
	case port == 0 && config.HTTPS:
		port = DefaultHTTPSPort
	case port == 0:
		port = DefaultHTTPPort
	}

	return &Endpoint{
		host:       host,
		port:       port,
		https:      config.HTTPS,
		credential: credential,
	}, nil
}

func (e *Endpoint) Host() string {
	return e.host
}

func (e *Endpoint) Port() int {
	return e.port
}

func (e *Endpoint) HTTPS() bool {
	return e.https
}

// Credential returns the credential sent with every request.
func (e *Endpoint) Credential() Credential {
	return e.credential
}

// URL returns the base URL of the endpoint, e.g. "http://127.0.0.1:9000".
func (e *Endpoint) URL() string {
	scheme := "http"
	if e.https {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(e.host, strconv.Itoa(e.port)),
	}
	return u.String()
}

func (e *Endpoint) String() string {
	return e.URL()
}
