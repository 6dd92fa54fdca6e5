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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEndpointDefaults(t *testing.T) {
	endpoint, err := NewEndpoint(EndpointConfig{})
	require.NoError(t, err)
	require.Equal(t, DefaultHost, endpoint.Host())
	require.Equal(t, DefaultHTTPPort, endpoint.Port())
	require.False(t, endpoint.HTTPS())
	require.Equal(t, NoCredential{}, endpoint.Credential())
	require.Equal(t, "http://127.0.0.1:9000", endpoint.URL())

	endpoint, err = NewEndpoint(EndpointConfig{Host: "questdb.example.com", HTTPS: true})
	require.NoError(t, err)
	require.Equal(t, DefaultHTTPSPort, endpoint.Port())
	require.Equal(t, "https://questdb.example.com:443", endpoint.URL())

	endpoint, err = NewEndpoint(EndpointConfig{Host: "::1", Port: 9001})
	require.NoError(t, err)
	require.Equal(t, "http://[::1]:9001", endpoint.String())
}

func TestNewEndpointValidation(t *testing.T) {
	for _, tc := range []struct {
		name    string
		config  EndpointConfig
		message string
	}{
		{
			name:    "username and token",
			config:  EndpointConfig{Username: "user", Password: "pass", Token: "token"},
			message: "cannot use token with username and password",
		},
		{
			name:    "username without password",
			config:  EndpointConfig{Username: "user"},
			message: "must provide both username and password or neither",
		},
		{
			name:    "password without username",
			config:  EndpointConfig{Password: "pass"},
			message: "must provide both username and password or neither",
		},
		{
			name:    "invalid token",
			config:  EndpointConfig{Token: "token!"},
			message: "invalid characters in token",
		},
		{
			name:    "token with padding in the middle",
			config:  EndpointConfig{Token: "ab=cd"},
			message: "invalid characters in token",
		},
		{
			name:    "negative port",
			config:  EndpointConfig{Port: -1},
			message: "invalid port: -1",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			endpoint, err := NewEndpoint(tc.config)
			require.Nil(t, endpoint)

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			require.Equal(t, tc.message, ce.Message)
			require.Equal(t, "invalid config: "+tc.message, ce.Error())
		})
	}
}

func TestCredentialHeader(t *testing.T) {
	basic, err := NewCredential("admin", "quest", "")
	require.NoError(t, err)
	header, ok := basic.HeaderValue()
	require.True(t, ok)
	require.Equal(t, "Basic YWRtaW46cXVlc3Q=", header)
	require.Equal(t, "admin", basic.(BasicCredential).Username())

	bearer, err := NewCredential("", "", "1234567890")
	require.NoError(t, err)
	header, ok = bearer.HeaderValue()
	require.True(t, ok)
	require.Equal(t, "Bearer 1234567890", header)

	none, err := NewCredential("", "", "")
	require.NoError(t, err)
	_, ok = none.HeaderValue()
	require.False(t, ok)

	for _, token := range []string{"abc", "a-b.c_d~e+f/g", "YWJj==", "x="} {
		_, err := NewCredential("", "", token)
		require.NoError(t, err, token)
	}
}
