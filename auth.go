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
	"encoding/base64"
	"regexp"
)

// Credential authenticates the requests of a query.
//
// The set of credentials is closed: NoCredential, BasicCredential and BearerCredential.
// Use NewCredential (or NewEndpoint) to build a validated one.
type Credential interface {
	// HeaderValue returns the value of the Authorization header, if any.
	HeaderValue() (string, bool)

	credential()
}

// NoCredential sends no Authorization header.
type NoCredential struct{}

// BasicCredential authenticates with HTTP basic auth.
type BasicCredential struct {
	username string
	password string
}

// BearerCredential authenticates with a bearer token.
type BearerCredential struct {
	token string
}

var (
	_ Credential = NoCredential{}
	_ Credential = BasicCredential{}
	_ Credential = BearerCredential{}
)

// RFC 6750, section 2.1
var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9\-._~+/]+=*$`)

// NewCredential picks and validates the credential described by the given fields.
//
// Username and password must be given together. A token cannot be combined with a
// username, and must only contain token characters.
func NewCredential(username, password, token string) (Credential, error) {
	if (username != "" || password != "") && (username == "" || password == "") {
		return nil, &ConfigError{Message: "must provide both username and password or neither"}
	}
	if token != "" && username != "" {
		return nil, &ConfigError{Message: "cannot use token with username and password"}
	}
	if token != "" {
		if !tokenPattern.MatchString(token) {
			return nil, &ConfigError{Message: "invalid characters in token"}
		}
		return BearerCredential{token: token}, nil
	}
	if username != "" {
		return BasicCredential{username: username, password: password}, nil
	}
	return NoCredential{}, nil
}

func (NoCredential) HeaderValue() (string, bool) {
	return "", false
}

func (c BasicCredential) HeaderValue() (string, bool) {
	auth := c.username + ":" + c.password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(auth)), true
}

// Username returns the basic auth user.
func (c BasicCredential) Username() string {
	return c.username
}

func (c BearerCredential) HeaderValue() (string, bool) {
	return "Bearer " + c.token, true
}

func (NoCredential) credential()     {}
func (BasicCredential) credential()  {}
func (BearerCredential) credential() {}
