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
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/tidwall/gjson"
)

// ConfigError reports an invalid endpoint, credential or client configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + e.Message
}

// QueryError represents an error response from the QuestDB server,
// e.g. a syntax error or a missing table.
type QueryError struct {
	// Message is the server's description of the error.
	Message string
	// Query is the query text as echoed by the server.
	Query string
	// Position is the character offset of a syntax error, if reported.
	Position *int
}

func (e *QueryError) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("%s (at position %d)", e.Message, *e.Position)
	}
	return e.Message
}

// TransportError wraps a failure to talk to the server, including timeouts.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request exceeded its timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// CoercionError reports a value that could not be converted to its column's type.
type CoercionError struct {
	Column   string
	WireType string
	Type     DataType
	Value    string
	Err      error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("failed to convert column %s of type %s to %s: value %q: %v",
		e.Column, e.WireType, e.Type, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError reports a column whose wire type has no known mapping.
type UnsupportedTypeError struct {
	Column   string
	WireType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type %s of column %s", e.WireType, e.Column)
}

// parseQueryError builds a QueryError from a JSON error body.
//
// Depending on the server version the message is either under "error" or "message";
// "error" wins when both are present.
func parseQueryError(body []byte) (*QueryError, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("error body is not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, errors.New("error body is not a JSON object")
	}

	message := doc.Get("error").String()
	if message == "" {
		message = doc.Get("message").String()
	}
	if message == "" {
		return nil, errors.New("error body has no message")
	}

	qe := &QueryError{
		Message: message,
		Query:   doc.Get("query").String(),
	}
	if position := doc.Get("position"); position.Type == gjson.Number {
		p := int(position.Int())
		qe.Position = &p
	}
	return qe, nil
}

func checkStatusCodeOK(resp *http.Response) error {
	return checkStatusCode(resp, http.StatusOK)
}

func checkStatusCode(resp *http.Response, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	msg := string(bytes.TrimSpace(data))
	if err != nil {
		return fmt.Errorf("%d: %s", resp.StatusCode, msg)
	}
	qe, err := parseQueryError(data)
	if err != nil {
		return fmt.Errorf("%d: %s", resp.StatusCode, msg)
	}
	return qe
}

// sneakyBodyClose closes the body and ignores the error.
// This is useful to close the HTTP response body when we don't care about the error.
func sneakyBodyClose(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
