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
	"time"

	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultHost is the host used when EndpointConfig.Host is empty.
	DefaultHost = "127.0.0.1"
	// DefaultHTTPPort is the port of QuestDB's HTTP server.
	DefaultHTTPPort = 9000
	// DefaultHTTPSPort is the port used for TLS endpoints when none is given.
	DefaultHTTPSPort = 443
	// DefaultTimeout bounds each HTTP request of a query.
	DefaultTimeout = 300 * time.Second
	// DefaultChunks is the number of concurrent range downloads per query.
	DefaultChunks = 1
)

// Config defines the configuration for the client.
type Config struct {
	// Endpoint is the QuestDB server to query.
	Endpoint *Endpoint `json:"endpoint"`
	// Timeout bounds every single HTTP request issued for a query,
	// the metadata request and each chunk download alike.
	//
	// Zero means DefaultTimeout.
	Timeout time.Duration `json:"timeout"`

	// Allocator allocates the Arrow buffers of results. Defaults to memory.DefaultAllocator.
	Allocator memory.Allocator `json:"-"`
	// Parser turns a downloaded chunk into an Arrow record. Defaults to a CSVParser.
	Parser Parser `json:"-"`
	// Logger receives debug lines about chunk scheduling. Defaults to discarding everything.
	Logger logrus.FieldLogger `json:"-"`
	// Metrics, if set, records query outcomes and throughput.
	Metrics *Metrics `json:"-"`
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Config) allocator() memory.Allocator {
	if c.Allocator == nil {
		return memory.DefaultAllocator
	}
	return c.Allocator
}

func (c *Config) parser() Parser {
	if c.Parser == nil {
		return &CSVParser{Allocator: c.allocator()}
	}
	return c.Parser
}

func (c *Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return discardLogger
	}
	return c.Logger
}
