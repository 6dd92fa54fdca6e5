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
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
)

// rowRange is the half-open range [Start, End) of result rows fetched by one chunk.
type rowRange struct {
	Start int64
	End   int64
}

// limit renders the range as the value of the limit parameter of /exp.
func (r rowRange) limit() string {
	return strconv.FormatInt(r.Start, 10) + "," + strconv.FormatInt(r.End, 10)
}

func (r rowRange) len() int64 {
	return r.End - r.Start
}

// planChunks splits [0, rowCount) into at most chunks contiguous ranges.
//
// There are never more ranges than rows, and always at least one. All ranges but the
// last have the same size; the last one absorbs the remainder.
func planChunks(rowCount int64, chunks int) []rowRange {
	n := max(min(int64(chunks), rowCount), 1)
	size := rowCount / n

	ranges := make([]rowRange, n)
	for i := int64(0); i < n; i++ {
		end := (i + 1) * size
		if i == n-1 {
			end = rowCount
		}
		ranges[i] = rowRange{Start: i * size, End: end}
	}
	return ranges
}

// chunkResult is the parsed content of one range.
type chunkResult struct {
	record    arrow.Record
	byteCount int64
}

// fetchChunk downloads one range of the result as CSV and parses it against the schema.
func fetchChunk(ctx context.Context, c HTTPClient, endpoint *Endpoint, parser Parser, query string, schema Schema, r rowRange) (*chunkResult, error) {
	req, err := url.Parse(endpoint.URL() + "/exp")
	if err != nil {
		return nil, err
	}
	q := req.Query()
	q.Add("query", query)
	q.Add("limit", r.limit())
	req.RawQuery = q.Encode()

	resp, err := c.Get(ctx, req)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}
	n, err := io.Copy(&buf, resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", URL: endpoint.URL() + req.Path, Err: err}
	}

	record, err := parser.Parse(buf.Bytes(), schema)
	if err != nil {
		return nil, err
	}
	return &chunkResult{record: record, byteCount: n}, nil
}
