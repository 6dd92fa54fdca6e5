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
	"fmt"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Query is a SQL query to be executed on QuestDB.
type Query struct {
	c *Client

	sql string

	// ID of the query.
	//
	// If provided, it tags the log lines and the handle of the query;
	// otherwise a random UUID is generated on each execution.
	ID *uuid.UUID
	// Chunks is the number of ranges the result is downloaded in, concurrently.
	//
	// It is capped by the number of rows of the result. Values below 1 mean 1.
	Chunks int
	// Timeout overrides Config.Timeout for every request of this query.
	Timeout time.Duration
}

// Query creates a new query with the given SQL text.
func (c *Client) Query(sql string) *Query {
	return &Query{
		c:      c,
		sql:    sql,
		Chunks: DefaultChunks,
	}
}

// Execute runs the query and waits for the whole result to be downloaded.
//
// Any failing chunk fails the query; no partial result is returned.
func (q *Query) Execute(ctx context.Context) (*Result, error) {
	return q.c.execute(ctx, q.id(), q.sql, q.chunks(), q.timeout())
}

// Submit runs the query in the background.
func (q *Query) Submit(ctx context.Context) *QueryHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &QueryHandle{
		id:     q.id(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	sql, chunks, timeout := q.sql, q.chunks(), q.timeout()
	go func() {
		defer close(h.done)
		defer cancel()
		h.result, h.err = q.c.execute(ctx, h.id, sql, chunks, timeout)
	}()
	return h
}

func (q *Query) id() uuid.UUID {
	if q.ID != nil {
		return *q.ID
	}
	return uuid.New()
}

func (q *Query) chunks() int {
	return max(q.Chunks, 1)
}

func (q *Query) timeout() time.Duration {
	if q.Timeout > 0 {
		return q.Timeout
	}
	return q.c.config.timeout()
}

// QueryHandle is a handle to a query running in the background.
type QueryHandle struct {
	id     uuid.UUID
	cancel context.CancelFunc
	done   chan struct{}

	result *Result
	err    error
}

// ID returns the ID of the query.
func (h *QueryHandle) ID() uuid.UUID {
	return h.id
}

// Done is closed when the query has finished, failed or been cancelled.
func (h *QueryHandle) Done() <-chan struct{} {
	return h.done
}

// Wait waits for the query to finish and returns its result.
//
// If ctx is done first, Wait returns ctx.Err() and the query keeps running;
// call Cancel to stop it.
func (h *QueryHandle) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return h.result, h.err
	}
}

// Cancel aborts the in-flight requests of the query.
func (h *QueryHandle) Cancel() {
	h.cancel()
}

// Execute runs query against endpoint in the given number of chunks with the default
// configuration.
func Execute(ctx context.Context, endpoint *Endpoint, query string, chunks int) (*Result, error) {
	q := NewClient(&Config{Endpoint: endpoint}).Query(query)
	q.Chunks = chunks
	return q.Execute(ctx)
}

func (c *Client) execute(ctx context.Context, id uuid.UUID, query string, chunks int, timeout time.Duration) (result *Result, err error) {
	endpoint := c.config.Endpoint
	if endpoint == nil {
		return nil, &ConfigError{Message: "no endpoint configured"}
	}

	log := c.config.logger().WithField("query_id", id.String())
	mem := c.config.allocator()
	parser := c.config.parser()

	start := time.Now()
	defer func() {
		var stats *Stats
		if result != nil {
			stats = &result.Stats
		}
		c.config.Metrics.observe(stats, err)
	}()

	session := newHTTPClient(endpoint, timeout, chunks)
	defer session.Close()

	schema, rowCount, err := resolveSchema(ctx, session, endpoint, query)
	if err != nil {
		return nil, err
	}

	ranges := planChunks(rowCount, chunks)
	log.Debugf("rows: %d, columns: %d, chunks: %d", rowCount, len(schema), len(ranges))

	results := make([]*chunkResult, len(ranges))
	defer func() {
		for _, r := range results {
			if r != nil {
				r.record.Release()
			}
		}
	}()

	g, gCtx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			chunkLog := log.WithField("chunk", i+1)
			chunkLog.Debugf("download start chunk: %d/%d, range: %s", i+1, len(ranges), r.limit())

			timer := time.Now()
			res, err := fetchChunk(gCtx, session, endpoint, parser, query, schema, r)
			if err != nil {
				return err
			}
			results[i] = res
			chunkLog.Debugf("processed chunk %d out of %d. It took %v. Bytes: %d, rows: %d",
				i+1, len(ranges), time.Since(timer), res.byteCount, r.len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	duration := time.Since(start)

	record, byteCount, err := assembleChunks(mem, schema, results)
	if err != nil {
		return nil, err
	}
	if record.NumRows() != rowCount {
		log.Warnf("server reported %d rows, parsed %d", rowCount, record.NumRows())
	}

	return &Result{
		QueryID: id,
		Schema:  schema,
		Stats: Stats{
			Duration:  duration,
			RowCount:  rowCount,
			ByteCount: byteCount,
			Chunks:    len(ranges),
		},
		record: record,
	}, nil
}

// assembleChunks concatenates the chunk records in range order.
//
// The returned record is owned by the caller; the chunk records are left untouched.
func assembleChunks(mem memory.Allocator, schema Schema, results []*chunkResult) (arrow.Record, int64, error) {
	var byteCount, rows int64
	for _, r := range results {
		byteCount += r.byteCount
		rows += r.record.NumRows()
	}

	if len(results) == 1 {
		record := results[0].record
		record.Retain()
		return record, byteCount, nil
	}

	columns := make([]arrow.Array, 0, len(schema))
	defer func() {
		for _, col := range columns {
			col.Release()
		}
	}()
	for i, f := range schema {
		parts := make([]arrow.Array, len(results))
		for j, r := range results {
			parts[j] = r.record.Column(i)
		}
		col, err := array.Concatenate(parts, mem)
		if err != nil {
			return nil, 0, fmt.Errorf("concatenate column %s: %w", f.Name, err)
		}
		columns = append(columns, col)
	}
	return array.NewRecord(schema.ArrowSchema(), columns, rows), byteCount, nil
}
