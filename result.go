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

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/google/uuid"
)

// Value stores the contents of a single cell from a query result.
type Value any

// Result stores the fully downloaded result of a query.
//
// The result owns an Arrow record; call Release once it is no longer needed.
type Result struct {
	// QueryID is the ID the query was executed with.
	QueryID uuid.UUID
	// Schema is the schema of the result set.
	Schema Schema
	// Stats describes the transfer of the result set.
	Stats Stats

	record arrow.Record
}

// Record returns the result as a single Arrow record, columns in query order.
//
// The record is owned by the result; Retain it to keep it past Release.
func (r *Result) Record() arrow.Record {
	return r.record
}

// NumRows returns the number of rows parsed.
func (r *Result) NumRows() int64 {
	return r.record.NumRows()
}

// RowCountMismatch reports whether the number of rows parsed differs from the row count
// reported by the server before the download.
func (r *Result) RowCountMismatch() bool {
	return r.record.NumRows() != r.Stats.RowCount
}

// Columns returns the columns keyed by name.
func (r *Result) Columns() map[string]arrow.Array {
	columns := make(map[string]arrow.Array, len(r.Schema))
	for i, f := range r.Schema {
		columns[f.Name] = r.record.Column(i)
	}
	return columns
}

// Release releases the Arrow record of the result.
func (r *Result) Release() {
	if r.record != nil {
		r.record.Release()
		r.record = nil
	}
}

// ToValues reads the result and returns the rows as a 2D array of values,
// i.e., rows of value lists.
//
// Nulls are nil. TIMESTAMP and DATE columns are returned as time.Time in UTC.
func (r *Result) ToValues() ([][]Value, error) {
	return r.values(int(r.record.NumRows()))
}

// Head is like ToValues but only converts the first n rows.
func (r *Result) Head(n int) ([][]Value, error) {
	return r.values(max(min(n, int(r.record.NumRows())), 0))
}

func (r *Result) values(rows int) ([][]Value, error) {
	valueLists := make([][]Value, rows)
	for i := range valueLists {
		valueLists[i] = make([]Value, len(r.Schema))
	}

	for j, col := range r.record.Columns() {
		for i := 0; i < rows; i++ {
			if col.IsNull(i) {
				continue
			}
			v, err := convertValue(col, i)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", r.Schema[j].Name, err)
			}
			valueLists[i][j] = v
		}
	}
	return valueLists, nil
}

func convertValue(col arrow.Array, i int) (Value, error) {
	switch c := col.(type) {
	case *array.String:
		return c.Value(i), nil
	case *array.Int8:
		return c.Value(i), nil
	case *array.Int16:
		return c.Value(i), nil
	case *array.Int32:
		return c.Value(i), nil
	case *array.Int64:
		return c.Value(i), nil
	case *array.Float32:
		return c.Value(i), nil
	case *array.Float64:
		return c.Value(i), nil
	case *array.Boolean:
		return c.Value(i), nil
	case *array.Timestamp:
		return c.Value(i).ToTime(arrow.Nanosecond).UTC(), nil
	default:
		return nil, fmt.Errorf("unrecognized type: %s", col.DataType())
	}
}
