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
	"math"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// Parser turns the CSV export of a range of rows into a record with the given schema.
type Parser interface {
	Parse(data []byte, schema Schema) (arrow.Record, error)
}

// CSVParser parses QuestDB's CSV export with Arrow's CSV reader.
//
// The first line is the header. Empty fields are nulls. Each column is converted to the
// type of its FieldSchema; TIMESTAMP and DATE values are read as instants, shifted to UTC
// and stored without a time zone.
type CSVParser struct {
	Allocator memory.Allocator
}

var _ Parser = (*CSVParser)(nil)

var errNullValue = errors.New("null value in non-nullable column")

func (p *CSVParser) Parse(data []byte, schema Schema) (arrow.Record, error) {
	mem := p.Allocator
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	var batches []arrow.Record
	defer func() {
		for _, batch := range batches {
			batch.Release()
		}
	}()

	if len(bytes.TrimSpace(data)) > 0 {
		textFields := make([]arrow.Field, len(schema))
		for i, f := range schema {
			textFields[i] = arrow.Field{Name: f.Name, Type: arrow.BinaryTypes.String, Nullable: true}
		}

		reader := csv.NewReader(
			bytes.NewReader(data),
			arrow.NewSchema(textFields, nil),
			csv.WithAllocator(mem),
			csv.WithHeader(true),
			csv.WithChunk(-1),
			csv.WithNullReader(true, ""),
		)
		defer reader.Release()

		for reader.Next() {
			batch := reader.Record()
			batch.Retain()
			batches = append(batches, batch)
		}
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
	}

	var rows int64
	for _, batch := range batches {
		rows += batch.NumRows()
	}

	columns := make([]arrow.Array, 0, len(schema))
	defer func() {
		for _, col := range columns {
			col.Release()
		}
	}()
	for i, f := range schema {
		col, err := coerceColumn(mem, f, batches, i)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	return array.NewRecord(schema.ArrowSchema(), columns, rows), nil
}

// coerceColumn converts the text of column idx across all batches to the column's type.
func coerceColumn(mem memory.Allocator, f *FieldSchema, batches []arrow.Record, idx int) (arrow.Array, error) {
	typ := f.Type()
	bldr := array.NewBuilder(mem, typ.ArrowType())
	defer bldr.Release()

	for _, batch := range batches {
		text, ok := batch.Column(idx).(*array.String)
		if !ok {
			return nil, fmt.Errorf("column %s: expected text, got %s", f.Name, batch.Column(idx).DataType())
		}
		bldr.Reserve(text.Len())

		for i := 0; i < text.Len(); i++ {
			if text.IsNull(i) {
				if !typ.Nullable() {
					return nil, &CoercionError{Column: f.Name, WireType: f.WireType, Type: typ, Err: errNullValue}
				}
				bldr.AppendNull()
				continue
			}

			v := text.Value(i)
			var err error
			switch b := bldr.(type) {
			case *array.StringBuilder:
				b.Append(v)
			case *array.TimestampBuilder:
				var ts arrow.Timestamp
				if ts, err = parseInstant(v); err == nil {
					b.Append(ts)
				}
			default:
				err = bldr.AppendValueFromString(v)
			}
			if err != nil {
				return nil, &CoercionError{Column: f.Name, WireType: f.WireType, Type: typ, Value: v, Err: err}
			}
		}
	}
	return bldr.NewArray(), nil
}

// Instants that fit in a timestamp[ns].
var (
	minInstant = time.Unix(0, math.MinInt64).UTC()
	maxInstant = time.Unix(0, math.MaxInt64).UTC()
)

var errInstantOutOfRange = fmt.Errorf("instant out of range [%s, %s]",
	minInstant.Format(time.RFC3339Nano), maxInstant.Format(time.RFC3339Nano))

// parseInstant reads a TIMESTAMP or DATE value as nanoseconds since the epoch in UTC.
// Any UTC offset in the value is applied, then dropped.
func parseInstant(v string) (arrow.Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		// arrow wraps out of range values at nanosecond precision; check the whole seconds first
		secs, err := arrow.TimestampFromString(wholeSeconds(v), arrow.Second)
		if err != nil {
			return 0, err
		}
		if int64(secs) <= minInstant.Unix() || int64(secs) >= maxInstant.Unix() {
			return 0, errInstantOutOfRange
		}
		return arrow.TimestampFromString(v, arrow.Nanosecond)
	}
	if t.Before(minInstant) || t.After(maxInstant) {
		return 0, errInstantOutOfRange
	}
	return arrow.TimestampFromTime(t, arrow.Nanosecond)
}

// wholeSeconds drops the fraction of a second from a "YYYY-MM-DD[T]HH:MM:SS[.zzz][zone]" value.
func wholeSeconds(v string) string {
	if len(v) <= 19 || v[19] != '.' {
		return v
	}
	end := 20
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	return v[:19] + v[end:]
}
