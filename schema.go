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
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/goccy/go-json"
)

// Schema describes the columns of a query result, in result order.
type Schema []*FieldSchema

// FieldSchema describes a single column.
type FieldSchema struct {
	// Name is the column name.
	Name string
	// WireType is the type name reported by the server, upper-cased.
	WireType string
	// Hint is the type the parser is asked to produce for the column.
	//
	// Hint is empty for TIMESTAMP and DATE columns; these are parsed as instants and
	// normalised to UTC after parsing.
	Hint DataType
}

// Type returns the in-memory type of the column.
func (f *FieldSchema) Type() DataType {
	if f.Hint == "" {
		return TimestampDataType
	}
	return f.Hint
}

// Temporal reports whether the column holds TIMESTAMP or DATE values.
func (f *FieldSchema) Temporal() bool {
	return f.Hint == ""
}

// ArrowField returns the Arrow field of the column.
func (f *FieldSchema) ArrowField() arrow.Field {
	typ := f.Type()
	return arrow.Field{
		Name:     f.Name,
		Type:     typ.ArrowType(),
		Nullable: typ.Nullable(),
		Metadata: arrow.NewMetadata([]string{"questdb.type"}, []string{f.WireType}),
	}
}

// ArrowSchema returns the Arrow schema of a result with these columns.
func (s Schema) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(s))
	for i, f := range s {
		fields[i] = f.ArrowField()
	}
	return arrow.NewSchema(fields, nil)
}

// DataType is the in-memory type of a column.
type DataType string

const (
	// StringDataType holds text, including symbols, UUIDs, IPs and hashes.
	StringDataType DataType = "string"
	// Int8DataType is a non-nullable 8-bit integer.
	Int8DataType DataType = "int8"
	// Int16DataType is a non-nullable 16-bit integer.
	Int16DataType DataType = "int16"
	// Int32DataType is a nullable 32-bit integer.
	Int32DataType DataType = "Int32"
	// Int64DataType is a nullable 64-bit integer.
	Int64DataType DataType = "Int64"
	// Float32DataType is a 32-bit float.
	Float32DataType DataType = "float32"
	// Float64DataType is a 64-bit float.
	Float64DataType DataType = "float64"
	// BooleanDataType is a non-nullable bool.
	BooleanDataType DataType = "bool"
	// TimestampDataType is a nanosecond instant without a time zone.
	TimestampDataType DataType = "timestamp"
)

var timestampType = &arrow.TimestampType{Unit: arrow.Nanosecond}

// ArrowType returns the Arrow type the data type is stored as.
func (t DataType) ArrowType() arrow.DataType {
	switch t {
	case StringDataType:
		return arrow.BinaryTypes.String
	case Int8DataType:
		return arrow.PrimitiveTypes.Int8
	case Int16DataType:
		return arrow.PrimitiveTypes.Int16
	case Int32DataType:
		return arrow.PrimitiveTypes.Int32
	case Int64DataType:
		return arrow.PrimitiveTypes.Int64
	case Float32DataType:
		return arrow.PrimitiveTypes.Float32
	case Float64DataType:
		return arrow.PrimitiveTypes.Float64
	case BooleanDataType:
		return arrow.FixedWidthTypes.Boolean
	case TimestampDataType:
		return timestampType
	default:
		return arrow.Null
	}
}

// Nullable reports whether an empty field is read as null rather than rejected.
func (t DataType) Nullable() bool {
	switch t {
	case Int8DataType, Int16DataType, BooleanDataType:
		return false
	default:
		return true
	}
}

// wireTypes maps QuestDB's column types to the type requested from the parser.
// TIMESTAMP and DATE have no hint.
var wireTypes = map[string]DataType{
	"STRING":    StringDataType,
	"SYMBOL":    StringDataType,
	"SHORT":     Int16DataType,
	"BOOLEAN":   BooleanDataType,
	"INT":       Int32DataType,
	"LONG":      Int64DataType,
	"DOUBLE":    Float64DataType,
	"FLOAT":     Float32DataType,
	"CHAR":      StringDataType,
	"TIMESTAMP": "",
	"IPV4":      StringDataType,
	"BYTE":      Int8DataType,
	"DATE":      "",
	"UUID":      StringDataType,
	"BINARY":    StringDataType,
	"LONG256":   StringDataType,
}

// mapWireType resolves the column schema of a column reported by the server.
func mapWireType(name, wireType string) (*FieldSchema, error) {
	ty := strings.ToUpper(wireType)
	if strings.HasPrefix(ty, "GEOHASH") {
		return &FieldSchema{Name: name, WireType: ty, Hint: StringDataType}, nil
	}
	hint, ok := wireTypes[ty]
	if !ok {
		return nil, &UnsupportedTypeError{Column: name, WireType: wireType}
	}
	return &FieldSchema{Name: name, WireType: ty, Hint: hint}, nil
}

type execResponse struct {
	Columns []execColumn `json:"columns"`
	Count   *int64       `json:"count"`
}

type execColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// resolveSchema asks the server for the shape and size of the result without any rows.
func resolveSchema(ctx context.Context, c HTTPClient, endpoint *Endpoint, query string) (Schema, int64, error) {
	req, err := url.Parse(endpoint.URL() + "/exec")
	if err != nil {
		return nil, 0, err
	}
	q := req.Query()
	q.Add("query", query)
	q.Add("count", "true")
	q.Add("limit", "0")
	req.RawQuery = q.Encode()

	resp, err := c.Get(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return nil, 0, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{Op: "read", URL: endpoint.URL() + req.Path, Err: err}
	}
	var respData execResponse
	if err := json.Unmarshal(data, &respData); err != nil {
		return nil, 0, fmt.Errorf("decode metadata response: %w", err)
	}
	if respData.Count == nil {
		return nil, 0, errors.New("metadata response has no row count")
	}

	schema := make(Schema, 0, len(respData.Columns))
	for _, col := range respData.Columns {
		f, err := mapWireType(col.Name, col.Type)
		if err != nil {
			return nil, 0, err
		}
		schema = append(schema, f)
	}
	return schema, *respData.Count, nil
}
