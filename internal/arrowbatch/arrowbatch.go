// Package arrowbatch is the domain-stack implementation of
// httpdlog.RowWriter: an Arrow array.Builder per emitted column,
// assembled into an arrow.Record on Close. An optional FlushFunc receives
// each file's Record; SpillToParquet serializes a Record to Parquet bytes
// for a FlushFunc that persists it.
package arrowbatch

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/basekick-labs/httpdlog/internal/httpdlog"
)

// sharedAllocator is reused across writers to avoid per-file allocator
// overhead, mirroring the teacher's package-level arrow allocator.
var sharedAllocator = memory.NewGoAllocator()

func arrowType(t httpdlog.LogicalType) arrow.DataType {
	switch t {
	case httpdlog.TypeInt32:
		return arrow.PrimitiveTypes.Int32
	case httpdlog.TypeInt64, httpdlog.TypeInterval:
		return arrow.PrimitiveTypes.Int64
	case httpdlog.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case httpdlog.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}

func newBuilder(t httpdlog.LogicalType) array.Builder {
	switch t {
	case httpdlog.TypeInt32:
		return array.NewInt32Builder(sharedAllocator)
	case httpdlog.TypeInt64, httpdlog.TypeInterval:
		return array.NewInt64Builder(sharedAllocator)
	case httpdlog.TypeBool:
		return array.NewBooleanBuilder(sharedAllocator)
	case httpdlog.TypeTimestamp:
		return array.NewTimestampBuilder(sharedAllocator, arrow.FixedWidthTypes.Timestamp_us.(*arrow.TimestampType))
	default:
		return array.NewStringBuilder(sharedAllocator)
	}
}

// FlushFunc receives a completed record for one file's worth of rows. It
// is responsible for releasing the record once done with it.
type FlushFunc func(path string, record arrow.Record) error

// Writer implements httpdlog.RowWriter plus Close, accumulating one
// arrow.Record per file.
type Writer struct {
	path     string
	schema   *arrow.Schema
	builders []array.Builder
	colIndex map[int]int // httpdlog.Column index -> builder slot
	flush    FlushFunc
}

// NewWriter builds a Writer for the given schema, honoring proj (nil
// means every column). flush is called with the finished record on
// Close; pass nil to discard rows (e.g. a schema-only dry run).
func NewWriter(path string, columns []httpdlog.Column, proj httpdlog.Projection, flush FlushFunc) *Writer {
	var fields []arrow.Field
	var builders []array.Builder
	colIndex := map[int]int{}
	for i, c := range columns {
		if proj != nil && !proj[i] {
			continue
		}
		colIndex[i] = len(fields)
		fields = append(fields, arrow.Field{Name: c.Name, Type: arrowType(c.Type), Nullable: true})
		builders = append(builders, newBuilder(c.Type))
	}
	return &Writer{
		path:     path,
		schema:   arrow.NewSchema(fields, nil),
		builders: builders,
		colIndex: colIndex,
		flush:    flush,
	}
}

func (w *Writer) builderFor(col int) (array.Builder, bool) {
	idx, ok := w.colIndex[col]
	if !ok {
		return nil, false
	}
	return w.builders[idx], true
}

func (w *Writer) WriteString(col int, value string, isNull bool) {
	b, ok := w.builderFor(col)
	if !ok {
		return
	}
	sb := b.(*array.StringBuilder)
	if isNull {
		sb.AppendNull()
		return
	}
	sb.Append(value)
}

func (w *Writer) WriteInt32(col int, value int32, isNull bool) {
	b, ok := w.builderFor(col)
	if !ok {
		return
	}
	ib := b.(*array.Int32Builder)
	if isNull {
		ib.AppendNull()
		return
	}
	ib.Append(value)
}

func (w *Writer) WriteInt64(col int, value int64, isNull bool) {
	b, ok := w.builderFor(col)
	if !ok {
		return
	}
	ib := b.(*array.Int64Builder)
	if isNull {
		ib.AppendNull()
		return
	}
	ib.Append(value)
}

func (w *Writer) WriteBool(col int, value bool, isNull bool) {
	b, ok := w.builderFor(col)
	if !ok {
		return
	}
	bb := b.(*array.BooleanBuilder)
	if isNull {
		bb.AppendNull()
		return
	}
	bb.Append(value)
}

func (w *Writer) WriteTimestamp(col int, micros int64, isNull bool) {
	b, ok := w.builderFor(col)
	if !ok {
		return
	}
	tb := b.(*array.TimestampBuilder)
	if isNull {
		tb.AppendNull()
		return
	}
	tb.Append(arrow.Timestamp(micros))
}

// Close finalizes every builder into an array, assembles the record, and
// hands it to flush. Builders and the intermediate arrays are always
// released, even if flush returns an error.
func (w *Writer) Close() error {
	arrays := make([]arrow.Array, len(w.builders))
	defer func() {
		for _, b := range w.builders {
			b.Release()
		}
	}()
	for i, b := range w.builders {
		arrays[i] = b.NewArray()
	}
	record := array.NewRecord(w.schema, arrays, -1)
	for _, a := range arrays {
		a.Release()
	}

	if w.flush == nil {
		record.Release()
		return nil
	}
	return w.flush(w.path, record)
}

// SpillToParquet serializes the record as a Parquet file's bytes via
// pqarrow, for use inside a FlushFunc in the --out spill mode, and releases
// the record. The returned bytes still need to be written to storage by
// the caller.
func SpillToParquet(record arrow.Record) ([]byte, error) {
	defer record.Release()

	var buf bytes.Buffer
	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(true),
		parquet.WithStats(true),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(record.Schema(), &buf, writerProps, arrowProps)
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("writing record batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
