package httpdlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRowWriter records every write call for assertion.
type fakeRowWriter struct {
	strings    map[int]string
	nulls      map[int]bool
	int32s     map[int]int32
	int64s     map[int]int64
	bools      map[int]bool
	timestamps map[int]int64
}

func newFakeRowWriter() *fakeRowWriter {
	return &fakeRowWriter{
		strings: map[int]string{}, nulls: map[int]bool{},
		int32s: map[int]int32{}, int64s: map[int]int64{},
		bools: map[int]bool{}, timestamps: map[int]int64{},
	}
}

func (w *fakeRowWriter) WriteString(col int, value string, isNull bool) {
	w.strings[col] = value
	w.nulls[col] = isNull
}
func (w *fakeRowWriter) WriteInt32(col int, value int32, isNull bool) {
	w.int32s[col] = value
	w.nulls[col] = isNull
}
func (w *fakeRowWriter) WriteInt64(col int, value int64, isNull bool) {
	w.int64s[col] = value
	w.nulls[col] = isNull
}
func (w *fakeRowWriter) WriteBool(col int, value bool, isNull bool) {
	w.bools[col] = value
	w.nulls[col] = isNull
}
func (w *fakeRowWriter) WriteTimestamp(col int, micros int64, isNull bool) {
	w.timestamps[col] = micros
	w.nulls[col] = isNull
}

func colIndex(cf *CompiledFormat, name string) int {
	for i, c := range cf.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func TestMaterializeRow_CommonFormat(t *testing.T) {
	cf, err := Compile(CommonFormat, false)
	require.NoError(t, err)

	line := `127.0.0.1 - frank [10/Oct/2023:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326`
	captures, ok := Recognize(cf, line)
	require.True(t, ok)

	w := newFakeRowWriter()
	MaterializeRow(cf, w, nil, captures, "access.log", 1, line, false)

	assert.Equal(t, "127.0.0.1", w.strings[colIndex(cf, "client_host")])
	assert.True(t, w.nulls[colIndex(cf, "ident")])
	assert.Equal(t, "frank", w.strings[colIndex(cf, "auth_user")])
	assert.Equal(t, "GET", w.strings[colIndex(cf, "method")])
	assert.Equal(t, "/apache_pb.gif", w.strings[colIndex(cf, "path")])
	assert.True(t, w.nulls[colIndex(cf, "query_string")])
	assert.Equal(t, int32(200), w.int32s[colIndex(cf, "status")])
	assert.Equal(t, int64(2326), w.int64s[colIndex(cf, "bytes")])
	assert.Equal(t, "access.log", w.strings[colIndex(cf, "log_file")])
}

func TestMaterializeRow_ParseErrorNullsEveryTypedColumn(t *testing.T) {
	cf, err := Compile(CommonFormat, true)
	require.NoError(t, err)

	w := newFakeRowWriter()
	MaterializeRow(cf, w, nil, nil, "access.log", 5, "garbage line", true)

	assert.True(t, w.nulls[colIndex(cf, "status")])
	assert.True(t, w.bools[colIndex(cf, "parse_error")])
	assert.False(t, w.nulls[colIndex(cf, "log_file")])
	assert.False(t, w.nulls[colIndex(cf, "line_number")])
	assert.Equal(t, int64(5), w.int64s[colIndex(cf, "line_number")])

	// String-typed columns go empty, not NULL, on a parse failure.
	assert.False(t, w.nulls[colIndex(cf, "client_host")])
	assert.Equal(t, "", w.strings[colIndex(cf, "client_host")])
	assert.False(t, w.nulls[colIndex(cf, "method")])
	assert.Equal(t, "", w.strings[colIndex(cf, "method")])

	// raw_line is populated only when the row actually failed to parse.
	assert.False(t, w.nulls[colIndex(cf, "raw_line")])
	assert.Equal(t, "garbage line", w.strings[colIndex(cf, "raw_line")])
}

func TestMaterializeRow_RawLineNullOnSuccess(t *testing.T) {
	cf, err := Compile(CommonFormat, true)
	require.NoError(t, err)

	line := `127.0.0.1 - frank [10/Oct/2023:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326`
	captures, ok := Recognize(cf, line)
	require.True(t, ok)

	w := newFakeRowWriter()
	MaterializeRow(cf, w, nil, captures, "access.log", 1, line, false)

	assert.True(t, w.nulls[colIndex(cf, "raw_line")])
	assert.Equal(t, "", w.strings[colIndex(cf, "raw_line")])
}

func TestEffectiveProjection_TimestampRawRequiresPairedColumn(t *testing.T) {
	cf, err := Compile(CommonFormat, true)
	require.NoError(t, err)

	tsIdx := colIndex(cf, "timestamp")
	rawIdx := colIndex(cf, "timestamp_raw")
	logFileIdx := colIndex(cf, "log_file")
	require.GreaterOrEqual(t, tsIdx, 0)
	require.GreaterOrEqual(t, rawIdx, 0)

	// Projection requests timestamp_raw but not timestamp: timestamp_raw
	// must be dropped per design note (d).
	proj := Projection{rawIdx: true, logFileIdx: true}
	effective := effectiveProjection(cf, proj)
	assert.False(t, effective[rawIdx])
	assert.True(t, effective[logFileIdx])

	// Requesting both keeps timestamp_raw.
	proj = Projection{tsIdx: true, rawIdx: true}
	effective = effectiveProjection(cf, proj)
	assert.True(t, effective[rawIdx])
}

func TestEffectiveProjection_NilMeansAllColumns(t *testing.T) {
	cf, err := Compile(CommonFormat, false)
	require.NoError(t, err)
	assert.Nil(t, effectiveProjection(cf, nil))
}

func TestMaterializeRow_ProjectionSkipsUnrequestedColumns(t *testing.T) {
	cf, err := Compile(CommonFormat, false)
	require.NoError(t, err)

	line := `127.0.0.1 - frank [10/Oct/2023:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326`
	captures, ok := Recognize(cf, line)
	require.True(t, ok)

	statusIdx := colIndex(cf, "status")
	proj := Projection{statusIdx: true}

	w := newFakeRowWriter()
	MaterializeRow(cf, w, proj, captures, "access.log", 1, line, false)

	assert.Equal(t, int32(200), w.int32s[statusIdx])
	_, wrote := w.strings[colIndex(cf, "client_host")]
	assert.False(t, wrote)
}
