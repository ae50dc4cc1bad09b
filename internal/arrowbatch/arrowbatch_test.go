package arrowbatch

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basekick-labs/httpdlog/internal/httpdlog"
)

func TestWriter_BuildsRecordWithAllColumns(t *testing.T) {
	columns := []httpdlog.Column{
		{Name: "client_host", Type: httpdlog.TypeString},
		{Name: "status", Type: httpdlog.TypeInt32},
		{Name: "bytes", Type: httpdlog.TypeInt64},
		{Name: "parse_error", Type: httpdlog.TypeBool},
		{Name: "timestamp", Type: httpdlog.TypeTimestamp},
	}

	var gotPath string
	var gotRecord arrow.Record
	flush := func(path string, record arrow.Record) error {
		gotPath = path
		gotRecord = record
		return nil
	}

	w := NewWriter("access.log", columns, nil, flush)
	w.WriteString(0, "127.0.0.1", false)
	w.WriteInt32(1, 200, false)
	w.WriteInt64(2, 2326, false)
	w.WriteBool(3, false, false)
	w.WriteTimestamp(4, 1_000_000, false)

	require.NoError(t, w.Close())
	defer gotRecord.Release()

	assert.Equal(t, "access.log", gotPath)
	require.NotNil(t, gotRecord)
	assert.Equal(t, int64(1), gotRecord.NumRows())
	assert.Equal(t, int64(5), gotRecord.NumCols())
}

func TestWriter_ProjectionOmitsColumns(t *testing.T) {
	columns := []httpdlog.Column{
		{Name: "client_host", Type: httpdlog.TypeString},
		{Name: "status", Type: httpdlog.TypeInt32},
	}
	proj := httpdlog.Projection{1: true}

	var gotRecord arrow.Record
	flush := func(path string, record arrow.Record) error {
		gotRecord = record
		return nil
	}

	w := NewWriter("access.log", columns, proj, flush)
	w.WriteInt32(1, 404, false)
	// column 0 is not projected; writes to it must be silently dropped.
	w.WriteString(0, "ignored", false)

	require.NoError(t, w.Close())
	defer gotRecord.Release()

	assert.Equal(t, int64(1), gotRecord.NumCols())
	assert.Equal(t, "status", gotRecord.ColumnName(0))
}

func TestWriter_NullValues(t *testing.T) {
	columns := []httpdlog.Column{{Name: "status", Type: httpdlog.TypeInt32}}

	var gotRecord arrow.Record
	flush := func(path string, record arrow.Record) error {
		gotRecord = record
		return nil
	}

	w := NewWriter("access.log", columns, nil, flush)
	w.WriteInt32(0, 0, true)

	require.NoError(t, w.Close())
	defer gotRecord.Release()

	assert.True(t, gotRecord.Column(0).IsNull(0))
}

func TestWriter_NilFlushDiscardsRecord(t *testing.T) {
	columns := []httpdlog.Column{{Name: "status", Type: httpdlog.TypeInt32}}
	w := NewWriter("access.log", columns, nil, nil)
	w.WriteInt32(0, 1, false)
	assert.NoError(t, w.Close())
}

func TestSpillToParquet_ProducesNonEmptyBytes(t *testing.T) {
	columns := []httpdlog.Column{
		{Name: "status", Type: httpdlog.TypeInt32},
		{Name: "client_host", Type: httpdlog.TypeString},
	}

	var captured arrow.Record
	flush := func(path string, record arrow.Record) error {
		record.Retain()
		captured = record
		return nil
	}

	w := NewWriter("access.log", columns, nil, flush)
	w.WriteInt32(0, 200, false)
	w.WriteString(1, "127.0.0.1", false)
	require.NoError(t, w.Close())

	data, err := SpillToParquet(captured)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// Parquet files start with the magic bytes "PAR1".
	assert.Equal(t, "PAR1", string(data[:4]))
}
