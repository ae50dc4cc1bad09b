package httpdlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertString(t *testing.T) {
	v, null := ConvertString("frank")
	assert.Equal(t, "frank", v)
	assert.False(t, null)

	_, null = ConvertString("-")
	assert.True(t, null)
}

func TestConvertConnectionStatus(t *testing.T) {
	cases := map[string]string{
		"X": "aborted",
		"+": "keepalive",
		"-": "close",
	}
	for in, want := range cases {
		v, null := ConvertConnectionStatus(in)
		assert.Equal(t, want, v)
		assert.False(t, null)
	}
}

func TestConvertInt32(t *testing.T) {
	v, null := ConvertInt32("200")
	assert.Equal(t, int32(200), v)
	assert.False(t, null)

	_, null = ConvertInt32("-")
	assert.True(t, null)

	_, null = ConvertInt32("not-a-number")
	assert.True(t, null)
}

func TestConvertInt64Bytes(t *testing.T) {
	v, null := ConvertInt64Bytes("-")
	assert.Equal(t, int64(0), v)
	assert.False(t, null, "the CLF bytes rule maps \"-\" to 0, not NULL")

	v, null = ConvertInt64Bytes("2326")
	assert.Equal(t, int64(2326), v)
	assert.False(t, null)

	_, null = ConvertInt64Bytes("garbage")
	assert.True(t, null)
}

func TestConvertIntervalScaled(t *testing.T) {
	v, null := ConvertIntervalScaled("2", "")
	assert.Equal(t, int64(2_000_000), v)
	assert.False(t, null)

	v, _ = ConvertIntervalScaled("2", "ms")
	assert.Equal(t, int64(2_000), v)

	v, _ = ConvertIntervalScaled("2", "us")
	assert.Equal(t, int64(2), v)
}

func TestSplitRequestLine(t *testing.T) {
	parts := SplitRequestLine("GET /apache_pb.gif?x=1 HTTP/1.0")
	assert.True(t, parts.Ok)
	assert.Equal(t, "GET", parts.Method)
	assert.Equal(t, "/apache_pb.gif", parts.Path)
	assert.Equal(t, "?x=1", parts.QueryString)
	assert.False(t, parts.QueryStringNull)
	assert.Equal(t, "HTTP/1.0", parts.Protocol)
}

func TestSplitRequestLine_NoQueryString(t *testing.T) {
	parts := SplitRequestLine("GET /apache_pb.gif HTTP/1.0")
	assert.True(t, parts.Ok)
	assert.True(t, parts.QueryStringNull)
}

func TestSplitRequestLine_Malformed(t *testing.T) {
	parts := SplitRequestLine("not a valid request line at all")
	assert.False(t, parts.Ok)
	assert.True(t, parts.QueryStringNull)
}

func TestCombineTimestampGroup_ApacheDefault(t *testing.T) {
	fields := []FormatField{{TimestampType: TimestampApacheDefault, CaptureIndex: 1}}
	capture := func(idx int) string { return "[10/Oct/2023:13:55:36 -0700]" }

	micros, ok := CombineTimestampGroup(fields, capture)
	assert.True(t, ok)
	assert.NotZero(t, micros)
}

func TestCombineTimestampGroup_EpochSecPlusFracMsec(t *testing.T) {
	fields := []FormatField{
		{TimestampType: TimestampEpochSec, CaptureIndex: 1},
		{TimestampType: TimestampFracMsec, CaptureIndex: 2},
	}
	values := map[int]string{1: "1000000000", 2: "500"}
	capture := func(idx int) string { return values[idx] }

	micros, ok := CombineTimestampGroup(fields, capture)
	assert.True(t, ok)
	assert.Equal(t, int64(1_000_000_000)*1_000_000+500_000, micros)
}

func TestCombineTimestampGroup_UnparsableBaseIsNull(t *testing.T) {
	fields := []FormatField{{TimestampType: TimestampApacheDefault, CaptureIndex: 1}}
	capture := func(idx int) string { return "not a timestamp" }

	_, ok := CombineTimestampGroup(fields, capture)
	assert.False(t, ok)
}

func TestCombineTimestampGroup_Strftime(t *testing.T) {
	fields := []FormatField{{TimestampType: TimestampStrftime, StrftimeFormat: "%Y-%m-%d %H:%M:%S", CaptureIndex: 1}}
	capture := func(idx int) string { return "2023-10-10 13:55:36" }

	micros, ok := CombineTimestampGroup(fields, capture)
	assert.True(t, ok)
	assert.NotZero(t, micros)
}

func TestCombineTimestampGroup_UnsupportedStrftimeSpecifierIsNull(t *testing.T) {
	fields := []FormatField{{TimestampType: TimestampStrftime, StrftimeFormat: "%j", CaptureIndex: 1}}
	capture := func(idx int) string { return "123" }

	_, ok := CombineTimestampGroup(fields, capture)
	assert.False(t, ok)
}
