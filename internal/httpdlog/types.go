package httpdlog

import "regexp"

// TimestampType classifies how a %t field's value is represented on the
// line, per §3.
type TimestampType int

const (
	TimestampApacheDefault TimestampType = iota
	TimestampEpochSec
	TimestampEpochMsec
	TimestampEpochUsec
	TimestampFracMsec
	TimestampFracUsec
	TimestampStrftime
)

// Column is an emitted (name, type) pair, the unit the Schema Emitter
// produces and the host's column writer consumes.
type Column struct {
	Name string
	Type LogicalType
}

// FormatField is a single compiled directive occurrence within a LogFormat
// string, per §3.
type FormatField struct {
	DirectiveTag string // canonical registry tag, e.g. "%h", "%>s"; empty for header-derived fields
	RawToken     string // the directive text as it appeared in the format string
	Modifier     string
	ColumnName   string
	LogicalType  LogicalType
	IsQuoted     bool
	ShouldSkip   bool

	// Request-line decomposition (%r, %>r, %<r).
	IsRequestField   bool
	SkipMethod       bool
	SkipPath         bool
	SkipQueryString  bool
	SkipProtocol     bool

	// Timestamp fields (%t).
	IsTimestamp    bool
	TimestampType  TimestampType
	StrftimeFormat string
	IsEndTimestamp bool
	GroupID        int // index into CompiledFormat.TimestampGroups, -1 if ungrouped

	// Duration fields (%D, %T families).
	IsDuration        bool
	DurationUnit      string // "", "s", "ms", "us" — modifier on %T; %D is always µs
	DurationPrecision int    // higher wins arbitration

	// Bytes fields (%b, %B) and any column eligible for the CLF bytes rule.
	IsBytesColumn bool

	// Header-derived fields (%{Name}i/o/C/e/n/^ti/^to).
	IsHeaderField bool
	HeaderKind    headerKind
	HeaderName    string

	// Regex wiring.
	HasCapture   bool // true if this field consumes a capturing group at all
	CaptureIndex int  // 1-based index into regexp submatches; 0 if HasCapture is false

	// Collision bookkeeping, resolved before the field is exposed further.
	CollisionPriority int
	CollisionSuffix   string

	// FinalSuffix is the resolved collision suffix for request-line fields
	// (applied to each of their decomposed sub-column names by the Schema
	// Emitter); scalar and header fields fold their suffix directly into
	// ColumnName instead.
	FinalSuffix string
}

// TimestampGroup is a maximal contiguous run of %t fields sharing begin/end
// polarity, combined into one TIMESTAMP output column per §3/§4.2.
type TimestampGroup struct {
	FieldIndices   []int // indices into CompiledFormat.Fields, in format order
	IsEndTimestamp bool
	ColumnName     string
}

// RuleKind identifies which conversion the Row Materializer applies for a
// given output column.
type RuleKind int

const (
	RuleString RuleKind = iota
	RuleConnectionStatus
	RuleInt32
	RuleInt64
	RuleInt64Bytes
	RuleIntervalMicros
	RuleIntervalScaled
	RuleRequestMethod
	RuleRequestPath
	RuleRequestQueryString
	RuleRequestProtocol
	RuleTimestamp
	RuleTimestampRaw
	RuleMetaLogFile
	RuleMetaLineNumber
	RuleMetaParseError
	RuleMetaRawLine
)

// MaterializationRule pre-bakes, for one emitted output column, exactly
// which captures it needs and how to convert them. There is exactly one
// rule per emitted column (invariant, §3).
type MaterializationRule struct {
	Column       Column
	Kind         RuleKind
	CaptureIndex int    // primary capture index; 0 (invalid) when unused
	DurationUnit string // for RuleIntervalScaled

	// Populated for RuleTimestamp/RuleTimestampRaw: the ordered fields of
	// the owning timestamp group, each carrying its own CaptureIndex,
	// TimestampType and StrftimeFormat.
	TimestampFields []FormatField
}

// CompiledFormat is the immutable result of compiling a LogFormat string:
// the ordered field list, timestamp groups, the generated regex, and the
// materialization plan the Row Materializer walks per line. Once built it
// is shared by reference across all workers of a scan and never mutated.
type CompiledFormat struct {
	FormatString    string
	Fields          []FormatField
	TimestampGroups []TimestampGroup
	Regex           *regexp.Regexp
	NumCaptures     int
	Columns         []Column
	Plan            []MaterializationRule
	RawMode         bool
}

// bytesColumnNames are the columns eligible for the CLF "-"→0 rule (§4.4);
// every other numeric column maps "-" to NULL.
var bytesColumnNames = map[string]bool{
	"bytes":             true,
	"bytes_clf":         true,
	"bytes_received":    true,
	"bytes_sent":        true,
	"bytes_transferred": true,
}
