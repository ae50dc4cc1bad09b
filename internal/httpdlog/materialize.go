package httpdlog

import "strings"

// RowWriter is the host's column-writer abstraction (§4.5): one typed
// append method per logical type, called once per emitted, projected
// column for every row — including parse_error rows in raw mode, which
// still contribute a row: numeric/timestamp/bool columns go NULL, string
// columns get an empty non-NULL value.
type RowWriter interface {
	WriteString(col int, value string, isNull bool)
	WriteInt32(col int, value int32, isNull bool)
	WriteInt64(col int, value int64, isNull bool)
	WriteBool(col int, value bool, isNull bool)
	WriteTimestamp(col int, micros int64, isNull bool)
}

// Projection selects which of a CompiledFormat's Columns (by index) a scan
// actually wants written. A nil Projection means "all columns".
type Projection map[int]bool

// effectiveProjection applies design note (d): a timestamp_raw column is
// only emitted when its paired timestamp column is also requested. It
// never mutates proj; nil (unrestricted) short-circuits to nil.
func effectiveProjection(cf *CompiledFormat, proj Projection) Projection {
	if proj == nil {
		return nil
	}
	timestampRequested := map[string]bool{}
	for i, c := range cf.Columns {
		if proj[i] && !strings.HasSuffix(c.Name, "_raw") {
			timestampRequested[c.Name] = true
		}
	}
	out := make(Projection, len(proj))
	for i, want := range proj {
		if !want {
			continue
		}
		rule := cf.Plan[i]
		if rule.Kind == RuleTimestampRaw {
			base := strings.TrimSuffix(rule.Column.Name, "_raw")
			if !timestampRequested[base] {
				continue
			}
		}
		out[i] = true
	}
	return out
}

// MaterializeRow implements §4.5 Row materialization for one recognized
// line: walk the plan, convert each requested column's capture(s), and
// write it. lineNumber/logFile/rawLine feed the metadata columns (§4.3);
// parseError marks a whole-line regex miss, in which case captures is nil.
// On a parse failure, numeric/timestamp/bool columns go NULL but string
// columns write an empty, non-NULL value, matching the original table
// function's FlatVector::SetNull behavior (VARCHAR columns excluded).
func MaterializeRow(cf *CompiledFormat, writer RowWriter, proj Projection, captures []string, logFile string, lineNumber int64, rawLine string, parseError bool) {
	proj = effectiveProjection(cf, proj)

	capture := func(idx int) string {
		if parseError || idx <= 0 || idx >= len(captures) {
			return ""
		}
		return captures[idx]
	}

	for i, rule := range cf.Plan {
		if proj != nil && !proj[i] {
			continue
		}
		writeColumn(writer, i, rule, capture, parseError, logFile, lineNumber, rawLine)
	}
}

func writeColumn(w RowWriter, col int, rule MaterializationRule, capture func(int) string, parseError bool, logFile string, lineNumber int64, rawLine string) {
	switch rule.Kind {
	case RuleString:
		if parseError {
			w.WriteString(col, "", false)
			break
		}
		v, null := ConvertString(capture(rule.CaptureIndex))
		w.WriteString(col, v, null)
	case RuleConnectionStatus:
		if parseError {
			w.WriteString(col, "", false)
			break
		}
		v, null := ConvertConnectionStatus(capture(rule.CaptureIndex))
		w.WriteString(col, v, null)
	case RuleInt32:
		v, null := ConvertInt32(capture(rule.CaptureIndex))
		w.WriteInt32(col, v, null || parseError)
	case RuleInt64:
		v, null := ConvertInt64(capture(rule.CaptureIndex))
		w.WriteInt64(col, v, null || parseError)
	case RuleInt64Bytes:
		v, null := ConvertInt64Bytes(capture(rule.CaptureIndex))
		w.WriteInt64(col, v, null || parseError)
	case RuleIntervalMicros:
		v, null := ConvertIntervalMicros(capture(rule.CaptureIndex))
		w.WriteInt64(col, v, null || parseError)
	case RuleIntervalScaled:
		v, null := ConvertIntervalScaled(capture(rule.CaptureIndex), rule.DurationUnit)
		w.WriteInt64(col, v, null || parseError)
	case RuleRequestMethod, RuleRequestPath, RuleRequestQueryString, RuleRequestProtocol:
		writeRequestSubColumn(w, col, rule, capture(rule.CaptureIndex), parseError)
	case RuleTimestamp:
		writeTimestampColumn(w, col, rule, capture, parseError)
	case RuleTimestampRaw:
		raw := rawTimestampText(rule, capture)
		w.WriteString(col, raw, raw == "" || parseError)
	case RuleMetaLogFile:
		w.WriteString(col, logFile, false)
	case RuleMetaLineNumber:
		w.WriteInt64(col, lineNumber, false)
	case RuleMetaParseError:
		w.WriteBool(col, parseError, false)
	case RuleMetaRawLine:
		if !parseError {
			w.WriteString(col, "", true)
			break
		}
		w.WriteString(col, sanitizeUTF8(rawLine), false)
	}
}

func writeRequestSubColumn(w RowWriter, col int, rule MaterializationRule, raw string, parseError bool) {
	if parseError {
		w.WriteString(col, "", false)
		return
	}
	parts := SplitRequestLine(raw)
	switch rule.Kind {
	case RuleRequestMethod:
		w.WriteString(col, parts.Method, !parts.Ok)
	case RuleRequestPath:
		w.WriteString(col, parts.Path, !parts.Ok)
	case RuleRequestQueryString:
		w.WriteString(col, parts.QueryString, !parts.Ok || parts.QueryStringNull)
	case RuleRequestProtocol:
		w.WriteString(col, parts.Protocol, !parts.Ok)
	}
}

func writeTimestampColumn(w RowWriter, col int, rule MaterializationRule, capture func(int) string, parseError bool) {
	if parseError {
		w.WriteTimestamp(col, 0, true)
		return
	}
	micros, ok := CombineTimestampGroup(rule.TimestampFields, capture)
	w.WriteTimestamp(col, micros, !ok)
}

// rawTimestampText reconstructs the original captured text of a timestamp
// group for its _raw companion column, joining multi-field groups with a
// single space (mirroring how they appear adjacently in the format string).
func rawTimestampText(rule MaterializationRule, capture func(int) string) string {
	parts := make([]string, 0, len(rule.TimestampFields))
	for _, f := range rule.TimestampFields {
		parts = append(parts, capture(f.CaptureIndex))
	}
	return strings.Join(parts, " ")
}
