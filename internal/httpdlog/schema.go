package httpdlog

import "strings"

// emitSchema implements §4.3 Schema Emitter: walk the field list, skip
// should_skip fields, expand %t groups and %r decomposition, then append
// metadata columns. Returns the schema and the parallel materialization
// plan — one rule per emitted column (invariant, §3).
func emitSchema(fields []FormatField, groups []TimestampGroup, rawMode bool) ([]Column, []MaterializationRule) {
	var columns []Column
	var plan []MaterializationRule

	for i := range fields {
		f := &fields[i]
		if f.ShouldSkip {
			continue
		}
		switch {
		case f.IsTimestamp:
			g := groups[f.GroupID]
			groupFields := collectGroupFields(fields, g)

			col := Column{Name: g.ColumnName, Type: TypeTimestamp}
			columns = append(columns, col)
			plan = append(plan, MaterializationRule{Column: col, Kind: RuleTimestamp, TimestampFields: groupFields})

			if rawMode {
				rawCol := Column{Name: g.ColumnName + "_raw", Type: TypeString}
				columns = append(columns, rawCol)
				plan = append(plan, MaterializationRule{Column: rawCol, Kind: RuleTimestampRaw, TimestampFields: groupFields})
			}
		case f.IsRequestField:
			addRequestColumns(&columns, &plan, f)
		default:
			col := Column{Name: f.ColumnName, Type: f.LogicalType}
			columns = append(columns, col)
			plan = append(plan, MaterializationRule{
				Column:       col,
				Kind:         ruleKindFor(f),
				CaptureIndex: f.CaptureIndex,
				DurationUnit: f.DurationUnit,
			})
		}
	}

	appendMetadataColumns(&columns, &plan, rawMode)
	return columns, plan
}

func collectGroupFields(fields []FormatField, g TimestampGroup) []FormatField {
	out := make([]FormatField, 0, len(g.FieldIndices))
	for _, idx := range g.FieldIndices {
		out = append(out, fields[idx])
	}
	return out
}

func addRequestColumns(columns *[]Column, plan *[]MaterializationRule, f *FormatField) {
	type sub struct {
		base string
		skip bool
		kind RuleKind
	}
	subs := []sub{
		{"method", f.SkipMethod, RuleRequestMethod},
		{"path", f.SkipPath, RuleRequestPath},
		{"query_string", f.SkipQueryString, RuleRequestQueryString},
		{"protocol", f.SkipProtocol, RuleRequestProtocol},
	}
	for _, s := range subs {
		if s.skip {
			continue
		}
		col := Column{Name: s.base + f.FinalSuffix, Type: TypeString}
		*columns = append(*columns, col)
		*plan = append(*plan, MaterializationRule{Column: col, Kind: s.kind, CaptureIndex: f.CaptureIndex})
	}
}

func ruleKindFor(f *FormatField) RuleKind {
	switch f.LogicalType {
	case TypeString:
		if f.DirectiveTag == "%X" {
			return RuleConnectionStatus
		}
		return RuleString
	case TypeInt32:
		return RuleInt32
	case TypeInt64:
		if f.IsBytesColumn || bytesColumnNames[f.ColumnName] {
			return RuleInt64Bytes
		}
		return RuleInt64
	case TypeInterval:
		if strings.Contains(f.DirectiveTag, "D") {
			return RuleIntervalMicros
		}
		return RuleIntervalScaled
	default:
		return RuleString
	}
}

func appendMetadataColumns(columns *[]Column, plan *[]MaterializationRule, rawMode bool) {
	logFile := Column{Name: "log_file", Type: TypeString}
	*columns = append(*columns, logFile)
	*plan = append(*plan, MaterializationRule{Column: logFile, Kind: RuleMetaLogFile})

	if !rawMode {
		return
	}
	meta := []struct {
		col  Column
		kind RuleKind
	}{
		{Column{Name: "line_number", Type: TypeInt64}, RuleMetaLineNumber},
		{Column{Name: "parse_error", Type: TypeBool}, RuleMetaParseError},
		{Column{Name: "raw_line", Type: TypeString}, RuleMetaRawLine},
	}
	for _, m := range meta {
		*columns = append(*columns, m.col)
		*plan = append(*plan, MaterializationRule{Column: m.col, Kind: m.kind})
	}
}
