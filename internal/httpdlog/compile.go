package httpdlog

// CommonFormat and CombinedFormat are the built-in LogFormat shortcuts
// described in §6.
const (
	CommonFormat   = `%h %l %u %t "%r" %>s %b`
	CombinedFormat = `%h %l %u %t "%r" %>s %b "%{Referer}i" "%{User-agent}i"`
)

// Compile implements §4.2: turn a LogFormat directive string into a
// CompiledFormat — schema, regex and materialization plan — applying
// collision resolution and timestamp grouping. rawMode controls whether the
// Schema Emitter appends the raw-mode metadata/diagnostic columns (§4.3).
func Compile(format string, rawMode bool) (*CompiledFormat, error) {
	fields, segments, err := tokenize(format)
	if err != nil {
		return nil, err
	}

	arbitrateDuration(fields)
	arbitrateBytes(fields)
	arbitratePidPort(fields)

	groups := groupTimestamps(fields)
	nameTimestampGroups(groups)

	applyRequestDecomposition(fields)
	resolveCollisions(fields)
	dedupeFinalNames(fields, groups)

	regex, numCaptures, err := buildRegex(segments, fields)
	if err != nil {
		return nil, invalidFormat(format, "%v", err.Error())
	}

	columns, plan := emitSchema(fields, groups, rawMode)

	return &CompiledFormat{
		FormatString:    format,
		Fields:          fields,
		TimestampGroups: groups,
		Regex:           regex,
		NumCaptures:     numCaptures,
		Columns:         columns,
		Plan:            plan,
		RawMode:         rawMode,
	}, nil
}
