package httpdlog

import "strings"

// segment is one piece of a LogFormat string in source order: either a run
// of literal characters (segment.isField == false) or a reference to a
// compiled directive (segment.isField == true, segment.fieldIndex valid).
type segment struct {
	isField    bool
	literal    string
	fieldIndex int
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// tokenize scans a LogFormat string left to right, per §4.2: a literal-quote
// flag toggles on every '"'; each '%' opens a directive whose shape is one
// of %X, %>X, %<X, %{MOD}X, %{MOD}^ti, %{MOD}^to, optionally preceded by a
// status-code condition which is parsed and discarded.
func tokenize(format string) ([]FormatField, []segment, error) {
	var fields []FormatField
	var segments []segment
	var literalBuf strings.Builder
	quoteOpen := false

	flushLiteral := func() {
		if literalBuf.Len() > 0 {
			segments = append(segments, segment{literal: literalBuf.String()})
			literalBuf.Reset()
		}
	}

	i := 0
	for i < len(format) {
		c := format[i]
		switch {
		case c == '"':
			literalBuf.WriteByte(c)
			quoteOpen = !quoteOpen
			i++
		case c == '%':
			flushLiteral()
			field, next, err := parseDirective(format, i)
			if err != nil {
				return nil, nil, err
			}
			field.IsQuoted = quoteOpen
			fields = append(fields, field)
			segments = append(segments, segment{isField: true, fieldIndex: len(fields) - 1})
			i = next
		default:
			literalBuf.WriteByte(c)
			i++
		}
	}
	flushLiteral()
	return fields, segments, nil
}

// parseDirective parses one directive starting at format[start] == '%' and
// returns the compiled field and the index just past it.
func parseDirective(format string, start int) (FormatField, int, error) {
	i := start + 1
	if i >= len(format) {
		return FormatField{}, i, invalidFormat(format, "dangling '%%' at end of format string")
	}

	// Status-code condition: "!?" followed by digits/commas. Parsed and
	// ignored per §3/§4.2.
	if format[i] == '!' || isDigit(format[i]) {
		if format[i] == '!' {
			i++
		}
		for i < len(format) && (isDigit(format[i]) || format[i] == ',') {
			i++
		}
	}
	if i >= len(format) {
		return FormatField{}, i, invalidFormat(format, "status-code condition not followed by a directive")
	}

	switch {
	case format[i] == '{':
		return parseModifierDirective(format, start, i)
	case format[i] == '<' || format[i] == '>':
		prefix := string(format[i])
		i++
		if i >= len(format) {
			return FormatField{}, i, invalidFormat(format, "dangling '%%%s' at end of format string", prefix)
		}
		letter := string(format[i])
		i++
		field, err := buildPrefixedField(format, prefix, letter)
		return field, i, err
	default:
		letter := string(format[i])
		i++
		field, err := buildPlainField(format, letter)
		return field, i, err
	}
}

// parseModifierDirective parses "%{MOD}" followed by either the trailer
// digraph ^ti/^to or a single letter.
func parseModifierDirective(format string, tokenStart, braceStart int) (FormatField, int, error) {
	j := braceStart + 1
	for j < len(format) && format[j] != '}' {
		j++
	}
	if j >= len(format) {
		return FormatField{}, j, invalidFormat(format, "unterminated '%%{' starting at byte %d", tokenStart)
	}
	modifier := format[braceStart+1 : j]
	i := j + 1

	if i < len(format) && format[i] == '^' {
		if i+3 <= len(format) && (format[i:i+3] == "^ti" || format[i:i+3] == "^to") {
			trailer := format[i : i+3]
			i += 3
			field, err := buildTrailerField(format, modifier, trailer)
			return field, i, err
		}
		return FormatField{}, i, invalidFormat(format, "unrecognized trailer directive after modifier %q", modifier)
	}
	if i >= len(format) {
		return FormatField{}, i, invalidFormat(format, "'%%{%s}' not followed by a directive letter", modifier)
	}
	letter := string(format[i])
	i++
	field, err := buildModifierField(format, modifier, letter)
	return field, i, err
}
