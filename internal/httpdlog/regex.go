package httpdlog

import (
	"regexp"
	"strings"
)

// buildRegex implements §4.2 Regex generation: walk the format string in
// parallel with the field list, producing a single anchored full-match
// regex. Every %t field contributes a capturing group regardless of
// should_skip (timestamp groups need all components); every other field
// contributes a capturing group unless should_skip, in which case it is
// wrapped non-capturing.
func buildRegex(segments []segment, fields []FormatField) (*regexp.Regexp, int, error) {
	var pattern strings.Builder
	pattern.WriteString("^")
	captureCount := 0

	for _, seg := range segments {
		if !seg.isField {
			pattern.WriteString(escapeLiteral(seg.literal))
			continue
		}
		f := &fields[seg.fieldIndex]
		if f.IsTimestamp {
			captureCount++
			f.CaptureIndex = captureCount
			f.HasCapture = true
			pattern.WriteString("(")
			pattern.WriteString(timestampCapturePattern(*f))
			pattern.WriteString(")")
			continue
		}

		inner := `\S+`
		if f.IsQuoted {
			inner = `[^"]*`
		}
		if f.ShouldSkip {
			f.HasCapture = false
			f.CaptureIndex = 0
			pattern.WriteString("(?:")
			pattern.WriteString(inner)
			pattern.WriteString(")")
			continue
		}
		captureCount++
		f.CaptureIndex = captureCount
		f.HasCapture = true
		pattern.WriteString("(")
		pattern.WriteString(inner)
		pattern.WriteString(")")
	}
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, 0, invalidFormat("", "generated pattern %q does not compile: %v", pattern.String(), err)
	}
	return re, captureCount, nil
}

func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' }

var regexMeta = map[byte]bool{
	'.': true, '*': true, '+': true, '?': true, '(': true, ')': true,
	'[': true, ']': true, '{': true, '}': true, '^': true, '$': true,
	'|': true, '\\': true,
}

// escapeLiteral turns a literal run of a LogFormat string into a regex
// fragment: whitespace runs collapse to \s+, other metacharacters are
// escaped.
func escapeLiteral(text string) string {
	var b strings.Builder
	i := 0
	for i < len(text) {
		if isSpaceByte(text[i]) {
			j := i
			for j < len(text) && isSpaceByte(text[j]) {
				j++
			}
			b.WriteString(`\s+`)
			i = j
			continue
		}
		c := text[i]
		if regexMeta[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// timestampCapturePattern sizes a %t field's capture per §4.2: a bracketed
// Apache-default timestamp, a run of digits for epoch forms, fixed-width
// digits for fractional components, or a strftime-derived pattern.
func timestampCapturePattern(f FormatField) string {
	switch f.TimestampType {
	case TimestampApacheDefault:
		return `\[[^\]]+\]`
	case TimestampEpochSec, TimestampEpochMsec, TimestampEpochUsec:
		return `\d+`
	case TimestampFracMsec:
		return `\d{3}`
	case TimestampFracUsec:
		return `\d{6}`
	case TimestampStrftime:
		return strftimeToRegex(f.StrftimeFormat)
	default:
		return `\S+`
	}
}

// strftimeToRegex translates the minimum strftime specifier set required by
// §4.2 into a regex fragment. Locale-dependent or exotic specifiers are
// implementation-defined-but-deterministic per design note (b): unknown
// specifiers degrade to a literal match of the specifier letter.
func strftimeToRegex(format string) string {
	var b strings.Builder
	i := 0
	for i < len(format) {
		if format[i] == '%' && i+1 < len(format) {
			spec := format[i+1]
			i += 2
			switch spec {
			case 'Y':
				b.WriteString(`\d{4}`)
			case 'y':
				b.WriteString(`\d{2}`)
			case 'm':
				b.WriteString(`\d{2}`)
			case 'd':
				b.WriteString(`\d{2}`)
			case 'e':
				b.WriteString(`[ \d]\d`)
			case 'b', 'h':
				b.WriteString(`[A-Za-z]{3}`)
			case 'B':
				b.WriteString(`[A-Za-z]+`)
			case 'H':
				b.WriteString(`\d{2}`)
			case 'I':
				b.WriteString(`\d{2}`)
			case 'M':
				b.WriteString(`\d{2}`)
			case 'S':
				b.WriteString(`\d{2}`)
			case 'T':
				b.WriteString(`\d{2}:\d{2}:\d{2}`)
			case 'R':
				b.WriteString(`\d{2}:\d{2}`)
			case 'z':
				b.WriteString(`[+-]\d{4}`)
			case 'Z':
				b.WriteString(`[A-Za-z]+`)
			case 'j':
				b.WriteString(`\d{3}`)
			case 'a':
				b.WriteString(`[A-Za-z]{3}`)
			case 'A':
				b.WriteString(`[A-Za-z]+`)
			case 'p':
				b.WriteString(`[AP]M`)
			case 'f':
				b.WriteString(`\d+`)
			case '%':
				b.WriteString(`%`)
			default:
				b.WriteString(regexp.QuoteMeta(string(spec)))
			}
			continue
		}
		c := format[i]
		if regexMeta[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}
