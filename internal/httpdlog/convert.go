package httpdlog

import (
	"strconv"
	"strings"
	"time"
)

// ConvertString applies the plain-STRING rule (§4.4): the CLF sentinel "-"
// becomes NULL.
func ConvertString(capture string) (string, bool) {
	if capture == "-" {
		return "", true
	}
	return sanitizeUTF8(capture), false
}

// ConvertConnectionStatus applies the %X mapping (§4.4).
func ConvertConnectionStatus(capture string) (string, bool) {
	switch capture {
	case "X":
		return "aborted", false
	case "+":
		return "keepalive", false
	case "-":
		return "close", false
	default:
		return capture, false
	}
}

// ConvertInt32 parses a general INT32 column: non-parsable or "-" -> NULL.
func ConvertInt32(capture string) (int32, bool) {
	if capture == "-" {
		return 0, true
	}
	v, err := strconv.ParseInt(capture, 10, 32)
	if err != nil {
		return 0, true
	}
	return int32(v), false
}

// ConvertInt64 parses a general INT64 column: non-parsable or "-" -> NULL.
func ConvertInt64(capture string) (int64, bool) {
	if capture == "-" {
		return 0, true
	}
	v, err := strconv.ParseInt(capture, 10, 64)
	if err != nil {
		return 0, true
	}
	return v, false
}

// ConvertInt64Bytes applies the CLF bytes rule: "-" -> 0, otherwise decimal
// or NULL on parse error.
func ConvertInt64Bytes(capture string) (int64, bool) {
	if capture == "-" {
		return 0, false
	}
	v, err := strconv.ParseInt(capture, 10, 64)
	if err != nil {
		return 0, true
	}
	return v, false
}

// ConvertIntervalMicros parses a %D-family capture: already microseconds.
func ConvertIntervalMicros(capture string) (int64, bool) {
	if capture == "-" {
		return 0, true
	}
	v, err := strconv.ParseInt(capture, 10, 64)
	if err != nil {
		return 0, true
	}
	return v, false
}

// ConvertIntervalScaled parses a %T-family capture and scales it to
// microseconds per its unit modifier: "" or "s" -> seconds, "ms", "us".
func ConvertIntervalScaled(capture, unit string) (int64, bool) {
	if capture == "-" {
		return 0, true
	}
	v, err := strconv.ParseInt(capture, 10, 64)
	if err != nil {
		return 0, true
	}
	switch unit {
	case "ms":
		return v * 1_000, false
	case "us":
		return v, false
	default: // "" or "s"
		return v * 1_000_000, false
	}
}

// RequestParts is the result of splitting a captured request line (§4.4).
type RequestParts struct {
	Method          string
	Path            string
	QueryString     string
	QueryStringNull bool
	Protocol        string
	Ok              bool
}

// SplitRequestLine splits "METHOD URL PROTOCOL" into its parts, then splits
// URL at the first '?'. A malformed request line (not exactly three
// whitespace-separated tokens) yields empty method/path/protocol and a NULL
// query_string.
func SplitRequestLine(raw string) RequestParts {
	fields := strings.Fields(raw)
	if len(fields) != 3 {
		return RequestParts{QueryStringNull: true}
	}
	method, url, protocol := fields[0], fields[1], fields[2]
	path := url
	query := ""
	hasQuery := false
	if idx := strings.IndexByte(url, '?'); idx >= 0 {
		path = url[:idx]
		query = url[idx:]
		hasQuery = true
	}
	return RequestParts{
		Method:          sanitizeUTF8(method),
		Path:            sanitizeUTF8(path),
		QueryString:     sanitizeUTF8(query),
		QueryStringNull: !hasQuery,
		Protocol:        sanitizeUTF8(protocol),
		Ok:              true,
	}
}

// parseTZOffset parses a "+HHMM"/"-HHMM" offset into signed seconds east of
// UTC.
func parseTZOffset(raw string) (int, bool) {
	if len(raw) != 5 {
		return 0, false
	}
	sign := raw[0]
	if sign != '+' && sign != '-' {
		return 0, false
	}
	hh, err1 := strconv.Atoi(raw[1:3])
	mm, err2 := strconv.Atoi(raw[3:5])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	total := hh*3600 + mm*60
	if sign == '-' {
		total = -total
	}
	return total, true
}

// parseApacheDefaultTimestamp parses the bracketed Apache default timestamp
// "[DD/Mon/YYYY:HH:MM:SS ±HHMM]" into UTC microseconds since epoch.
func parseApacheDefaultTimestamp(raw string) (int64, bool) {
	s := strings.TrimPrefix(raw, "[")
	s = strings.TrimSuffix(s, "]")
	t, err := time.Parse("02/Jan/2006:15:04:05 -0700", s)
	if err != nil {
		return 0, false
	}
	return t.UTC().UnixMicro(), true
}

// strftimeToGoLayout translates the minimum strftime specifier set into a
// Go reference-time layout. %j (day of year) and %f (fractional seconds)
// have no direct Go layout equivalent and are reported unsupported per
// design note (b); formats using either of them are left NULL rather than
// guessed at.
func strftimeToGoLayout(format string) (string, bool) {
	var b strings.Builder
	i := 0
	for i < len(format) {
		if format[i] == '%' && i+1 < len(format) {
			spec := format[i+1]
			i += 2
			switch spec {
			case 'Y':
				b.WriteString("2006")
			case 'y':
				b.WriteString("06")
			case 'm':
				b.WriteString("01")
			case 'd':
				b.WriteString("02")
			case 'e':
				b.WriteString("_2")
			case 'b', 'h':
				b.WriteString("Jan")
			case 'B':
				b.WriteString("January")
			case 'H':
				b.WriteString("15")
			case 'I':
				b.WriteString("03")
			case 'M':
				b.WriteString("04")
			case 'S':
				b.WriteString("05")
			case 'T':
				b.WriteString("15:04:05")
			case 'R':
				b.WriteString("15:04")
			case 'z':
				b.WriteString("-0700")
			case 'Z':
				b.WriteString("MST")
			case 'a':
				b.WriteString("Mon")
			case 'A':
				b.WriteString("Monday")
			case 'p':
				b.WriteString("PM")
			case '%':
				b.WriteString("%")
			case 'j', 'f':
				return "", false
			default:
				return "", false
			}
			continue
		}
		b.WriteByte(format[i])
		i++
	}
	return b.String(), true
}

// parseStrftime parses value against a strftime format via its Go layout
// translation. Per §4.4, the year must end up non-zero; out-of-range
// month/day components are rejected by time.Parse itself.
func parseStrftime(format, value string) (time.Time, bool) {
	layout, supported := strftimeToGoLayout(format)
	if !supported {
		return time.Time{}, false
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, false
	}
	if t.Year() == 0 {
		return time.Time{}, false
	}
	return t, true
}

// CombineTimestampGroup implements §4.4 Timestamp combination over a
// group's fields. capture(idx) returns the raw substring for a 1-based
// capture index.
func CombineTimestampGroup(fields []FormatField, capture func(idx int) string) (int64, bool) {
	var baseMicros int64
	baseFromStrftime := false
	haveBase := false
	var fracMicros int64
	var strftimeFields []FormatField

	for _, f := range fields {
		raw := capture(f.CaptureIndex)
		switch f.TimestampType {
		case TimestampApacheDefault:
			if !haveBase {
				if micros, ok := parseApacheDefaultTimestamp(raw); ok {
					baseMicros, haveBase = micros, true
				}
			}
		case TimestampEpochSec:
			if !haveBase {
				if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
					baseMicros, haveBase = v*1_000_000, true
				}
			}
		case TimestampEpochMsec:
			if !haveBase {
				if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
					baseMicros, haveBase = v*1_000, true
				}
			}
		case TimestampEpochUsec:
			if !haveBase {
				if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
					baseMicros, haveBase = v, true
				}
			}
		case TimestampFracMsec:
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				fracMicros += v * 1_000
			}
		case TimestampFracUsec:
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				fracMicros += v
			}
		case TimestampStrftime:
			strftimeFields = append(strftimeFields, f)
		}
	}

	if !haveBase && len(strftimeFields) > 0 {
		formats := make([]string, len(strftimeFields))
		values := make([]string, len(strftimeFields))
		for i, f := range strftimeFields {
			formats[i] = f.StrftimeFormat
			values[i] = capture(f.CaptureIndex)
		}
		if t, ok := parseStrftime(strings.Join(formats, " "), strings.Join(values, " ")); ok {
			baseMicros, haveBase, baseFromStrftime = t.UnixMicro(), true, true
		}
	}

	// Pure-%z case: a bare %z left unused because the base came from
	// elsewhere (APACHE_DEFAULT/EPOCH) is treated as a standalone offset to
	// normalize by.
	if haveBase && !baseFromStrftime && len(strftimeFields) == 1 && strftimeFields[0].StrftimeFormat == "%z" {
		if offsetSeconds, ok := parseTZOffset(capture(strftimeFields[0].CaptureIndex)); ok {
			baseMicros -= int64(offsetSeconds) * 1_000_000
		}
	}

	if !haveBase {
		return 0, false
	}
	return baseMicros + fracMicros, true
}
