package httpdlog

// Recognize implements §4.4 Line recognition: match a raw log line against
// the compiled format's regex. A miss (including a short line with fewer
// bytes than the anchors require) is reported via ok=false rather than an
// error — the caller decides whether that's a parse_error row (raw mode) or
// a skipped line.
func Recognize(cf *CompiledFormat, line string) (captures []string, ok bool) {
	m := cf.Regex.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return m, true
}
