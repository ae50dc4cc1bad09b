package httpdlog

// applyRequestDecomposition implements §4.2 Request-line decomposition:
// individual directives always beat the %r-family decomposition of the
// same sub-value, so presence of %m / any %U variant / %q / %H anywhere in
// the format sets the matching skip_* flag on every request field.
func applyRequestDecomposition(fields []FormatField) {
	hasMethod, hasPath, hasQuery, hasProtocol := false, false, false, false
	for _, f := range fields {
		switch f.DirectiveTag {
		case "%m":
			hasMethod = true
		case "%>U", "%U", "%<U":
			hasPath = true
		case "%q":
			hasQuery = true
		case "%H":
			hasProtocol = true
		}
	}
	if !hasMethod && !hasPath && !hasQuery && !hasProtocol {
		return
	}
	for i := range fields {
		f := &fields[i]
		if !f.IsRequestField {
			continue
		}
		f.SkipMethod = hasMethod
		f.SkipPath = hasPath
		f.SkipQueryString = hasQuery
		f.SkipProtocol = hasProtocol
	}
}
