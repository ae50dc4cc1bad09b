package httpdlog

// arbitrateDuration implements §4.2 Duration arbitration: among fields that
// resolve to the same column name, keep the one with highest precision and
// mark the rest should_skip.
func arbitrateDuration(fields []FormatField) {
	best := map[string]int{} // column name -> field index of current best
	for i := range fields {
		f := &fields[i]
		if !f.IsDuration {
			continue
		}
		bi, ok := best[f.ColumnName]
		if !ok {
			best[f.ColumnName] = i
			continue
		}
		if f.DurationPrecision > fields[bi].DurationPrecision {
			fields[bi].ShouldSkip = true
			best[f.ColumnName] = i
		} else {
			f.ShouldSkip = true
		}
	}
}

// arbitrateBytes implements §4.2 Bytes arbitration: %b and %B share the
// column "bytes"; the first occurrence wins, later ones are skipped. Every
// surviving bytes-family field is flagged so the Value Converter applies
// the CLF "-"→0 rule instead of the general "-"→NULL rule.
func arbitrateBytes(fields []FormatField) {
	seen := false
	for i := range fields {
		f := &fields[i]
		if !f.IsBytesColumn {
			continue
		}
		if seen {
			f.ShouldSkip = true
			continue
		}
		seen = true
	}
}

// arbitratePidPort implements §4.2: within process_id collisions, a bare %P
// beats %{pid}P; within server_port, a bare %p beats %{canonical}p.
func arbitratePidPort(fields []FormatField) {
	arbitrateBarePreferred(fields, "process_id", "%P", "%{pid}P")
	arbitrateBarePreferred(fields, "server_port", "%p", "%{canonical}p")
}

func arbitrateBarePreferred(fields []FormatField, column, bareTag, modifierTag string) {
	bareIdx, modIdx := -1, -1
	for i := range fields {
		f := &fields[i]
		if f.ShouldSkip || f.ColumnName != column {
			continue
		}
		switch f.DirectiveTag {
		case bareTag:
			if bareIdx == -1 {
				bareIdx = i
			}
		case modifierTag:
			if modIdx == -1 {
				modIdx = i
			}
		}
	}
	if bareIdx != -1 && modIdx != -1 {
		fields[modIdx].ShouldSkip = true
	}
}
