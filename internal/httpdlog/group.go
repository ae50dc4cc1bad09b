package httpdlog

import "fmt"

// groupTimestamps implements §4.2 Timestamp grouping: walk fields
// left-to-right, opening a new group on each run of %t fields sharing
// begin/end polarity. A non-%t field, or a polarity switch, closes the
// current group. Within a group only the first field emits a column; the
// rest are should_skip.
func groupTimestamps(fields []FormatField) []TimestampGroup {
	var groups []TimestampGroup
	active := -1

	for i := range fields {
		f := &fields[i]
		f.GroupID = -1
		if !f.IsTimestamp {
			active = -1
			continue
		}
		if active != -1 {
			g := groups[active]
			lastFieldIdx := g.FieldIndices[len(g.FieldIndices)-1]
			if lastFieldIdx == i-1 && g.IsEndTimestamp == f.IsEndTimestamp {
				groups[active].FieldIndices = append(groups[active].FieldIndices, i)
				f.GroupID = active
				continue
			}
		}
		groups = append(groups, TimestampGroup{FieldIndices: []int{i}, IsEndTimestamp: f.IsEndTimestamp})
		active = len(groups) - 1
		f.GroupID = active
	}

	for gi := range groups {
		idxs := groups[gi].FieldIndices
		for k, fi := range idxs {
			if k > 0 {
				fields[fi].ShouldSkip = true
			}
		}
	}
	return groups
}

// nameTimestampGroups implements the canonical-name rule: when both a
// begin-group and an end-group exist, the end-group(s) own "timestamp" and
// the begin-group(s) are renamed "timestamp_original". With only one
// polarity present, that polarity owns "timestamp". Multiple groups of the
// same polarity get "_2", "_3", ... suffixes in appearance order.
func nameTimestampGroups(groups []TimestampGroup) {
	var beginIdx, endIdx []int
	for i, g := range groups {
		if g.IsEndTimestamp {
			endIdx = append(endIdx, i)
		} else {
			beginIdx = append(beginIdx, i)
		}
	}
	if len(endIdx) > 0 {
		nameGroupSequence(groups, endIdx, "timestamp")
		nameGroupSequence(groups, beginIdx, "timestamp_original")
	} else {
		nameGroupSequence(groups, beginIdx, "timestamp")
	}
}

func nameGroupSequence(groups []TimestampGroup, idxs []int, base string) {
	for k, gi := range idxs {
		name := base
		if k > 0 {
			name = fmt.Sprintf("%s_%d", base, k+1)
		}
		groups[gi].ColumnName = name
	}
}
