package httpdlog

import (
	"fmt"
	"sort"
)

// resolveCollisions implements §4.2 General collision resolution over every
// non-skipped, non-timestamp field (duration/bytes/pid-port arbitration and
// timestamp grouping have already run and produced their own should_skip
// decisions). Fields are grouped by their default/registry column name; a
// group of size one is left untouched.
func resolveCollisions(fields []FormatField) {
	groups := map[string][]int{}
	for i, f := range fields {
		if f.ShouldSkip || f.IsTimestamp {
			continue
		}
		groups[f.ColumnName] = append(groups[f.ColumnName], i)
	}

	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		if sameDirectiveAndModifier(fields, idxs) {
			for k, i := range idxs {
				applySuffix(&fields[i], sequentialSuffix(k))
			}
			continue
		}
		sort.SliceStable(idxs, func(a, b int) bool {
			return fields[idxs[a]].CollisionPriority < fields[idxs[b]].CollisionPriority
		})
		for k, i := range idxs {
			if k == 0 {
				applySuffix(&fields[i], "")
				continue
			}
			applySuffix(&fields[i], fields[i].CollisionSuffix)
		}
	}
}

func sameDirectiveAndModifier(fields []FormatField, idxs []int) bool {
	first := fields[idxs[0]]
	for _, i := range idxs[1:] {
		f := fields[i]
		if first.IsHeaderField || f.IsHeaderField {
			if first.HeaderKind != f.HeaderKind || first.HeaderName != f.HeaderName {
				return false
			}
			continue
		}
		if first.DirectiveTag != f.DirectiveTag {
			return false
		}
	}
	return true
}

func sequentialSuffix(position int) string {
	if position == 0 {
		return ""
	}
	return fmt.Sprintf("_%d", position+1)
}

// applySuffix folds a resolved collision suffix into the field's emitted
// name(s): request-line fields keep their virtual "request" ColumnName and
// carry the suffix separately so the Schema Emitter can apply it to each
// decomposed sub-column; every other field gets it folded directly in.
func applySuffix(f *FormatField, suffix string) {
	if f.IsRequestField {
		f.FinalSuffix = suffix
		return
	}
	f.ColumnName = f.ColumnName + suffix
}

// dedupeFinalNames is a safety net for the "if suffixed names themselves
// collide, append _2, _3, ..." rule: scalar/header columns and timestamp
// groups share one namespace, checked in field order.
func dedupeFinalNames(fields []FormatField, groups []TimestampGroup) {
	seen := map[string]int{}
	for i := range fields {
		f := &fields[i]
		if f.ShouldSkip {
			continue
		}
		if f.IsTimestamp {
			g := &groups[f.GroupID]
			g.ColumnName = uniqueName(seen, g.ColumnName)
			continue
		}
		if f.IsRequestField {
			continue
		}
		f.ColumnName = uniqueName(seen, f.ColumnName)
	}
}

func uniqueName(seen map[string]int, base string) string {
	count := seen[base]
	seen[base] = count + 1
	if count == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, count+1)
}
