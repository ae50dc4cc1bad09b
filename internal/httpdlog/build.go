package httpdlog

import "strings"

// prefixableLetters are the request/path/status/duration bases that accept
// a "%>" / "%<" prefix per §4.1's table.
var prefixableLetters = map[string]bool{"r": true, "U": true, "s": true, "D": true, "T": true}

func buildPrefixedField(format, prefix, letter string) (FormatField, error) {
	if !prefixableLetters[letter] {
		return FormatField{}, invalidFormat(format, "directive %%%s%s does not accept a %s prefix", prefix, letter, prefix)
	}
	tag := "%" + prefix + letter
	def, ok := lookupDirective(tag)
	if !ok {
		return FormatField{}, invalidFormat(format, "unrecognized directive %s", tag)
	}
	field := fieldFromDef(tag, tag, def)
	switch letter {
	case "r":
		field.IsRequestField = true
	case "D", "T":
		field.IsDuration = true
		field.DurationUnit = ""
		field.DurationPrecision = durationPrecision(letter, "")
	}
	return field, nil
}

func buildPlainField(format, letter string) (FormatField, error) {
	if letter == "t" {
		field := fieldFromDef("%t", "%t", directiveRegistry["%t"])
		field.IsTimestamp = true
		field.TimestampType = TimestampApacheDefault
		return field, nil
	}
	tag := "%" + letter
	def, ok := lookupDirective(tag)
	if !ok {
		return FormatField{}, invalidFormat(format, "unrecognized directive %s", tag)
	}
	field := fieldFromDef(tag, tag, def)
	switch letter {
	case "r":
		field.IsRequestField = true
	case "D", "T":
		field.IsDuration = true
		field.DurationPrecision = durationPrecision(letter, "")
	case "b", "B":
		field.IsBytesColumn = true
	}
	return field, nil
}

func buildModifierField(format, modifier, letter string) (FormatField, error) {
	rawToken := "%{" + modifier + "}" + letter
	switch letter {
	case "h":
		if modifier != "c" {
			return FormatField{}, invalidFormat(format, "unsupported modifier %q for %%h", modifier)
		}
		return fieldFromDef("%{c}h", rawToken, directiveRegistry["%{c}h"]), nil
	case "a":
		if modifier != "c" {
			return FormatField{}, invalidFormat(format, "unsupported modifier %q for %%a", modifier)
		}
		return fieldFromDef("%{c}a", rawToken, directiveRegistry["%{c}a"]), nil
	case "p":
		tag, ok := map[string]string{"canonical": "%{canonical}p", "local": "%{local}p", "remote": "%{remote}p"}[modifier]
		if !ok {
			return FormatField{}, invalidFormat(format, "unsupported modifier %q for %%p", modifier)
		}
		return fieldFromDef(tag, rawToken, directiveRegistry[tag]), nil
	case "P":
		tag, ok := map[string]string{"pid": "%{pid}P", "tid": "%{tid}P", "hextid": "%{hextid}P"}[modifier]
		if !ok {
			return FormatField{}, invalidFormat(format, "unsupported modifier %q for %%P", modifier)
		}
		return fieldFromDef(tag, rawToken, directiveRegistry[tag]), nil
	case "T":
		unit := modifier
		if unit != "" && unit != "s" && unit != "ms" && unit != "us" {
			return FormatField{}, invalidFormat(format, "unsupported unit modifier %q for %%T", modifier)
		}
		field := fieldFromDef("%T", rawToken, directiveRegistry["%T"])
		field.IsDuration = true
		field.DurationUnit = unit
		field.DurationPrecision = durationPrecision("T", unit)
		return field, nil
	case "t":
		field := fieldFromDef("%t", rawToken, directiveRegistry["%t"])
		field.IsTimestamp = true
		classifyTimestamp(&field, modifier)
		return field, nil
	case "i":
		return buildHeaderFieldFromModifier(modifier, rawToken, headerRequest), nil
	case "o":
		return buildHeaderFieldFromModifier(modifier, rawToken, headerResponse), nil
	case "C":
		return buildHeaderFieldFromModifier(modifier, rawToken, headerCookie), nil
	case "e":
		return buildHeaderFieldFromModifier(modifier, rawToken, headerEnv), nil
	case "n":
		return buildHeaderFieldFromModifier(modifier, rawToken, headerNote), nil
	default:
		return FormatField{}, invalidFormat(format, "directive %%{%s}%s is not recognized", modifier, letter)
	}
}

func buildTrailerField(format, modifier, trailer string) (FormatField, error) {
	rawToken := "%{" + modifier + "}" + trailer
	kind := headerTrailerIn
	if trailer == "^to" {
		kind = headerTrailerOut
	}
	return buildHeaderFieldFromModifier(modifier, rawToken, kind), nil
}

func buildHeaderFieldFromModifier(name, rawToken string, kind headerKind) FormatField {
	rule := headerRules[kind]
	logicalType, _ := typedHeaderOverride(name, kind)
	return FormatField{
		RawToken:          rawToken,
		Modifier:          name,
		ColumnName:        headerColumnName(name),
		LogicalType:       logicalType,
		IsHeaderField:     true,
		HeaderKind:        kind,
		HeaderName:        name,
		CollisionPriority: rule.priority,
		CollisionSuffix:   rule.suffix,
		HasCapture:        true,
	}
}

// noRegistryPriority is the sentinel CollisionPriority for directives the
// registry doesn't rank explicitly. It must sort after every real priority
// (0, 1, ...) in resolveCollisions's ascending sort, so an unranked field
// never wins arbitration against a genuinely prioritized one.
const noRegistryPriority = 1000

func fieldFromDef(tag, rawToken string, def directiveDef) FormatField {
	priority := noRegistryPriority
	if def.collisionPriority != nil {
		priority = *def.collisionPriority
	}
	return FormatField{
		DirectiveTag:      tag,
		RawToken:          rawToken,
		ColumnName:        def.columnName,
		LogicalType:       def.logicalType,
		CollisionPriority: priority,
		CollisionSuffix:   def.collisionSuffix,
		HasCapture:        true,
	}
}

// durationPrecision ranks duration directives by precision, highest wins
// arbitration (§4.2 Duration arbitration): %D family (µs) > %{us}T >
// %{ms}T > bare %T (s) > %{s}T.
func durationPrecision(letter, unit string) int {
	if letter == "D" {
		return 100
	}
	switch unit {
	case "us":
		return 90
	case "ms":
		return 80
	case "":
		return 70
	case "s":
		return 60
	}
	return 0
}

// classifyTimestamp assigns TimestampType/StrftimeFormat/IsEndTimestamp from
// a %t directive's modifier, per §4.2's Timestamp classification.
func classifyTimestamp(field *FormatField, modifier string) {
	field.IsEndTimestamp = false // default polarity is "begin"
	body := modifier

	switch {
	case strings.HasPrefix(body, "begin:"):
		body = strings.TrimPrefix(body, "begin:")
	case strings.HasPrefix(body, "end:"):
		field.IsEndTimestamp = true
		body = strings.TrimPrefix(body, "end:")
	}

	switch body {
	case "sec":
		field.TimestampType = TimestampEpochSec
		return
	case "msec":
		field.TimestampType = TimestampEpochMsec
		return
	case "usec":
		field.TimestampType = TimestampEpochUsec
		return
	case "msec_frac":
		field.TimestampType = TimestampFracMsec
		return
	case "usec_frac":
		field.TimestampType = TimestampFracUsec
		return
	case "":
		field.TimestampType = TimestampApacheDefault
		return
	default:
		field.TimestampType = TimestampStrftime
		field.StrftimeFormat = body
	}
}
