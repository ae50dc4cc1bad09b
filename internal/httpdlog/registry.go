// Package httpdlog compiles Apache LogFormat directive strings into typed,
// columnar schemas and the regex-based recognizer/converter pipeline needed
// to materialize log lines into those schemas.
package httpdlog

import "strings"

// LogicalType is the typed column kind a directive materializes to.
type LogicalType int

const (
	TypeString LogicalType = iota
	TypeInt32
	TypeInt64
	TypeBool
	TypeTimestamp
	TypeInterval
)

func (t LogicalType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeInt32:
		return "INT32"
	case TypeInt64:
		return "INT64"
	case TypeBool:
		return "BOOL"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeInterval:
		return "INTERVAL"
	default:
		return "UNKNOWN"
	}
}

// directiveDef is a registry entry for a directive resolved to its canonical
// tag (e.g. "%h", "%>s", "%{c}a"). priority is nil when the directive never
// participates in priority-based collision arbitration.
type directiveDef struct {
	columnName        string
	logicalType       LogicalType
	collisionPriority *int
	collisionSuffix   string
}

func intp(v int) *int { return &v }

// directiveRegistry maps a canonical directive tag to its default column
// name, type and collision metadata. Built once as a process-wide constant;
// never mutated after init.
var directiveRegistry = map[string]directiveDef{
	"%h":      {columnName: "client_host", logicalType: TypeString},
	"%{c}h":   {columnName: "peer_host", logicalType: TypeString},
	"%a":      {columnName: "remote_ip", logicalType: TypeString},
	"%{c}a":   {columnName: "peer_ip", logicalType: TypeString},
	"%A":      {columnName: "local_ip", logicalType: TypeString},
	"%l":      {columnName: "ident", logicalType: TypeString},
	"%u":      {columnName: "auth_user", logicalType: TypeString},
	"%t":      {columnName: "timestamp", logicalType: TypeTimestamp},
	"%>r":     {columnName: "request", logicalType: TypeString, collisionPriority: intp(0)},
	"%r":      {columnName: "request", logicalType: TypeString, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%<r":     {columnName: "request", logicalType: TypeString, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%m":      {columnName: "method", logicalType: TypeString},
	"%>U":     {columnName: "path", logicalType: TypeString, collisionPriority: intp(0)},
	"%U":      {columnName: "path", logicalType: TypeString, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%<U":     {columnName: "path", logicalType: TypeString, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%q":      {columnName: "query_string", logicalType: TypeString},
	"%H":      {columnName: "protocol", logicalType: TypeString},
	"%>s":     {columnName: "status", logicalType: TypeInt32, collisionPriority: intp(0)},
	"%s":      {columnName: "status", logicalType: TypeInt32, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%<s":     {columnName: "status", logicalType: TypeInt32, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%B":      {columnName: "bytes", logicalType: TypeInt64},
	"%b":      {columnName: "bytes", logicalType: TypeInt64},
	"%I":      {columnName: "bytes_received", logicalType: TypeInt64},
	"%O":      {columnName: "bytes_sent", logicalType: TypeInt64},
	"%S":      {columnName: "bytes_transferred", logicalType: TypeInt64},
	"%>D":     {columnName: "duration", logicalType: TypeInterval, collisionPriority: intp(0)},
	"%D":      {columnName: "duration", logicalType: TypeInterval, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%<D":     {columnName: "duration", logicalType: TypeInterval, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%>T":     {columnName: "duration", logicalType: TypeInterval, collisionPriority: intp(0)},
	"%T":      {columnName: "duration", logicalType: TypeInterval, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%<T":     {columnName: "duration", logicalType: TypeInterval, collisionPriority: intp(1), collisionSuffix: "_original"},
	"%v":      {columnName: "server_name", logicalType: TypeString, collisionPriority: intp(0)},
	"%V":      {columnName: "server_name", logicalType: TypeString, collisionPriority: intp(1), collisionSuffix: "_used"},
	"%p":                {columnName: "server_port", logicalType: TypeInt32},
	"%{canonical}p":     {columnName: "server_port", logicalType: TypeInt32},
	"%{local}p":         {columnName: "local_port", logicalType: TypeInt32},
	"%{remote}p":        {columnName: "remote_port", logicalType: TypeInt32},
	"%P":                {columnName: "process_id", logicalType: TypeInt32},
	"%{pid}P":           {columnName: "process_id", logicalType: TypeInt32},
	"%{tid}P":           {columnName: "thread_id", logicalType: TypeInt64},
	"%{hextid}P":        {columnName: "thread_id_hex", logicalType: TypeString},
	"%k": {columnName: "keepalive_count", logicalType: TypeInt32},
	"%X": {columnName: "connection_status", logicalType: TypeString},
	"%f": {columnName: "filename", logicalType: TypeString},
	"%L": {columnName: "request_log_id", logicalType: TypeString},
	"%R": {columnName: "handler", logicalType: TypeString},
}

// headerKind identifies which per-name header family a %{Name}X directive
// belongs to; each has a distinct collision priority/suffix per §4.1.
type headerKind int

const (
	headerRequest headerKind = iota // %{Name}i
	headerResponse                  // %{Name}o
	headerCookie                    // %{Name}C
	headerEnv                       // %{Name}e
	headerNote                      // %{Name}n
	headerTrailerIn                 // %{Name}^ti
	headerTrailerOut                // %{Name}^to
)

type headerRule struct {
	priority int
	suffix   string
}

var headerRules = map[headerKind]headerRule{
	headerRequest:     {priority: 2, suffix: "_in"},
	headerResponse:    {priority: 3, suffix: "_out"},
	headerCookie:      {priority: 4, suffix: "_cookie"},
	headerEnv:         {priority: 5, suffix: "_env"},
	headerNote:        {priority: 6, suffix: "_note"},
	headerTrailerIn:   {priority: 7, suffix: "_trail_in"},
	headerTrailerOut:  {priority: 8, suffix: "_trail_out"},
}

// headerColumnName derives the default column name for a %{Name}i/%{Name}o/...
// directive: lowercase the header name and replace '-' with '_'.
func headerColumnName(name string) string {
	lower := strings.ToLower(name)
	return strings.ReplaceAll(lower, "-", "_")
}

// typedHeaderOverride implements §4.1's typed-header rules: a case-insensitive
// match on the header name that overrides the default STRING type for %i/%o.
// Per design note (c), this asymmetry (Max-Forwards typed only on request) is
// intentional and is not generalized.
func typedHeaderOverride(name string, kind headerKind) (LogicalType, bool) {
	lower := strings.ToLower(name)
	switch lower {
	case "content-length":
		if kind == headerRequest || kind == headerResponse {
			return TypeInt64, true
		}
	case "age":
		if kind == headerResponse {
			return TypeInt32, true
		}
	case "max-forwards":
		if kind == headerRequest {
			return TypeInt32, true
		}
	}
	return TypeString, false
}

func lookupDirective(tag string) (directiveDef, bool) {
	def, ok := directiveRegistry[tag]
	return def, ok
}
