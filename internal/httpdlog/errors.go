package httpdlog

import "fmt"

// InvalidFormatError reports a malformed LogFormat string: an unterminated
// "%{...}", an unrecognized directive, or a format whose generated pattern
// does not compile as a regular expression. Fatal at bind time (§7).
type InvalidFormatError struct {
	Format string
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid httpd LogFormat %q: %s", e.Format, e.Reason)
}

func invalidFormat(format, reason string, args ...interface{}) error {
	return &InvalidFormatError{Format: format, Reason: fmt.Sprintf(reason, args...)}
}
