package httpdlog

import "unicode/utf8"

// sanitizeUTF8 replaces invalid UTF-8 byte sequences with the Unicode
// replacement character. Log lines routinely carry non-UTF-8 bytes —
// Latin-1 request paths, raw bytes in malformed headers — which would
// otherwise make an Arrow/Parquet string column reject the value
// downstream. Fast path: already-valid strings are returned unchanged
// with no allocation.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	result := make([]byte, 0, len(s)+len(s)/8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			result = append(result, '\xef', '\xbf', '\xbd')
			i++
		} else {
			result = append(result, s[i:i+size]...)
			i += size
		}
	}
	return string(result)
}
