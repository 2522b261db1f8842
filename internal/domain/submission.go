package domain

import (
	"strconv"
)

// Submission is the loosely-typed field mapping received from the browser form.
// It is only ever read by the validator; nothing downstream of validation sees it.
type Submission map[string]any

// Text returns the value stored under key as a string, and whether the value
// counts as present. Presence follows truthiness: absent keys, nil, "", 0, false,
// and empty collections are all missing. Strings are returned verbatim, never
// trimmed. Values with no textual form (true, arrays, objects) are also missing.
func (s Submission) Text(key string) (string, bool) {
	switch v := s[key].(type) {
	case string:
		return v, v != ""
	case float64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		if v == 0 {
			return "", false
		}
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}
