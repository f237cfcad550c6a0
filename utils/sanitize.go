package utils

import "github.com/microcosm-cc/bluemonday"

// Every user-submitted field that ends up rendered (post titles, content,
// chatlogs, comments, report reasons) passes through the shared UGC policy.
var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips markup the UGC policy disallows. Safe formatting tags
// survive; scripts and event handlers do not.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
