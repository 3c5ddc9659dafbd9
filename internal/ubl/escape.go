package ubl

import "strings"

// strings.Replacer never rescans its own output, so entities are not
// escaped twice.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape makes s safe for use as XML character data.
// Only the five predefined entities are substituted; whitespace, Unicode
// and control characters pass through untouched.
func Escape(s string) string {
	if s == "" {
		return ""
	}
	return escaper.Replace(s)
}
