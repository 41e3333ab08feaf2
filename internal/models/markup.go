package models

import (
	"strings"

	"golang.org/x/net/html"
)

// highlightStripper removes the tags hh.ru wraps around search hits in snippets.
var highlightStripper = strings.NewReplacer("<highlighttext>", "", "</highlighttext>", "")

// NormalizeText strips hh.ru highlight markup and unescapes HTML entities. Any other
// text, including characters that only look like tags, is kept as given.
func NormalizeText(s string) string {
	if strings.Contains(s, "<highlighttext>") || strings.Contains(s, "</highlighttext>") {
		s = highlightStripper.Replace(s)
	}
	if strings.Contains(s, "&") {
		s = html.UnescapeString(s)
	}
	return s
}
