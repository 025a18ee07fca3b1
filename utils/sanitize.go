package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// VisibleText returns what a reader would see of input once markup is
// stripped, trimmed. It is for checks only; stored text keeps its markup.
func VisibleText(input string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(input)))
}
