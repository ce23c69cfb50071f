package dom

import "strings"

// textEscaper covers the characters that can open markup inside element
// content.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// attrEscaper also covers the attribute quote and the whitespace characters
// that html.Parse would normalize when a rendered tree is read back.
var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

func escapeHTML(s string) string {
	return textEscaper.Replace(s)
}

// escapeAttr escapes s for a double-quoted attribute value.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
