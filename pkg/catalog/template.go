package catalog

import "strings"

// FormatTemplate performs literal {name} substitution on a template string.
// Unmatched placeholders pass through unchanged: partial formatting is
// preferable to failing an otherwise-deliverable notification, so the
// function is total and never returns an error. Callers are responsible
// for supplying all values they care about.
func FormatTemplate(template string, params map[string]string) string {
	if template == "" || !strings.ContainsRune(template, '{') {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))

	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			b.WriteString(template)
			return b.String()
		}
		close := strings.IndexByte(template[open:], '}')
		if close < 0 {
			b.WriteString(template)
			return b.String()
		}
		close += open

		b.WriteString(template[:open])
		name := template[open+1 : close]
		if val, ok := params[name]; ok {
			b.WriteString(val)
		} else {
			// Unknown placeholder stays verbatim, braces included.
			b.WriteString(template[open : close+1])
		}
		template = template[close+1:]
	}
}
