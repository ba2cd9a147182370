package bank

import (
	"html"
	"regexp"
	"sort"
	"strings"
)

var (
	trailingBracesRe = regexp.MustCompile(`\}{2,}\s*$`)
	paragraphRe      = regexp.MustCompile(`\n\s*\n`)
	textbfRe         = regexp.MustCompile(`\\textbf\{([^}]*)\}`)
	textitRe         = regexp.MustCompile(`\\textit\{([^}]*)\}`)
	emphRe           = regexp.MustCompile(`\\emph\{([^}]*)\}`)
)

// sanitize trims closing braces left dangling by the question block grammar.
func sanitize(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))

	opens := strings.Count(s, "{")
	closes := strings.Count(s, "}")
	for closes > opens && strings.HasSuffix(s, "}") {
		s = strings.TrimRight(s[:len(s)-1], " \t\n")
		closes--
	}
	return trailingBracesRe.ReplaceAllString(s, "}")
}

// renderFragment turns a LaTeX fragment into HTML. Math stays inline for MathJax.
func renderFragment(src string) string {
	src = sanitize(src)
	if src == "" {
		return ""
	}

	var b strings.Builder
	for _, para := range paragraphRe.Split(src, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		s := html.EscapeString(para)
		s = textbfRe.ReplaceAllString(s, "<b>$1</b>")
		s = textitRe.ReplaceAllString(s, "<i>$1</i>")
		s = emphRe.ReplaceAllString(s, "<em>$1</em>")
		s = strings.ReplaceAll(s, `\\`, "<br>")
		b.WriteString("<p>")
		b.WriteString(s)
		b.WriteString("</p>\n")
	}
	return b.String()
}

func renderQuestion(statement string, options map[string]string) string {
	out := renderFragment(statement)
	if len(options) == 0 {
		return out
	}

	letters := make([]string, 0, len(options))
	for k := range options {
		letters = append(letters, k)
	}
	sort.Strings(letters)

	var b strings.Builder
	b.WriteString(out)
	b.WriteString("<ol type='a' style='padding-left:1.5rem; margin-top:.5rem;'>\n")
	for _, k := range letters {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(options[k]))
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>")
	return b.String()
}
