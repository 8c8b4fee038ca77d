package server

import (
	"strings"

	htmlparser "golang.org/x/net/html"
)

// stripHTML reduces backend-supplied rich text to plain text using the html
// tokenizer, dropping script and style contents entirely, then collapses
// whitespace.
func stripHTML(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	tokenizer := htmlparser.NewTokenizer(strings.NewReader(input))
	skipDepth := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case htmlparser.ErrorToken:
			return collapseWhitespace(b.String())
		case htmlparser.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case htmlparser.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case htmlparser.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateText shortens text to at most maxLength runes, backing up to the
// previous word boundary when one is reasonably close.
func truncateText(input string, maxLength int) string {
	if input == "" || maxLength <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= maxLength {
		return input
	}

	cut := maxLength - 3
	if cut <= 0 {
		return "..."
	}
	text := string(runes[:cut])
	if lastSpace := strings.LastIndex(text, " "); lastSpace > cut/2 {
		text = text[:lastSpace]
	}
	return text + "..."
}

// ProcessBodyText strips HTML tags and truncates the result for display.
func ProcessBodyText(input string, maxLength int) string {
	if input == "" {
		return ""
	}
	text := stripHTML(input)
	if maxLength > 0 {
		text = truncateText(text, maxLength)
	}
	return text
}
