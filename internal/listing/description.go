package listing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Ellipsis is appended to truncated short descriptions.
const Ellipsis = "..."

const blockElements = "br,p,div,li,ul,ol,h1,h2,h3,h4,h5,h6,blockquote,tr,td,th"

// StripMarkup extracts the text of an HTML fragment and collapses runs of
// whitespace into single spaces. Script and style content is dropped.
func StripMarkup(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return collapseSpace(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseSpace(raw)
	}

	doc.Find("script,style").Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})

	return collapseSpace(doc.Text())
}

// TruncateWords returns the first limit words of text followed by Ellipsis.
// Text with at most limit words is returned unchanged with truncated false.
func TruncateWords(text string, limit int) (short string, truncated bool) {
	words := strings.Fields(text)
	if limit <= 0 || len(words) <= limit {
		return text, false
	}
	return strings.Join(words[:limit], " ") + Ellipsis, true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
