package discourse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CookedText extracts the plain text of a post's cooked HTML. Used as the
// body fallback when the raw markdown is absent from the payload.
func CookedText(cooked string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cooked))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

// Attachments collects file attachment links from a post's cooked HTML.
func Attachments(cooked string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cooked))
	if err != nil {
		return nil
	}
	var urls []string
	doc.Find("a.attachment").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			urls = append(urls, href)
		}
	})
	return urls
}
