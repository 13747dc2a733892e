// Package extract pulls a clean text snippet and a representative image URL
// out of raw feed entries or fetched page HTML. All parsing is lenient:
// malformed markup yields empty results, never an error.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const maxPlainTextRunes = 600

// FirstParagraph extracts the first meaningful paragraph from an HTML
// fragment or plain text. Preference order: meta description tags, first
// non-empty <p>, then the leading part of the flattened text.
func FirstParagraph(htmlOrText string) string {
	if strings.TrimSpace(htmlOrText) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlOrText))
	if err != nil {
		return ""
	}

	if meta := metaContent(doc, `meta[name="description"]`, `meta[property="og:description"]`); meta != "" {
		return meta
	}

	var para string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := strings.TrimSpace(s.Text()); text != "" {
			para = text
			return false
		}
		return true
	})
	if para != "" {
		return para
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	r := []rune(text)
	if len(r) > maxPlainTextRunes {
		return string(r[:maxPlainTextRunes])
	}
	return text
}

// ImageFromEntry returns an image URL from the entry's structured media
// fields: the feed item image, a media:content/media:thumbnail extension,
// or an enclosure with an image MIME type.
func ImageFromEntry(item *gofeed.Item) string {
	if item == nil {
		return ""
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, e := range media[name] {
				if u := e.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// ImageFromHTML scans fetched page HTML for social-preview meta tags,
// first match wins.
func ImageFromHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return metaContent(doc,
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="og:image:url"]`,
	)
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if c := strings.TrimSpace(v); c != "" {
				return c
			}
		}
	}
	return ""
}
