package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

func TestFirstParagraphPrefersMetaDescription(t *testing.T) {
	html := `<html><head><meta name="description" content="Meta summary here"></head>` +
		`<body><p>First paragraph text</p></body></html>`
	if got := FirstParagraph(html); got != "Meta summary here" {
		t.Errorf("got %q, want meta description", got)
	}
}

func TestFirstParagraphOGDescription(t *testing.T) {
	html := `<html><head><meta property="og:description" content="OG summary"></head>` +
		`<body><p>Paragraph</p></body></html>`
	if got := FirstParagraph(html); got != "OG summary" {
		t.Errorf("got %q, want og:description", got)
	}
}

func TestFirstParagraphSkipsEmptyParagraphs(t *testing.T) {
	html := `<div><p>   </p><p>Hello world</p></div>`
	if got := FirstParagraph(html); got != "Hello world" {
		t.Errorf("got %q, want first non-empty paragraph", got)
	}
}

func TestFirstParagraphPlainText(t *testing.T) {
	if got := FirstParagraph("Just plain text"); got != "Just plain text" {
		t.Errorf("got %q", got)
	}
}

func TestFirstParagraphTruncatesLongText(t *testing.T) {
	long := strings.Repeat("слово ", 300)
	got := FirstParagraph(long)
	if utf8.RuneCountInString(got) > 600 {
		t.Errorf("plain-text fallback too long: %d runes", utf8.RuneCountInString(got))
	}
}

func TestFirstParagraphEmpty(t *testing.T) {
	if got := FirstParagraph("   "); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestFirstParagraphMalformedHTML(t *testing.T) {
	// Broken markup must degrade, not panic.
	html := `<div><p>Unclosed paragraph <span>nested`
	if got := FirstParagraph(html); got == "" {
		t.Errorf("expected best-effort text from malformed HTML")
	}
}

func TestImageFromEntryEnclosure(t *testing.T) {
	item := &gofeed.Item{
		Enclosures: []*gofeed.Enclosure{
			{URL: "https://cdn.example/a.mp3", Type: "audio/mpeg"},
			{URL: "https://cdn.example/a.jpg", Type: "image/jpeg"},
		},
	}
	if got := ImageFromEntry(item); got != "https://cdn.example/a.jpg" {
		t.Errorf("got %q, want image enclosure", got)
	}
}

func TestImageFromEntryMediaExtension(t *testing.T) {
	item := &gofeed.Item{
		Extensions: ext.Extensions{
			"media": {
				"content": []ext.Extension{
					{Name: "content", Attrs: map[string]string{"url": "https://cdn.example/m.jpg"}},
				},
			},
		},
	}
	if got := ImageFromEntry(item); got != "https://cdn.example/m.jpg" {
		t.Errorf("got %q, want media:content url", got)
	}
}

func TestImageFromEntryNone(t *testing.T) {
	if got := ImageFromEntry(&gofeed.Item{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := ImageFromEntry(nil); got != "" {
		t.Errorf("got %q for nil item, want empty", got)
	}
}

func TestImageFromHTML(t *testing.T) {
	html := `<head><meta property="og:image" content="https://cdn.example/og.jpg">` +
		`<meta name="twitter:image" content="https://cdn.example/tw.jpg"></head>`
	if got := ImageFromHTML(html); got != "https://cdn.example/og.jpg" {
		t.Errorf("got %q, want og:image first", got)
	}

	html = `<head><meta name="twitter:image" content="https://cdn.example/tw.jpg"></head>`
	if got := ImageFromHTML(html); got != "https://cdn.example/tw.jpg" {
		t.Errorf("got %q, want twitter:image fallback", got)
	}

	if got := ImageFromHTML("<p>no images here</p>"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
