package articles

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RenderHTML wraps title and body in the article template. Paragraphs in body
// are separated by blank lines; single newlines are folded into spaces.
func RenderHTML(title, body string) string {
	var b strings.Builder
	b.WriteString(`<article role="article" aria-labelledby="article-title">`)
	b.WriteString(`<header><h1 id="article-title">`)
	b.WriteString(html.EscapeString(strings.TrimSpace(title)))
	b.WriteString(`</h1></header><div class="article-body">`)
	for _, paragraph := range Paragraphs(body) {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(paragraph))
		b.WriteString("</p>")
	}
	b.WriteString(`</div></article>`)
	return b.String()
}

// Paragraphs splits model text into trimmed, non-empty paragraphs.
func Paragraphs(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(body, "\n\n") {
		text := strings.Join(strings.Fields(block), " ")
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// Validate checks that content has the article structure.
func Validate(content string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("parse article html: %w", err)
	}
	article := doc.Find(`article[role="article"]`)
	if article.Length() != 1 {
		return errors.New("article html: expected exactly one article element")
	}
	if strings.TrimSpace(article.Find("header h1#article-title").Text()) == "" {
		return errors.New("article html: missing title")
	}
	if article.Find("div.article-body p").Length() == 0 {
		return errors.New("article html: body has no paragraphs")
	}
	return nil
}

// PlainText extracts the title and paragraphs of an article as text, one
// paragraph per block. Content without the article structure is returned as
// its text nodes.
func PlainText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse article html: %w", err)
	}
	var blocks []string
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		blocks = append(blocks, title)
	}
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

// Retitle replaces the title of a rendered article, keeping the body.
func Retitle(content, title string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse article html: %w", err)
	}
	heading := doc.Find("h1#article-title")
	if heading.Length() == 0 {
		return "", errors.New("article html: missing title element")
	}
	heading.SetText(strings.TrimSpace(title))
	out, err := goquery.OuterHtml(doc.Find("article").First())
	if err != nil {
		return "", fmt.Errorf("render article html: %w", err)
	}
	return out, nil
}
