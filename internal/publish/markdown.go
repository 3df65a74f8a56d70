package publish

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Markdown converts stored article HTML to Markdown.
func Markdown(content string) (string, error) {
	md, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("convert article to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}
