package feed

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/go-shiori/go-readability"
)

type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run extracts the readable body of an article page and returns it as a
// plain-text summary of at most SummaryMaxLength characters.
func (e *ContentExtractor) Run(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := CleanText(article.TextContent)
	if text == "" {
		text = StripHTML(article.Content)
	}
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(text))

	return TruncateSummary(text), nil
}
