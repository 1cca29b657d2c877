package usecase

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
	"unicode/utf8"

	"resume-tailor/internal/domain"
)

// RawDocument is the ingestion input: raw bytes plus the declared MIME type.
type RawDocument struct {
	Content     []byte
	ContentType string
}

var (
	mdHeading  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdEmphasis = regexp.MustCompile(`(\*{1,3}|_{1,3}|~~)`)
	mdLink     = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	mdFence    = regexp.MustCompile("(?m)^```[^\n]*$")
)

// ExtractText turns the raw document into plain text, branching on the
// declared content type. Unsupported types are rejected here, before any AI
// usage is attempted.
func ExtractText(input RawDocument) (string, error) {
	mediaType := strings.TrimSpace(input.ContentType)
	if mediaType != "" {
		parsed, _, err := mime.ParseMediaType(mediaType)
		if err != nil {
			return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedInput, input.ContentType)
		}
		mediaType = parsed
	}

	switch mediaType {
	case "", "text/plain":
		return plainText(input.Content)
	case "text/markdown":
		text, err := plainText(input.Content)
		if err != nil {
			return "", err
		}
		return stripMarkdown(text), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedInput, mediaType)
	}
}

func plainText(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: content is not valid utf-8", domain.ErrExtractionFailed)
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("%w: empty document", domain.ErrExtractionFailed)
	}
	return text, nil
}

// stripMarkdown removes structural markdown syntax while keeping the text
// itself, including link labels and their URLs.
func stripMarkdown(text string) string {
	text = mdFence.ReplaceAllString(text, "")
	text = mdHeading.ReplaceAllString(text, "")
	text = mdLink.ReplaceAllString(text, "$1 ($2)")
	text = mdEmphasis.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
