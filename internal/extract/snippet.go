package extract

import (
	"strings"
	"unicode/utf8"
)

// DefaultSnippetLength caps generated snippets
const DefaultSnippetLength = 500

// SnippetExtractor builds a short summary of an article page
type SnippetExtractor struct {
	maxLen int
}

// NewSnippetExtractor creates an extractor; maxLen <= 0 uses DefaultSnippetLength
func NewSnippetExtractor(maxLen int) *SnippetExtractor {
	if maxLen <= 0 {
		maxLen = DefaultSnippetLength
	}
	return &SnippetExtractor{maxLen: maxLen}
}

// Extract returns a snippet for the page. Sentences mentioning subject are
// preferred, then the meta description, then the leading sentences.
func (e *SnippetExtractor) Extract(htmlContent, subject string) (string, error) {
	page, err := Parse(htmlContent)
	if err != nil {
		return "", err
	}

	sentences := page.Sentences()

	if subject = strings.ToLower(strings.TrimSpace(subject)); subject != "" {
		var mentioning []string
		for _, s := range sentences {
			if strings.Contains(strings.ToLower(s), subject) {
				mentioning = append(mentioning, s)
			}
		}
		if len(mentioning) > 0 {
			return e.join(mentioning), nil
		}
	}

	if keepSentence(page.Description) {
		return truncate(page.Description, e.maxLen), nil
	}

	return e.join(sentences), nil
}

// join concatenates whole sentences while they fit in maxLen
func (e *SnippetExtractor) join(sentences []string) string {
	var b strings.Builder
	for _, s := range sentences {
		need := len(s)
		if b.Len() > 0 {
			need++
		}
		if b.Len()+need > e.maxLen {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	if b.Len() == 0 && len(sentences) > 0 {
		return truncate(sentences[0], e.maxLen)
	}
	return b.String()
}

// truncate cuts s to at most n bytes on a rune boundary
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}
