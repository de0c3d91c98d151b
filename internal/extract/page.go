package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Page is the readable content of an article page
type Page struct {
	Title       string
	Description string
	Text        string
}

// Parse reads the title, meta description and visible text of an HTML document
func Parse(htmlContent string) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	page := &Page{}
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "svg", "form":
				return
			case "title":
				if page.Title == "" && n.FirstChild != nil {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case "meta":
				readMeta(n, page)
			}
		}

		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				text.WriteString(t)
				text.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	page.Text = strings.Join(strings.Fields(text.String()), " ")
	return page, nil
}

// readMeta keeps the first description-like meta tag
func readMeta(n *html.Node, page *Page) {
	if page.Description != "" {
		return
	}

	var key, content string
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "name", "property":
			key = strings.ToLower(attr.Val)
		case "content":
			content = strings.TrimSpace(attr.Val)
		}
	}

	switch key {
	case "description", "og:description", "twitter:description":
		page.Description = content
	}
}

// Sentences splits the visible text into sentences between 30 and 500 bytes
func (p *Page) Sentences() []string {
	return splitSentences(p.Text)
}

// splitSentences splits text into sentences (simple heuristic)
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Only split when followed by whitespace so "$1.5M" survives
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				if s := strings.TrimSpace(current.String()); keepSentence(s) {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}

	if s := strings.TrimSpace(current.String()); keepSentence(s) {
		sentences = append(sentences, s)
	}

	return sentences
}

func keepSentence(s string) bool {
	return len(s) >= 30 && len(s) <= 500
}
