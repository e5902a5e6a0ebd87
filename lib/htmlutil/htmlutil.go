package htmlutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText concatenates every text node under node, markup excluded.
func GetText(node *html.Node) string {
	var b strings.Builder
	collectText(node, &b)
	return b.String()
}

func collectText(node *html.Node, b *strings.Builder) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		b.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}
}

// FindScriptContaining returns the text of the first inline <script>
// whose body contains token. Pages that were blocked or reshaped simply
// have no such script.
func FindScriptContaining(doc *goquery.Document, token string) (string, bool) {
	for _, node := range doc.Find("script").Nodes {
		text := GetText(node)
		if strings.Contains(text, token) {
			return text, true
		}
	}
	return "", false
}

// AttrValues collects the given attribute from every node in the
// selection, in document order, skipping nodes that lack it.
func AttrValues(sel *goquery.Selection, attr string) []string {
	var values []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			values = append(values, v)
		}
	})
	return values
}
