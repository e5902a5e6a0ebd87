package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const page = `<html><head>
<script src="/bundle.js"></script>
<script>window.other = 1;</script>
<script>window.__STATE__={a: 1};</script>
</head><body>
<div class="info">
	<span data-encoded-url="first"></span>
	<span></span>
	<span data-encoded-url="second"></span>
</div>
<p>hello <b>bold</b> world</p>
</body></html>`

func TestFindScriptContaining(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	text, ok := FindScriptContaining(doc, "__STATE__")
	require.True(t, ok)
	require.Contains(t, text, "window.__STATE__={a: 1};")

	_, ok = FindScriptContaining(doc, "__MISSING__")
	require.False(t, ok)
}

func TestAttrValues(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	values := AttrValues(doc.Find(".info span"), "data-encoded-url")
	require.Equal(t, []string{"first", "second"}, values)
}

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	p := doc.Find("p").Nodes[0]
	require.Equal(t, "hello bold world", GetText(p))
}
