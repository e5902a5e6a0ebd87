package tripadvisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractDataset(t *testing.T) {
	doc := docFrom(t, `<html><head><script>
		window.__WEB_CONTEXT__={pageManifest: {redux: {api: {responses: {}}}}};(this.$WP=this.$WP||[]).push(x)
	</script></head><body></body></html>`)

	root, err := extractDataset(doc)
	require.NoError(t, err)
	_, ok := root["pageManifest"]
	require.True(t, ok)
}

func TestExtractDatasetNoMarker(t *testing.T) {
	doc := docFrom(t, `<html><head><script>window.other = {};</script></head></html>`)
	_, err := extractDataset(doc)
	require.True(t, errors.Is(err, ErrMarkerNotFound))
}

func TestExtractDatasetNoTerminator(t *testing.T) {
	doc := docFrom(t, `<html><head><script>window.__WEB_CONTEXT__={a: 1};</script></head></html>`)
	_, err := extractDataset(doc)
	require.True(t, errors.Is(err, ErrMarkerNotFound))
}

func TestExtractDatasetBadLiteral(t *testing.T) {
	doc := docFrom(t, `<html><head><script>
		window.__WEB_CONTEXT__={truncated: ;(this.$WP=this.$WP||[])
	</script></head></html>`)
	_, err := extractDataset(doc)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrMarkerNotFound))
}

func TestResponseIndexEmpty(t *testing.T) {
	root := map[string]any{
		"pageManifest": map[string]any{
			"redux": map[string]any{
				"api":  map[string]any{"responses": map[string]any{}},
				"meta": map[string]any{"initialAbsoluteUrl": "https://example.com/r/42"},
			},
		},
	}
	_, err := newResponseIndex(context.Background(), root)
	require.True(t, errors.Is(err, ErrInsufficientData))
}

func TestResponseIndexNoOverview(t *testing.T) {
	root := map[string]any{
		"pageManifest": map[string]any{
			"redux": map[string]any{
				"api": map[string]any{"responses": map[string]any{
					"/data/1.0/location/42": map[string]any{"data": map[string]any{}},
				}},
			},
		},
	}
	_, err := newResponseIndex(context.Background(), root)
	require.True(t, errors.Is(err, ErrEntityNotResolved))
	// a non-empty but unresolvable page is an anomaly, never a skip
	require.False(t, errors.Is(err, ErrInsufficientData))
}

func TestResponseIndexLookup(t *testing.T) {
	root := map[string]any{
		"pageManifest": map[string]any{
			"redux": map[string]any{
				"api": map[string]any{"responses": map[string]any{
					"/data/1.0/restaurant/42/overview": map[string]any{
						"data": map[string]any{"detailId": int64(42)},
					},
					"/data/1.0/location/42": map[string]any{
						"data": map[string]any{"web_url": "https://example.com"},
					},
				}},
			},
		},
	}
	ix, err := newResponseIndex(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, "42", ix.entityID)

	payload, err := ix.get("location/%s")
	require.NoError(t, err)
	require.Equal(t, "https://example.com", payload.(map[string]any)["web_url"])

	_, err = ix.get("restaurant/%s/storyboard")
	var notPresent *KeyNotPresentError
	require.True(t, errors.As(err, &notPresent))
	require.Equal(t, "/data/1.0/restaurant/42/storyboard", notPresent.Key)

	payload, err = ix.optional("restaurant/%s/storyboard")
	require.NoError(t, err)
	require.Nil(t, payload)
}
