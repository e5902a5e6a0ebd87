package tripadvisor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<div data-test-target="restaurants-list">
	<a href="/Restaurant_Review-g298484-d42-Reviews.html">Кафе 42</a>
	<a href="/Attraction_Review-g298484-d1.html">not a restaurant</a>
	<a href="/Restaurant_Review-g298484-d43-Reviews.html">Кафе 43</a>
</div>
<a data-smoke-attr="pagination-next-arrow" href="/Restaurants-g298484-oa30.html">next</a>
</body></html>`

func TestListingDetailLinks(t *testing.T) {
	doc := docFrom(t, listingPage)
	require.Equal(t, []string{
		"/Restaurant_Review-g298484-d42-Reviews.html",
		"/Restaurant_Review-g298484-d43-Reviews.html",
	}, listingDetailLinks(doc))
}

func TestNextPageHref(t *testing.T) {
	doc := docFrom(t, listingPage)
	require.Equal(t, "/Restaurants-g298484-oa30.html", nextPageHref(doc))

	last := docFrom(t, `<html><body><div data-test-target="restaurants-list"></div></body></html>`)
	require.Equal(t, "", nextPageHref(last))
}

func TestResolveHref(t *testing.T) {
	base, err := url.Parse("https://www.tripadvisor.ru/Restaurants-g298484.html")
	require.NoError(t, err)

	abs, err := resolveHref(base, "/Restaurant_Review-g298484-d42.html")
	require.NoError(t, err)
	require.Equal(t, "https://www.tripadvisor.ru/Restaurant_Review-g298484-d42.html", abs)
}
