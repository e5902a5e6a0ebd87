// Package tripadvisor extracts normalized restaurant records from saved
// restaurant-detail pages. The page data is not served as an API: it sits
// in an inline script as one large JS object literal keyed by request-like
// paths, so extraction means locating the literal, parsing it leniently
// and walking it defensively.
package tripadvisor

import (
	"errors"
	"fmt"
	"strings"

	"moscowrests/lib/htmlutil"
	"moscowrests/lib/jsliteral"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("moscowrests/lib/scrapers/tripadvisor")

const (
	datasetMarker     = "window.__WEB_CONTEXT__="
	datasetTerminator = ";(this.$WP=this.$WP||[])"
)

// ErrMarkerNotFound means the page carries no recognizable embedded
// dataset: the site shipped a new page shape, a block page or an error
// page.
var ErrMarkerNotFound = errors.New("tripadvisor: embedded dataset markers not found")

// extractDataset isolates the object literal assigned to
// window.__WEB_CONTEXT__ and parses it into a generic tree.
func extractDataset(doc *goquery.Document) (map[string]any, error) {
	script, ok := htmlutil.FindScriptContaining(doc, datasetMarker)
	if !ok {
		return nil, ErrMarkerNotFound
	}

	start := strings.Index(script, datasetMarker)
	if start < 0 {
		return nil, ErrMarkerNotFound
	}
	start += len(datasetMarker)
	stop := strings.Index(script[start:], datasetTerminator)
	if stop < 0 {
		return nil, ErrMarkerNotFound
	}

	parsed, err := jsliteral.Parse(script[start : start+stop])
	if err != nil {
		return nil, fmt.Errorf("tripadvisor: parse embedded dataset: %w", err)
	}
	root, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tripadvisor: embedded dataset is not an object")
	}
	return root, nil
}
