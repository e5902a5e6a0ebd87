package tripadvisor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"moscowrests/lib/htmlutil"
	"moscowrests/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// the listing site answers throttling and block pages with these codes;
// they are worth retrying rather than failing the crawl
var retryStatusCodes = map[int]bool{
	500: true, 503: true, 504: true,
	400: true, 403: true, 404: true, 408: true,
}

type CrawlerOptions struct {
	// StartURL is the first restaurant-listing page.
	StartURL string
	// PagesDir receives one numbered .html file per detail page.
	PagesDir string
	// Delay between detail-page fetches.
	Delay time.Duration
}

// Crawler walks listing pagination and saves every restaurant detail page
// to disk. Extraction happens later, offline, over the saved pages.
type Crawler struct {
	http *resty.Client
	opts CrawlerOptions
}

func NewCrawler(opts CrawlerOptions) (*Crawler, error) {
	if opts.StartURL == "" {
		return nil, fmt.Errorf("tripadvisor: crawler needs a start url")
	}
	if err := os.MkdirAll(opts.PagesDir, 0o755); err != nil {
		return nil, err
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", browserUserAgent)
	client.SetTimeout(time.Second * 30)
	client.SetRetryCount(3)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err == nil && retryStatusCodes[res.StatusCode()]
	})
	restyutil.InstrumentClient(client, "moscowrests/lib/scrapers/tripadvisor/http")

	return &Crawler{http: client, opts: opts}, nil
}

// Run crawls from the start url until pagination runs out or ctx is
// cancelled, returning how many detail pages were saved.
func (c *Crawler) Run(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Crawler.Run")
	defer span.End()

	saved := 0
	seen := map[string]bool{}
	pageURL := c.opts.StartURL

	for pageURL != "" {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		doc, base, err := c.fetchDocument(ctx, pageURL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "listing fetch failed")
			return saved, err
		}

		links := listingDetailLinks(doc)
		slog.InfoContext(ctx, "found restaurants on listing page", "url", pageURL, "count", len(links))
		if len(links) == 0 {
			break
		}

		for _, href := range links {
			detailURL, err := resolveHref(base, href)
			if err != nil {
				slog.WarnContext(ctx, "skipping malformed detail link", "href", href, "err", err)
				continue
			}
			if seen[detailURL] {
				continue
			}
			seen[detailURL] = true

			if err := ctx.Err(); err != nil {
				return saved, err
			}
			if err := c.saveDetailPage(ctx, detailURL, saved); err != nil {
				slog.WarnContext(ctx, "failed to save detail page", "url", detailURL, "err", err)
				continue
			}
			saved++
			if c.opts.Delay > 0 {
				time.Sleep(c.opts.Delay)
			}
		}

		next := nextPageHref(doc)
		if next == "" {
			slog.InfoContext(ctx, "no next page link, reached end of pagination")
			break
		}
		pageURL, err = resolveHref(base, next)
		if err != nil {
			return saved, fmt.Errorf("tripadvisor: malformed next-page link %q: %w", next, err)
		}
	}

	return saved, nil
}

func (c *Crawler) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	res, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, nil, err
	}
	if res.IsError() {
		return nil, nil, fmt.Errorf("tripadvisor: listing page %s answered %s", pageURL, res.Status())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, nil, err
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, err
	}
	return doc, base, nil
}

func (c *Crawler) saveDetailPage(ctx context.Context, detailURL string, n int) error {
	res, err := c.http.R().SetContext(ctx).Get(detailURL)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("detail page answered %s", res.Status())
	}
	filename := filepath.Join(c.opts.PagesDir, fmt.Sprintf("%d.html", n))
	return os.WriteFile(filename, res.Body(), 0o644)
}

func listingDetailLinks(doc *goquery.Document) []string {
	sel := doc.Find("div[data-test-target=restaurants-list] a[href*='/Restaurant_Review']")
	return htmlutil.AttrValues(sel, "href")
}

func nextPageHref(doc *goquery.Document) string {
	return doc.Find("a[data-smoke-attr=pagination-next-arrow]").AttrOr("href", "")
}

func resolveHref(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
