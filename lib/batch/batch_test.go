package batch

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"moscowrests/lib/reststore"

	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, dir, name, dataset string) {
	t.Helper()
	page := fmt.Sprintf(`<html><head>
<script>window.__WEB_CONTEXT__=%s;(this.$WP=this.$WP||[]).push("wp")</script>
</head><body></body></html>`, dataset)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(page), 0o644))
}

func validDataset() string {
	website := base64.StdEncoding.EncodeToString([]byte("https://example.com/"))
	return fmt.Sprintf(`{
		pageManifest: {redux: {
			api: {responses: {
				"/data/1.0/restaurant/42/overview": {data: {
					detailId: "42",
					name: 'Тестовое Кафе, Россия',
					rating: {
						primaryRating: '4.5',
						ratingQuestions: [],
						primaryRanking: {rank: 12, totalCount: 5000},
					},
					detailCard: {
						numericalPrice: '1 000 руб - 2 000 руб',
						tagTexts: {
							meals: {tags: []},
							features: {tags: []},
						},
					},
					location: {
						latitude: 55.7539,
						longitude: 37.6208,
						neighborhood: 'Тверская',
						landmark: '<b>1,2 км</b>от: Красная площадь',
					},
					contact: {
						email: 'info@example.com',
						phone: '+7 495 000-00-00',
						website: '%s',
					},
				}},
				"/data/1.0/location/42": {data: {
					web_url: 'https://www.tripadvisor.ru/Restaurant_Review-g298484-d42.html',
					address_obj: {
						city: 'Москва',
						street1: 'ул. Тверская, 1',
						postalcode: '125009',
						country: 'Россия',
					},
					price_level: '$$',
					dietary_restrictions: [],
					cuisine: [],
					photo: null,
					num_reviews: 10,
					description: 'Описание',
					hours: {
						timezone: 'Europe/Moscow',
						week_ranges: [[], [], [], [], [], [], []],
					},
				}},
			}},
			meta: {initialAbsoluteUrl: 'https://www.tripadvisor.ru/Restaurant_Review-g298484-d42.html'},
		}},
	}`, website)
}

const emptyDataset = `{pageManifest: {redux: {
	api: {responses: {}},
	meta: {initialAbsoluteUrl: 'https://example.com/empty'},
}}}`

func TestRunClassifiesPages(t *testing.T) {
	pages := t.TempDir()
	writePage(t, pages, "0.html", validDataset())
	writePage(t, pages, "1.html", emptyDataset)
	// no overview response: entity resolution fails, the page counts as failed
	writePage(t, pages, "2.html", `{pageManifest: {redux: {
		api: {responses: {"/data/1.0/location/42": {data: {}}}},
		meta: {initialAbsoluteUrl: 'https://example.com/odd'},
	}}}`)

	output := filepath.Join(t.TempDir(), "out.jl")
	summary, err := Run(context.Background(), Options{
		PagesDir:   pages,
		OutputPath: output,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Parsed)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 3, summary.TotalPages)

	file, err := os.Open(output)
	require.NoError(t, err)
	defer file.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		lines = append(lines, record)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 1)
	require.Equal(t, "Тестовое Кафе", lines[0]["name"])
	require.Equal(t, float64(1), lines[0]["id"])
}

func TestRunArchivesToStore(t *testing.T) {
	pages := t.TempDir()
	writePage(t, pages, "0.html", validDataset())

	store, err := reststore.Open(filepath.Join(t.TempDir(), "rests.db"))
	require.NoError(t, err)
	defer store.Close()

	summary, err := Run(context.Background(), Options{
		PagesDir:   pages,
		OutputPath: filepath.Join(t.TempDir(), "out.jl"),
		Store:      store,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Parsed)

	records, err := store.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Тестовое Кафе", records[0].Name)
	require.Equal(t, int64(1), records[0].ID)
}

func TestRunEmptyDirectory(t *testing.T) {
	summary, err := Run(context.Background(), Options{
		PagesDir:   t.TempDir(),
		OutputPath: filepath.Join(t.TempDir(), "out.jl"),
	})
	require.NoError(t, err)
	require.Equal(t, Summary{OutputPath: summary.OutputPath}, summary)
}
