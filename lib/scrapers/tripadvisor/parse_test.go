package tripadvisor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const pageTemplate = `<html><head>
<script src="/static/bundle.js"></script>
<script>window.__WEB_CONTEXT__=%s;(this.$WP=this.$WP||[]).push("wp")</script>
</head><body>%s</body></html>`

// buildPage wraps an embedded dataset literal (and optional extra body
// markup) in the page shell the locator expects.
func buildPage(dataset, body string) string {
	return fmt.Sprintf(pageTemplate, dataset, body)
}

func fullDataset(websiteB64 string) string {
	return fmt.Sprintf(`{
		pageManifest: {
			redux: {
				api: {
					responses: {
						"/data/1.0/restaurant/42/overview": {data: {
							detailId: "42",
							name: 'Тестовое Кафе, Москва, Россия',
							rating: {
								primaryRating: '4.5',
								ratingQuestions: [
									{icon: 'restaurants', rating: 85},
									{icon: 'bell', rating: 90},
								],
								primaryRanking: {rank: 12, totalCount: 5000},
							},
							detailCard: {
								numericalPrice: '1 000 руб - 2 000 руб',
								tagTexts: {
									meals: {tags: [
										{tagId: 10598, tagValue: 'Обед'},
										{tagId: 10599, tagValue: 'Ужин'},
									]},
									features: {tags: [
										{tagId: 10601, tagValue: 'Wi-Fi'},
									]},
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
							price_level: '$$ - $$$',
							dietary_restrictions: [
								{key: '10665', name: 'Подходит для вегетарианцев'},
							],
							cuisine: [
								{key: '10749', name: 'Русская'},
								{key: '10665', name: 'Подходит для вегетарианцев'},
							],
							photo: null,
							num_reviews: 2345,
							description: 'Описание заведения',
							hours: {
								timezone: 'Europe/Moscow',
								week_ranges: [
									[{open_time: 600, close_time: 1380}],
									[], [], [], [], [], [],
								],
							},
						}},
					},
				},
				meta: {initialAbsoluteUrl: 'https://www.tripadvisor.ru/Restaurant_Review-g298484-d42.html'},
			},
		},
	}`, websiteB64)
}

func TestParsePageEndToEnd(t *testing.T) {
	website := base64.StdEncoding.EncodeToString(
		[]byte("XXhttps://example.com/?utm_source=tripadvisor&table=1"),
	)
	rec, err := ParsePage(context.Background(), buildPage(fullDataset(website), ""))
	require.NoError(t, err)

	require.Equal(t, "Тестовое Кафе, Москва", rec.Name)
	require.False(t, rec.RegisteredAtTripadvisor)
	require.Equal(t, 4.5, *rec.Rating)
	require.Equal(t, 8.5, *rec.RatingFood)
	require.Equal(t, 9.0, *rec.RatingService)
	require.Nil(t, rec.RatingPriceQuality)

	require.Equal(t, "Москва", rec.City)
	require.Equal(t, "ул. Тверская, 1", rec.Address)
	require.Equal(t, "125009", rec.Zipcode)
	require.Equal(t, "Россия", rec.Country)
	require.Equal(t, 55.7539, rec.Latitude)
	require.Equal(t, 37.6208, rec.Longitude)
	require.Equal(t, "Тверская", *rec.Neighborhood)
	require.Equal(t, "info@example.com", *rec.Email)
	require.Equal(t, "+7 495 000-00-00", *rec.Tel)
	require.Equal(t, "https://www.tripadvisor.ru/Restaurant_Review-g298484-d42.html", rec.TripadvisorURL)

	require.Nil(t, rec.MenuURL)
	require.Equal(t, "https://example.com/?table=1", *rec.Website)

	require.Len(t, rec.WorkingHoursByDays, 7)
	require.Equal(t, &DayHours{Open: "10:00:00+03:00", Close: "23:00:00+03:00"}, rec.WorkingHoursByDays[0])
	for _, day := range rec.WorkingHoursByDays[1:] {
		require.Nil(t, day)
	}

	require.Equal(t, int64(2), *rec.PriceLevelFrom)
	require.Equal(t, int64(3), *rec.PriceLevelTo)
	require.Equal(t, int64(1000), *rec.PriceRangeMin)
	require.Equal(t, int64(2000), *rec.PriceRangeMax)
	require.Equal(t, "RUB", *rec.PriceRangeCurrency)

	require.Equal(t, []string{"Подходит для вегетарианцев"}, rec.DietaryRestrictions)
	require.True(t, rec.VegetarianFriendly)
	require.False(t, rec.VeganFriendly)
	require.False(t, rec.GlutenFreeDishes)
	require.Equal(t, []string{"Русская"}, rec.Cuisines)

	require.Equal(t, int64(2345), rec.ReviewsCount)
	require.Nil(t, rec.Award)
	require.Equal(t, "Описание заведения", *rec.Description)
	require.Equal(t, []string{"Обед", "Ужин"}, rec.EatingTimes)
	require.Equal(t, []string{"Wi-Fi"}, rec.Features)

	require.Equal(t, &Landmark{Name: "Красная площадь", DistanceMeters: 1200}, rec.Landmark)
	require.Equal(t, int64(12), *rec.Rank)
	require.Equal(t, int64(5000), *rec.RankTotalCount)

	// no photo payload and no storyboard response: both fields must be
	// missing from the serialized output, not merely null
	require.Nil(t, rec.PhotoURLs)
	require.Nil(t, rec.VideoURL)
	serialized, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NotContains(t, string(serialized), "photo_urls")
	require.NotContains(t, string(serialized), "video_url")
	require.Contains(t, string(serialized), `"menu_url":null`)
}

func TestParsePageMenuLink(t *testing.T) {
	menu := base64.StdEncoding.EncodeToString([]byte("https://menu.example.com/?utm_source=x&page=2"))
	site := base64.StdEncoding.EncodeToString([]byte("https://example.com/"))
	body := fmt.Sprintf(`<div data-test-target="restaurant-detail-info">
		<span data-encoded-url="%s"></span>
		<span data-encoded-url="%s"></span>
	</div>`, site, menu)

	rec, err := ParsePage(context.Background(), buildPage(fullDataset(site), body))
	require.NoError(t, err)
	require.NotNil(t, rec.MenuURL)
	require.Equal(t, "https://menu.example.com/?page=2", *rec.MenuURL)
}

func TestParsePageSingleEncodedLink(t *testing.T) {
	site := base64.StdEncoding.EncodeToString([]byte("https://example.com/"))
	body := fmt.Sprintf(`<div data-test-target="restaurant-detail-info">
		<span data-encoded-url="%s"></span>
	</div>`, site)

	rec, err := ParsePage(context.Background(), buildPage(fullDataset(site), body))
	require.NoError(t, err)
	require.Nil(t, rec.MenuURL)
}

func TestParsePageInsufficientData(t *testing.T) {
	page := buildPage(`{pageManifest: {redux: {
		api: {responses: {}},
		meta: {initialAbsoluteUrl: 'https://example.com/empty'},
	}}}`, "")
	_, err := ParsePage(context.Background(), page)
	require.True(t, errors.Is(err, ErrInsufficientData))
}

func TestParsePageUnexpectedShape(t *testing.T) {
	site := base64.StdEncoding.EncodeToString([]byte("https://example.com/"))
	// corrupt one field: the numeric price loses its currency token
	broken := fullDataset(site)
	page := buildPage(broken, "")
	rec, err := ParsePage(context.Background(), page)
	require.NoError(t, err)
	require.NotNil(t, rec)

	brokenPage := buildPage(
		strings.Replace(broken, "'1 000 руб - 2 000 руб'", "'10 USD - 20 USD'", 1), "")
	_, err = ParsePage(context.Background(), brokenPage)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrInsufficientData))
	require.Contains(t, err.Error(), "price_range")
}

func TestParsePageNegativeRating(t *testing.T) {
	site := base64.StdEncoding.EncodeToString([]byte("https://example.com/"))
	page := buildPage(strings.Replace(fullDataset(site), "'4.5'", "'-1'", 1), "")
	rec, err := ParsePage(context.Background(), page)
	require.NoError(t, err)
	require.Nil(t, rec.Rating)
}
