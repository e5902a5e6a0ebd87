package tripadvisor

import (
	"context"
	"fmt"
	"strings"

	"moscowrests/lib/htmlutil"
	"moscowrests/lib/jsliteral"
	"moscowrests/lib/outlink"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// ParsePage runs the whole pipeline for one saved detail page: locate the
// embedded dataset, resolve the restaurant id, and normalize every field.
//
// ErrInsufficientData (matched with errors.Is) marks a page that simply
// has no data and should be skipped; every other error is an unexpected
// page shape and names the failing field so an operator can inspect the
// page. A partially populated record is never returned.
func ParsePage(ctx context.Context, html string) (*Record, error) {
	ctx, span := tracer.Start(ctx, "ParsePage")
	defer span.End()

	rec, err := parsePage(ctx, html)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "page extraction failed")
		return nil, err
	}
	return rec, nil
}

func parsePage(ctx context.Context, html string) (*Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("tripadvisor: parse html: %w", err)
	}

	root, err := extractDataset(doc)
	if err != nil {
		return nil, err
	}
	ix, err := newResponseIndex(ctx, root)
	if err != nil {
		return nil, err
	}

	overview, err := ix.get("restaurant/%s/overview")
	if err != nil {
		return nil, err
	}
	location, err := ix.get("location/%s")
	if err != nil {
		return nil, err
	}
	// optional sub-resources: their absence is a fact about the
	// restaurant, not a page defect
	ownerStatus, err := ix.optional("restaurant/%s/ownerStatus")
	if err != nil {
		return nil, err
	}
	storyboard, err := ix.optional("restaurant/%s/storyboard")
	if err != nil {
		return nil, err
	}

	rec := &Record{}

	name, err := requiredString(overview, "name")
	if err != nil {
		return nil, fieldErr("name", err)
	}
	rec.Name = stripCountrySuffix(name)

	if jsliteral.Truthy(ownerStatus) {
		verifiedNode, err := jsliteral.Get(ownerStatus, "isVerified")
		if err != nil {
			return nil, fieldErr("registered_at_tripadvisor", err)
		}
		rec.RegisteredAtTripadvisor, _ = jsliteral.AsBool(verifiedNode)
	}

	if err := extractRatings(overview, rec); err != nil {
		return nil, err
	}
	if err := extractAddress(location, overview, rec); err != nil {
		return nil, err
	}
	if err := extractContacts(overview, rec); err != nil {
		return nil, err
	}

	rec.MenuURL, err = menuLink(doc)
	if err != nil {
		return nil, fieldErr("menu_url", err)
	}

	rec.WorkingHoursByDays, err = workingHours(location)
	if err != nil {
		return nil, fieldErr("working_hours_by_days", err)
	}

	if err := extractTags(overview, location, rec); err != nil {
		return nil, err
	}
	if err := extractPrices(overview, location, rec); err != nil {
		return nil, err
	}

	reviewsNode, err := jsliteral.Get(location, "num_reviews")
	if err != nil {
		return nil, fieldErr("reviews_count", err)
	}
	reviews, ok := jsliteral.AsInt(reviewsNode)
	if !ok {
		return nil, fieldErr("reviews_count", fmt.Errorf("num_reviews %v is not numeric", reviewsNode))
	}
	rec.ReviewsCount = reviews

	if overviewMap, ok := overview.(map[string]any); ok {
		if awardNode, present := overviewMap["award"]; present {
			textNode, err := jsliteral.Get(awardNode, "awardText")
			if err != nil {
				return nil, fieldErr("award", err)
			}
			rec.Award, err = optionalString(textNode)
			if err != nil {
				return nil, fieldErr("award", err)
			}
		}
	}

	landmarkText, err := requiredStringOrEmpty(overview, "location", "landmark")
	if err != nil {
		return nil, fieldErr("landmark", err)
	}
	if landmarkText != "" {
		rec.Landmark, err = parseLandmark(landmarkText)
		if err != nil {
			return nil, fieldErr("landmark", err)
		}
	}

	descNode, err := jsliteral.Get(location, "description")
	if err != nil {
		return nil, fieldErr("description", err)
	}
	rec.Description, err = optionalString(descNode)
	if err != nil {
		return nil, fieldErr("description", err)
	}

	rec.PhotoURLs, err = photoURLs(location)
	if err != nil {
		return nil, fieldErr("photo_urls", err)
	}

	if jsliteral.Truthy(storyboard) {
		urlText, err := requiredString(storyboard, "storyboardUrl")
		if err != nil {
			return nil, fieldErr("video_url", err)
		}
		rec.VideoURL = &urlText
	}

	return rec, nil
}

func extractRatings(overview any, rec *Record) error {
	primaryNode, err := jsliteral.Get(overview, "rating", "primaryRating")
	if err != nil {
		return fieldErr("rating", err)
	}
	primary, ok := jsliteral.AsFloat(primaryNode)
	if !ok {
		return fieldErr("rating", fmt.Errorf("primaryRating %v is not numeric", primaryNode))
	}
	// negative is the upstream sentinel for "not rated yet"
	if primary >= 0 {
		rec.Rating = &primary
	}

	questions, err := ratingQuestions(overview)
	if err != nil {
		return fieldErr("rating_questions", err)
	}
	if rec.RatingFood, err = subScore(questions, "restaurants"); err != nil {
		return fieldErr("rating_food", err)
	}
	if rec.RatingPriceQuality, err = subScore(questions, "wallet-fill"); err != nil {
		return fieldErr("rating_price_quality", err)
	}
	if rec.RatingService, err = subScore(questions, "bell"); err != nil {
		return fieldErr("rating_service", err)
	}

	rankingNode, err := jsliteral.Get(overview, "rating", "primaryRanking")
	if err != nil {
		return fieldErr("rank", err)
	}
	if jsliteral.Truthy(rankingNode) {
		rank, err := requiredInt(rankingNode, "rank")
		if err != nil {
			return fieldErr("rank", err)
		}
		total, err := requiredInt(rankingNode, "totalCount")
		if err != nil {
			return fieldErr("rank_total_count", err)
		}
		rec.Rank = &rank
		rec.RankTotalCount = &total
	}
	return nil
}

func extractAddress(location, overview any, rec *Record) error {
	addressObj, err := jsliteral.Get(location, "address_obj")
	if err != nil {
		return fieldErr("address", err)
	}
	if rec.City, err = requiredStringOrEmpty(addressObj, "city"); err != nil {
		return fieldErr("city", err)
	}
	if rec.Address, err = requiredStringOrEmpty(addressObj, "street1"); err != nil {
		return fieldErr("address", err)
	}
	if rec.Zipcode, err = requiredStringOrEmpty(addressObj, "postalcode"); err != nil {
		return fieldErr("zipcode", err)
	}
	if rec.Country, err = requiredStringOrEmpty(addressObj, "country"); err != nil {
		return fieldErr("country", err)
	}

	latNode, err := jsliteral.Get(overview, "location", "latitude")
	if err != nil {
		return fieldErr("latitude", err)
	}
	lngNode, err := jsliteral.Get(overview, "location", "longitude")
	if err != nil {
		return fieldErr("longitude", err)
	}
	lat, okLat := jsliteral.AsFloat(latNode)
	lng, okLng := jsliteral.AsFloat(lngNode)
	if !okLat || !okLng {
		return fieldErr("latitude", fmt.Errorf("coordinates are not numeric"))
	}
	rec.Latitude = lat
	rec.Longitude = lng

	neighborhoodNode, err := jsliteral.Get(overview, "location", "neighborhood")
	if err != nil {
		return fieldErr("neighborhood", err)
	}
	if rec.Neighborhood, err = optionalString(neighborhoodNode); err != nil {
		return fieldErr("neighborhood", err)
	}

	if rec.TripadvisorURL, err = requiredString(location, "web_url"); err != nil {
		return fieldErr("tripadvisor_url", err)
	}
	return nil
}

func extractContacts(overview any, rec *Record) error {
	emailNode, err := jsliteral.Get(overview, "contact", "email")
	if err != nil {
		return fieldErr("email", err)
	}
	if rec.Email, err = optionalString(emailNode); err != nil {
		return fieldErr("email", err)
	}

	phoneNode, err := jsliteral.Get(overview, "contact", "phone")
	if err != nil {
		return fieldErr("tel", err)
	}
	if rec.Tel, err = optionalString(phoneNode); err != nil {
		return fieldErr("tel", err)
	}

	website, err := requiredStringOrEmpty(overview, "contact", "website")
	if err != nil {
		return fieldErr("website", err)
	}
	if website != "" {
		decoded, err := outlink.Extract(website)
		if err != nil {
			return fieldErr("website", err)
		}
		rec.Website = &decoded
	}
	return nil
}

func extractTags(overview, location any, rec *Record) error {
	dietaryNode, err := jsliteral.Get(location, "dietary_restrictions")
	if err != nil {
		return fieldErr("dietary_restrictions", err)
	}
	dietaryNames, dietaryKeys, err := keyedNames(dietaryNode, nil)
	if err != nil {
		return fieldErr("dietary_restrictions", err)
	}
	rec.DietaryRestrictions = dietaryNames
	rec.GlutenFreeDishes = dietaryKeys[glutenFreeID]
	rec.VegetarianFriendly = dietaryKeys[vegetarianFriendlyID]
	rec.VeganFriendly = dietaryKeys[veganFriendlyID]

	// a cuisine tag sharing a key with a dietary restriction is the
	// dietary tag leaking into the cuisine list; dietary wins
	cuisineNode, err := jsliteral.Get(location, "cuisine")
	if err != nil {
		return fieldErr("cuisines", err)
	}
	cuisines, _, err := keyedNames(cuisineNode, dietaryKeys)
	if err != nil {
		return fieldErr("cuisines", err)
	}
	rec.Cuisines = cuisines

	mealsNode, err := jsliteral.Get(overview, "detailCard", "tagTexts", "meals", "tags")
	if err != nil {
		return fieldErr("eating_times", err)
	}
	if rec.EatingTimes, err = tagValues(mealsNode); err != nil {
		return fieldErr("eating_times", err)
	}

	featuresNode, err := jsliteral.Get(overview, "detailCard", "tagTexts", "features", "tags")
	if err != nil {
		return fieldErr("features", err)
	}
	if rec.Features, err = tagValues(featuresNode); err != nil {
		return fieldErr("features", err)
	}
	return nil
}

func extractPrices(overview, location any, rec *Record) error {
	numerical, err := requiredStringOrEmpty(overview, "detailCard", "numericalPrice")
	if err != nil {
		return fieldErr("price_range", err)
	}
	if numerical != "" {
		rec.PriceRangeMin, rec.PriceRangeMax, rec.PriceRangeCurrency, err = parsePriceRange(numerical)
		if err != nil {
			return fieldErr("price_range", err)
		}
	}

	level, err := requiredStringOrEmpty(location, "price_level")
	if err != nil {
		return fieldErr("price_level", err)
	}
	rec.PriceLevelFrom, rec.PriceLevelTo, err = parsePriceLevel(level)
	if err != nil {
		return fieldErr("price_level", err)
	}
	return nil
}

// menuLink decodes the second encoded link of the restaurant-info header
// block. Exactly two encoded links means "website + menu"; any other
// count means there is no menu link to extract.
func menuLink(doc *goquery.Document) (*string, error) {
	header := doc.Find("[data-test-target=restaurant-detail-info]")
	encoded := htmlutil.AttrValues(header.Find("[data-encoded-url]"), "data-encoded-url")
	if len(encoded) != 2 {
		return nil, nil
	}
	url, err := outlink.Extract(encoded[1])
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func fieldErr(field string, err error) error {
	return fmt.Errorf("tripadvisor: field %s: %w", field, err)
}

// requiredString fetches a path that must hold a non-null string.
func requiredString(node any, path ...string) (string, error) {
	v, err := jsliteral.Get(node, path...)
	if err != nil {
		return "", err
	}
	s, ok := jsliteral.AsString(v)
	if !ok {
		return "", fmt.Errorf("%s is not a string", strings.Join(path, "."))
	}
	return s, nil
}

// requiredStringOrEmpty is requiredString but tolerates an explicit null,
// mapping it to "".
func requiredStringOrEmpty(node any, path ...string) (string, error) {
	v, err := jsliteral.Get(node, path...)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	s, ok := jsliteral.AsString(v)
	if !ok {
		return "", fmt.Errorf("%s is not a string", strings.Join(path, "."))
	}
	return s, nil
}

func requiredInt(node any, path ...string) (int64, error) {
	v, err := jsliteral.Get(node, path...)
	if err != nil {
		return 0, err
	}
	n, ok := jsliteral.AsInt(v)
	if !ok {
		return 0, fmt.Errorf("%s is not numeric", strings.Join(path, "."))
	}
	return n, nil
}
