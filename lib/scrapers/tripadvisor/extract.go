package tripadvisor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"moscowrests/lib/jsliteral"
	"moscowrests/lib/timezone"
)

// Dietary-restriction tag ids, fixed upstream.
const (
	vegetarianFriendlyID = "10665"
	veganFriendlyID      = "10697"
	glutenFreeID         = "10992"
)

const (
	currencyToken = "руб"
	currencyCode  = "RUB"
	distanceUnit  = "км"
	landmarkSep   = "от:"
	countrySuffix = ", Россия"
)

var digitRegex = regexp.MustCompile(`\d+`)

// parsePriceRange decomposes the combined numeric-price string, e.g.
// "1 000 руб - 2 000 руб". The ruble suffix is a hard protocol
// assumption: a different currency means the page shape changed and the
// whole page should be flagged, not silently mis-parsed.
func parsePriceRange(numerical string) (min, max *int64, currency *string, err error) {
	sides := strings.Split(numerical, " - ")
	if len(sides) != 2 {
		return nil, nil, nil, fmt.Errorf("unexpected numeric price format %q", numerical)
	}
	bounds := make([]int64, 2)
	for i, side := range sides {
		if !strings.HasSuffix(side, currencyToken) {
			return nil, nil, nil, fmt.Errorf("price side %q does not end with %q", side, currencyToken)
		}
		digits := strings.Join(digitRegex.FindAllString(side, -1), "")
		if digits == "" {
			return nil, nil, nil, fmt.Errorf("price side %q has no digits", side)
		}
		bounds[i], err = strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("price side %q: %w", side, err)
		}
	}
	code := currencyCode
	return &bounds[0], &bounds[1], &code, nil
}

// parsePriceLevel counts the $ glyphs on each side of an optionally
// hyphenated level string; a single side applies to both bounds.
func parsePriceLevel(level string) (from, to *int64, err error) {
	if level == "" {
		return nil, nil, nil
	}
	sides := strings.Split(level, "-")
	switch len(sides) {
	case 1:
		n := int64(strings.Count(sides[0], "$"))
		return &n, &n, nil
	case 2:
		lo := int64(strings.Count(sides[0], "$"))
		hi := int64(strings.Count(sides[1], "$"))
		return &lo, &hi, nil
	default:
		return nil, nil, fmt.Errorf("unexpected price level format %q", level)
	}
}

// parseLandmark splits "<b>1,2 км</b>от: Красная площадь" into the
// landmark name and its distance normalized to whole meters.
func parseLandmark(combined string) (*Landmark, error) {
	parts := strings.SplitN(combined, landmarkSep, 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("landmark %q has no %q separator", combined, landmarkSep)
	}
	name := strings.TrimSpace(parts[1])

	distText := parts[0]
	distText = strings.ReplaceAll(distText, "<b>", "")
	distText = strings.ReplaceAll(distText, "</b>", "")
	distText = strings.ReplaceAll(distText, ",", ".")
	distText = strings.TrimSpace(strings.ReplaceAll(distText, distanceUnit, ""))
	km, err := strconv.ParseFloat(distText, 64)
	if err != nil {
		return nil, fmt.Errorf("landmark distance %q: %w", parts[0], err)
	}
	return &Landmark{Name: name, DistanceMeters: int64(km * 1000)}, nil
}

// formatTimeOfDay converts the wire encoding of a time of day (minutes
// scaled, wrapped over 24h) into an HH:MM:SS string carrying the zone's
// UTC offset. The modular arithmetic is a fixed protocol detail.
func formatTimeOfDay(units int64, loc *time.Location) string {
	hours := (units / 60) % 24
	minutes := units % 60
	now := time.Now().In(loc)
	t := time.Date(now.Year(), now.Month(), now.Day(), int(hours), int(minutes), 0, 0, loc)
	return t.Format("15:04:05-07:00")
}

// workingHours maps the 7 weekday slots to open/close pairs in the
// restaurant's own zone. A page without an hours payload yields nil for
// the whole field; an empty slot yields nil for that day only.
func workingHours(location any) ([]*DayHours, error) {
	hoursNode, err := jsliteral.Get(location, "hours")
	var missing *jsliteral.MissingFieldError
	if errors.As(err, &missing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !jsliteral.Truthy(hoursNode) {
		return nil, nil
	}

	tzNode, err := jsliteral.Get(hoursNode, "timezone")
	if err != nil {
		return nil, err
	}
	tzName, ok := jsliteral.AsString(tzNode)
	if !ok {
		return nil, fmt.Errorf("hours timezone is not a string")
	}
	loc, err := timezone.Lookup(tzName)
	if err != nil {
		return nil, fmt.Errorf("hours timezone %q: %w", tzName, err)
	}

	rangesNode, err := jsliteral.Get(hoursNode, "week_ranges")
	if err != nil {
		return nil, err
	}
	ranges, ok := rangesNode.([]any)
	if !ok {
		return nil, fmt.Errorf("week_ranges is not an array")
	}

	days := make([]*DayHours, 0, len(ranges))
	for _, dayNode := range ranges {
		day, ok := dayNode.([]any)
		if !ok || len(day) == 0 {
			days = append(days, nil)
			continue
		}
		openNode, err := jsliteral.Get(day[0], "open_time")
		if err != nil {
			return nil, err
		}
		closeNode, err := jsliteral.Get(day[0], "close_time")
		if err != nil {
			return nil, err
		}
		openUnits, okOpen := jsliteral.AsInt(openNode)
		closeUnits, okClose := jsliteral.AsInt(closeNode)
		if !okOpen || !okClose {
			return nil, fmt.Errorf("malformed open/close time in week_ranges")
		}
		days = append(days, &DayHours{
			Open:  formatTimeOfDay(openUnits, loc),
			Close: formatTimeOfDay(closeUnits, loc),
		})
	}
	return days, nil
}

// ratingQuestions indexes the rating-question entries by their icon id
// ("restaurants", "wallet-fill", "bell").
func ratingQuestions(overview any) (map[string]any, error) {
	node, err := jsliteral.Get(overview, "rating", "ratingQuestions")
	if err != nil {
		return nil, err
	}
	list, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("ratingQuestions is not an array")
	}
	byIcon := make(map[string]any, len(list))
	for _, q := range list {
		iconNode, err := jsliteral.Get(q, "icon")
		if err != nil {
			return nil, err
		}
		icon, ok := jsliteral.AsString(iconNode)
		if !ok {
			return nil, fmt.Errorf("rating question icon is not a string")
		}
		byIcon[icon] = q
	}
	return byIcon, nil
}

// subScore reads one icon's rating, scaling the 0-100 wire value down to
// the 0-10 scale. A missing icon means the sub-score was never rated.
func subScore(questions map[string]any, icon string) (*float64, error) {
	q, ok := questions[icon]
	if !ok {
		return nil, nil
	}
	node, err := jsliteral.Get(q, "rating")
	if err != nil {
		return nil, err
	}
	raw, ok := jsliteral.AsFloat(node)
	if !ok {
		return nil, fmt.Errorf("rating for icon %q is not numeric", icon)
	}
	score := raw / 10
	return &score, nil
}

// tagValues flattens a tag list to display values, de-duplicating by tag
// id with first-occurrence position and last-occurrence value.
func tagValues(node any) ([]string, error) {
	list, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("tag list is not an array")
	}
	position := map[string]int{}
	values := []string{}
	for _, t := range list {
		idNode, err := jsliteral.Get(t, "tagId")
		if err != nil {
			return nil, err
		}
		id, ok := jsliteral.AsString(idNode)
		if !ok {
			return nil, fmt.Errorf("tagId is not scalar")
		}
		valNode, err := jsliteral.Get(t, "tagValue")
		if err != nil {
			return nil, err
		}
		val, ok := jsliteral.AsString(valNode)
		if !ok {
			return nil, fmt.Errorf("tagValue for tag %s is not a string", id)
		}
		if p, seen := position[id]; seen {
			values[p] = val
		} else {
			position[id] = len(values)
			values = append(values, val)
		}
	}
	return values, nil
}

// keyedNames extracts {key, name} entries preserving order, returning
// the names plus the key set for exclusion checks.
func keyedNames(node any, exclude map[string]bool) (names []string, keys map[string]bool, err error) {
	list, ok := node.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("tag list is not an array")
	}
	position := map[string]int{}
	keys = map[string]bool{}
	names = []string{}
	for _, entry := range list {
		keyNode, err := jsliteral.Get(entry, "key")
		if err != nil {
			return nil, nil, err
		}
		key, ok := jsliteral.AsString(keyNode)
		if !ok {
			return nil, nil, fmt.Errorf("tag key is not scalar")
		}
		if exclude[key] {
			continue
		}
		nameNode, err := jsliteral.Get(entry, "name")
		if err != nil {
			return nil, nil, err
		}
		name, ok := jsliteral.AsString(nameNode)
		if !ok {
			return nil, nil, fmt.Errorf("tag name for key %s is not a string", key)
		}
		keys[key] = true
		if p, seen := position[key]; seen {
			names[p] = name
		} else {
			position[key] = len(names)
			names = append(names, name)
		}
	}
	return names, keys, nil
}

// photoURLs prefers the original image variant and falls back to large.
// No photo payload at all means the field is absent, not null.
func photoURLs(location any) ([]string, error) {
	photoNode, err := jsliteral.Get(location, "photo")
	if err != nil {
		return nil, err
	}
	if !jsliteral.Truthy(photoNode) {
		return nil, nil
	}
	images, err := jsliteral.Get(photoNode, "images")
	if err != nil {
		return nil, err
	}

	original, err := jsliteral.Get(images, "original")
	if err == nil && jsliteral.Truthy(original) {
		urlNode, err := jsliteral.Get(original, "url")
		if err != nil {
			return nil, err
		}
		url, ok := jsliteral.AsString(urlNode)
		if !ok {
			return nil, fmt.Errorf("original photo url is not a string")
		}
		return []string{url}, nil
	}

	urlNode, err := jsliteral.Get(images, "large", "url")
	if err != nil {
		return nil, err
	}
	url, ok := jsliteral.AsString(urlNode)
	if !ok {
		return nil, fmt.Errorf("large photo url is not a string")
	}
	return []string{url}, nil
}

// stripCountrySuffix removes the trailing country qualifier from the
// display name.
func stripCountrySuffix(name string) string {
	return strings.TrimSpace(strings.Split(name, countrySuffix)[0])
}

// optionalString converts a nullable scalar leaf; nil stays nil.
func optionalString(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := jsliteral.AsString(v)
	if !ok {
		return nil, fmt.Errorf("expected string or null, got %T", v)
	}
	return &s, nil
}
