package tripadvisor

import "encoding/json"

// Landmark is a named reference point with the distance to it.
// It marshals as the [name, meters] pair the output contract expects.
type Landmark struct {
	Name           string
	DistanceMeters int64
}

func (l Landmark) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{l.Name, l.DistanceMeters})
}

func (l *Landmark) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &l.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &l.DistanceMeters)
}

// DayHours is one weekday's opening interval, both ends serialized as
// local wall-clock times with the restaurant zone's UTC offset attached.
type DayHours struct {
	Open  string
	Close string
}

func (d DayHours) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{d.Open, d.Close})
}

func (d *DayHours) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	d.Open, d.Close = pair[0], pair[1]
	return nil
}

// Record is the flat normalized output for one restaurant page. Every
// field applies its own absence policy: pointer fields encode null,
// omitempty fields are dropped entirely when the source has no payload
// for them (photo and video in particular), and that distinction is part
// of the output contract.
type Record struct {
	Name                    string      `json:"name"`
	RegisteredAtTripadvisor bool        `json:"registered_at_tripadvisor"`
	Rating                  *float64    `json:"rating"`
	RatingFood              *float64    `json:"rating_food"`
	RatingPriceQuality      *float64    `json:"rating_price_quality"`
	RatingService           *float64    `json:"rating_service"`
	City                    string      `json:"city"`
	Address                 string      `json:"address"`
	Zipcode                 string      `json:"zipcode"`
	Country                 string      `json:"country"`
	Latitude                float64     `json:"latitude"`
	Longitude               float64     `json:"longitude"`
	Neighborhood            *string     `json:"neighborhood"`
	Email                   *string     `json:"email"`
	Tel                     *string     `json:"tel"`
	TripadvisorURL          string      `json:"tripadvisor_url"`
	MenuURL                 *string     `json:"menu_url"`
	WorkingHoursByDays      []*DayHours `json:"working_hours_by_days"`
	PriceLevelFrom          *int64      `json:"price_level_from"`
	PriceLevelTo            *int64      `json:"price_level_to"`
	DietaryRestrictions     []string    `json:"dietary_restrictions"`
	GlutenFreeDishes        bool        `json:"gluten_free_dishes"`
	VegetarianFriendly      bool        `json:"vegetarian_friendly"`
	VeganFriendly           bool        `json:"vegan_friendly"`
	Cuisines                []string    `json:"cuisines"`
	PriceRangeMin           *int64      `json:"price_range_min"`
	PriceRangeMax           *int64      `json:"price_range_max"`
	PriceRangeCurrency      *string     `json:"price_range_currency"`
	ReviewsCount            int64       `json:"reviews_count"`
	Award                   *string     `json:"award"`
	Description             *string     `json:"description"`
	EatingTimes             []string    `json:"eating_times"`
	Features                []string    `json:"features"`
	Landmark                *Landmark   `json:"landmark"`
	Website                 *string     `json:"website,omitempty"`
	Rank                    *int64      `json:"rank"`
	RankTotalCount          *int64      `json:"rank_total_count"`
	PhotoURLs               []string    `json:"photo_urls,omitempty"`
	VideoURL                *string     `json:"video_url,omitempty"`

	// ID is assigned by the batch driver, not by extraction.
	ID int64 `json:"id"`
}
