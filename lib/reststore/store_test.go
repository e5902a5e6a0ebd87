package reststore

import (
	"context"
	"testing"
	"time"

	"moscowrests/lib/scrapers/tripadvisor"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testRecord(name, url string) *tripadvisor.Record {
	rating := 4.5
	return &tripadvisor.Record{
		Name:           name,
		TripadvisorURL: url,
		City:           "Москва",
		Rating:         &rating,
		Landmark:       &tripadvisor.Landmark{Name: "Красная площадь", DistanceMeters: 1200},
		WorkingHoursByDays: []*tripadvisor.DayHours{
			{Open: "10:00:00+03:00", Close: "23:00:00+03:00"},
			nil,
		},
		DietaryRestrictions: []string{"Подходит для вегетарианцев"},
		Cuisines:            []string{"Русская"},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	records, err := store.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 0)

	first := testRecord("Бар Б", "https://example.com/b")
	second := testRecord("Кафе А", "https://example.com/a")
	require.NoError(t, store.Put(ctx, first))
	require.NoError(t, store.Put(ctx, second))

	records, err = store.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// name-ordered
	require.Equal(t, "Бар Б", records[0].Name)
	require.Equal(t, "Кафе А", records[1].Name)
	if diff := cmp.Diff(first, records[0]); diff != "" {
		t.Fatalf("record changed across the store (-want +got):\n%s", diff)
	}
}

func TestStoreUpsert(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rec := testRecord("Старое имя", "https://example.com/r")
	require.NoError(t, store.Put(ctx, rec))

	rec.Name = "Новое имя"
	require.NoError(t, store.Put(ctx, rec))

	records, err := store.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Новое имя", records[0].Name)
}
