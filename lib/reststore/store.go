// Package reststore archives extracted restaurant records in sqlite so
// repeated batch runs can be queried and deduplicated after the fact.
package reststore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"moscowrests/lib/scrapers/tripadvisor"

	_ "modernc.org/sqlite"
)

const Schema = `
CREATE TABLE IF NOT EXISTS restaurants (
	tripadvisor_url TEXT NOT NULL PRIMARY KEY,
	name            TEXT NOT NULL,
	city            TEXT NOT NULL,
	rating          REAL,
	record          TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) (*Store, error) {
	_, err := database.Exec(Schema)
	if err != nil {
		return nil, fmt.Errorf("reststore: apply schema: %w", err)
	}
	return &Store{db: database}, nil
}

func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return NewStore(database)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put upserts one record, keyed by its canonical listing url: re-running
// a batch over the same pages overwrites instead of duplicating.
func (s *Store) Put(ctx context.Context, rec *tripadvisor.Record) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	var rating any
	if rec.Rating != nil {
		rating = *rec.Rating
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO restaurants (tripadvisor_url, name, city, rating, record)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (tripadvisor_url)
		DO UPDATE SET name = excluded.name, city = excluded.city,
			rating = excluded.rating, record = excluded.record`,
		rec.TripadvisorURL, rec.Name, rec.City, rating, string(encoded),
	)
	return err
}

// Records returns every archived record, name-ordered.
func (s *Store) Records(ctx context.Context) ([]*tripadvisor.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*tripadvisor.Record
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, err
		}
		rec := &tripadvisor.Record{}
		if err := json.Unmarshal([]byte(encoded), rec); err != nil {
			return nil, fmt.Errorf("reststore: corrupt record row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
