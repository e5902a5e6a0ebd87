// Package timezone caches IANA zone lookups. Every restaurant page
// declares its own zone name and a batch resolves the same handful of
// zones thousands of times, so results are memoized.
package timezone

import (
	"sync"
	"time"
)

var (
	mu    sync.Mutex
	cache = map[string]*time.Location{}
)

func Lookup(name string) (*time.Location, error) {
	mu.Lock()
	defer mu.Unlock()

	if loc, ok := cache[name]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	cache[name] = loc
	return loc, nil
}
