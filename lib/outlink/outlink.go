// Package outlink recovers canonical outbound URLs from the base64-wrapped
// tracking links a listing site attaches to member websites and menus.
package outlink

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoScheme means the decoded bytes never contain an http(s) scheme,
// i.e. the value was not a wrapped URL after all.
var ErrNoScheme = errors.New("outlink: no http scheme in decoded url")

// Extract base64-decodes a wrapped tracking link, drops the wrapper bytes
// preceding the first http(s) scheme and removes the utm_source query
// parameter. Every other query parameter keeps its position and its
// blank-value form.
func Extract(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("outlink: decode base64: %w", err)
	}

	decoded := string(raw)
	cut := strings.Index(decoded, "https://")
	if cut < 0 {
		cut = strings.Index(decoded, "http://")
	}
	if cut < 0 {
		return "", ErrNoScheme
	}

	u, err := url.Parse(decoded[cut:])
	if err != nil {
		return "", fmt.Errorf("outlink: parse url: %w", err)
	}
	u.RawQuery = dropParam(u.RawQuery, "utm_source")
	return u.String(), nil
}

// dropParam filters one parameter out of a raw query string without
// re-encoding the rest. url.Values would lose the original parameter
// order, which downstream consumers compare against.
func dropParam(query, name string) string {
	if query == "" {
		return ""
	}
	var kept []string
	for _, pair := range strings.Split(query, "&") {
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if key == name {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}
