package tripadvisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"moscowrests/lib/jsliteral"
)

var (
	// ErrInsufficientData marks a page whose response set is empty.
	// This is a legitimately incomplete source page, not a pipeline
	// defect: callers skip it and move on.
	ErrInsufficientData = errors.New("tripadvisor: empty response set")

	// ErrEntityNotResolved means the dataset has responses but none of
	// them is the restaurant overview, which every detail page is
	// expected to carry. This is a structural anomaly worth inspecting.
	ErrEntityNotResolved = errors.New("tripadvisor: cannot resolve restaurant id")
)

// KeyNotPresentError reports an absent response key. Whether that is
// tolerable is decided per field by the extraction rules.
type KeyNotPresentError struct {
	Key string
}

func (e *KeyNotPresentError) Error() string {
	return fmt.Sprintf("tripadvisor: response key not present: %s", e.Key)
}

const (
	keyRoot        = "/data/1.0/"
	overviewPrefix = keyRoot + "restaurant/"
	overviewSuffix = "/overview"
)

// responseIndex wraps the dataset's response map together with the
// restaurant id resolved from it, so lookup keys for the entity can be
// built from templates.
type responseIndex struct {
	responses map[string]any
	entityID  string
}

func newResponseIndex(ctx context.Context, root map[string]any) (*responseIndex, error) {
	node, err := jsliteral.Get(root, "pageManifest", "redux", "api", "responses")
	if err != nil {
		return nil, err
	}
	responses, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tripadvisor: responses is not an object")
	}
	if len(responses) == 0 {
		pageURL, _ := jsliteral.Get(root, "pageManifest", "redux", "meta", "initialAbsoluteUrl")
		if url, ok := jsliteral.AsString(pageURL); ok {
			slog.InfoContext(ctx, "page carries no response data", "url", url)
		}
		return nil, ErrInsufficientData
	}

	id, err := resolveEntityID(responses)
	if err != nil {
		return nil, err
	}
	return &responseIndex{responses: responses, entityID: id}, nil
}

// resolveEntityID scans the response keys for the single
// /data/1.0/restaurant/<id>/overview entry and reads the id the payload
// declares about itself.
func resolveEntityID(responses map[string]any) (string, error) {
	for key, envelope := range responses {
		if !strings.HasPrefix(key, overviewPrefix) || !strings.HasSuffix(key, overviewSuffix) {
			continue
		}
		detailID, err := jsliteral.Get(envelope, "data", "detailId")
		if err != nil {
			return "", fmt.Errorf("tripadvisor: overview response %s: %w", key, err)
		}
		id, ok := jsliteral.AsString(detailID)
		if !ok || id == "" {
			return "", fmt.Errorf("tripadvisor: overview response %s has malformed detailId", key)
		}
		return id, nil
	}
	return "", ErrEntityNotResolved
}

// get fetches the payload for a templated key, e.g.
// get("restaurant/%s/overview"). The envelope's data field is unwrapped.
func (ix *responseIndex) get(template string) (any, error) {
	key := keyRoot + fmt.Sprintf(template, ix.entityID)
	envelope, ok := ix.responses[key]
	if !ok {
		return nil, &KeyNotPresentError{Key: key}
	}
	payload, err := jsliteral.Get(envelope, "data")
	if err != nil {
		return nil, fmt.Errorf("tripadvisor: response %s: %w", key, err)
	}
	return payload, nil
}

// optional is get for sub-resources whose absence is expected; a missing
// key simply yields nil.
func (ix *responseIndex) optional(template string) (any, error) {
	payload, err := ix.get(template)
	var notPresent *KeyNotPresentError
	if errors.As(err, &notPresent) {
		return nil, nil
	}
	return payload, err
}
