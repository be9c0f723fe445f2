// Package urls resolves workspace URLs and bare identifiers to object ids.
package urls

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Kind is what a target resolved to. Bare ids resolve to KindUnknown and
// must be classified by probing the API.
type Kind int

const (
	KindUnknown Kind = iota
	KindPage
	KindDatabase
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindDatabase:
		return "database"
	default:
		return "unknown"
	}
}

var idSuffix = regexp.MustCompile(`([0-9a-fA-F]{32})$`)

// Parse resolves a workspace URL or a bare id to a normalized, dashed
// object id. Database URLs carry a view selector (?v=...), page URLs do
// not; bare ids carry no kind information.
func Parse(raw string) (string, Kind, error) {
	if id, err := normalizeID(raw); err == nil {
		return id, KindUnknown, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", KindUnknown, fmt.Errorf("target %q is neither an id nor a URL", raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]

	m := idSuffix.FindStringSubmatch(last)
	if m == nil {
		return "", KindUnknown, fmt.Errorf("no object id in URL %q", raw)
	}

	id, err := normalizeID(m[1])
	if err != nil {
		return "", KindUnknown, fmt.Errorf("invalid object id in URL %q: %w", raw, err)
	}

	if u.Query().Get("v") != "" {
		return id, KindDatabase, nil
	}

	return id, KindPage, nil
}

// normalizeID accepts dashed or undashed UUIDs and returns the dashed
// form the API responds with.
func normalizeID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}

	return id.String(), nil
}
