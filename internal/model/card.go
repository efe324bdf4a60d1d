// Package model defines the domain types shared across the pipeline.
package model

import (
	"net/url"
	"strings"
	"time"
)

// Card is a single Scryfall card record. Fields are populated once at parse
// time and never mutated afterwards.
type Card struct {
	ID              string            `json:"id"`
	OracleID        string            `json:"oracle_id"`
	Name            string            `json:"name"`
	TypeLine        string            `json:"type_line"`
	OracleText      string            `json:"oracle_text"`
	SetCode         string            `json:"set"`
	SetName         string            `json:"set_name"`
	SetType         string            `json:"set_type"`
	ReleasedAt      string            `json:"released_at"`
	RelatedURIs     map[string]string `json:"related_uris"`
	PrintsSearchURI string            `json:"prints_search_uri"`
}

// OracleKey returns the stable cross-printing identity for the card. Reprints
// share an oracle ID; the raw card ID is the fallback for records without one.
func (c Card) OracleKey() string {
	if c.OracleID != "" {
		return c.OracleID
	}
	return c.ID
}

// IsCommanderFace reports whether the card is shaped like a commander:
// a legendary creature face.
func (c Card) IsCommanderFace() bool {
	return strings.Contains(c.TypeLine, "Legendary") && strings.Contains(c.TypeLine, "Creature")
}

// ReleaseDate parses the card's release date. The second return value is
// false when the field is missing or malformed.
func (c Card) ReleaseDate() (time.Time, bool) {
	if c.ReleasedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", c.ReleasedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Commander is a card that survived filtering and awaits a deck-count fetch.
type Commander struct {
	Name           string `json:"name"`
	EDHRECRouteURL string `json:"edhrec_route_url"`
}

// edhrecRouteBase is the fallback lookup endpoint when a card carries no
// edhrec cross-reference.
const edhrecRouteBase = "https://edhrec.com/route/?cc="

// CommanderFromCard derives a Commander from a card, preferring the card's
// own edhrec cross-reference URL over the constructed route fallback.
func CommanderFromCard(c Card) Commander {
	route := c.RelatedURIs["edhrec"]
	if route == "" {
		route = edhrecRouteBase + url.QueryEscape(c.Name)
	}
	return Commander{Name: c.Name, EDHRECRouteURL: route}
}
